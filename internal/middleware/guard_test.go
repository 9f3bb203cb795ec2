package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/models"
	"tradepulse/gateway/internal/session"
)

const guardTestSecret = "guard-test-secret"

func guardSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		SessionSecret: guardTestSecret,
		SessionTTL:    time.Hour,
		CookieName:    "tp_session",
	}
}

func guardTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Resolve(guardSecurityConfig()))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	pages := engine.Group("/", Guard())
	pages.GET("/", ok)
	pages.GET("/login", ok)
	pages.GET("/admin", ok)
	pages.GET("/dashboard/premium", ok)

	api := engine.Group("/api", RequireSession())
	api.GET("/ping", ok)

	admin := engine.Group("/api/admin", RequireRoles(models.RoleAdmin))
	admin.GET("/users", ok)

	return engine
}

func cookieFor(t *testing.T, role models.Role) *http.Cookie {
	t.Helper()
	token, err := session.Issue(guardTestSecret, time.Hour, models.Profile{
		ID:    1,
		Email: "u@example.com",
		Role:  role,
	}, "backend-token")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: "tp_session", Value: token}
}

func TestGuardRedirects(t *testing.T) {
	engine := guardTestEngine()

	tests := []struct {
		name         string
		path         string
		role         models.Role
		anonymous    bool
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "home is public",
			path:       "/",
			anonymous:  true,
			wantStatus: http.StatusOK,
		},
		{
			name:         "anonymous admin visit bounces to login",
			path:         "/admin",
			anonymous:    true,
			wantStatus:   http.StatusFound,
			wantLocation: "/login?callbackUrl=%2Fadmin",
		},
		{
			name:         "authenticated login visit bounces to dashboard",
			path:         "/login",
			role:         models.RoleUser,
			wantStatus:   http.StatusFound,
			wantLocation: "/dashboard/free",
		},
		{
			name:         "non-admin bounced off admin",
			path:         "/admin",
			role:         models.RolePremium,
			wantStatus:   http.StatusFound,
			wantLocation: "/dashboard/free",
		},
		{
			name:       "admin passes the admin gate",
			path:       "/admin",
			role:       models.RoleAdmin,
			wantStatus: http.StatusOK,
		},
		{
			name:         "free user bounced off premium dashboard",
			path:         "/dashboard/premium",
			role:         models.RoleFree,
			wantStatus:   http.StatusFound,
			wantLocation: "/dashboard/free",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if !tt.anonymous {
				req.AddCookie(cookieFor(t, tt.role))
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" {
				if got := rec.Header().Get("Location"); got != tt.wantLocation {
					t.Errorf("location = %q, want %q", got, tt.wantLocation)
				}
			}
		})
	}
}

func TestRequireSessionReturns401NotRedirect(t *testing.T) {
	engine := guardTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("api route redirected to %q", loc)
	}
}

func TestRequireRoles(t *testing.T) {
	engine := guardTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(cookieFor(t, models.RolePremium))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("premium caller status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(cookieFor(t, models.RoleAdmin))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin caller status = %d, want 200", rec.Code)
	}
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	engine := guardTestEngine()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "tp_session", Value: "forged"})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want redirect", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?callbackUrl=%2Fadmin" {
		t.Errorf("location = %q", got)
	}
}
