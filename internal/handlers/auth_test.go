package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/models"
	"tradepulse/gateway/internal/session"
)

const handlerTestSecret = "handler-test-secret"

// fakeBackend mimics the external API's auth surface: form-encoded login,
// bearer-scoped /auth/me, {detail} failures.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("username") != "ana@example.com" || r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "backend-tok", "token_type": "bearer"})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer backend-tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "email": "ana@example.com", "name": "Ana", "role": "admin",
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 8, "email": body.Email})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T, backendURL string) (*gin.Engine, HandlerSet, *config.AppConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: "test",
		Backend: config.BackendConfig{
			BaseURL: backendURL,
			Timeout: 5 * time.Second,
		},
		Security: config.SecurityConfig{
			SessionSecret: handlerTestSecret,
			SessionTTL:    time.Hour,
			CookieName:    "tp_session",
		},
		RateLimit: config.RateLimitConfig{LoginPerMinute: 600, LoginBurst: 100},
		Console:   config.ConsoleConfig{IdleTTL: time.Hour, StatsCacheTTL: time.Hour},
		Chat:      config.ChatConfig{TranscriptTTL: time.Hour, MaxMessages: 50},
	}

	// Nothing listens here; redis-backed paths degrade gracefully.
	cacheClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { cacheClient.Close() })

	h := NewHandlerSet(zerolog.Nop(), cacheClient, cfg)
	t.Cleanup(h.Close)

	engine := gin.New()
	engine.Use(middleware.Resolve(cfg.Security))
	h.RegisterRoutes(engine)
	return engine, h, cfg
}

func sessionCookie(t *testing.T, role models.Role) *http.Cookie {
	t.Helper()
	token, err := session.Issue(handlerTestSecret, time.Hour, models.Profile{
		ID:    7,
		Email: "ana@example.com",
		Role:  role,
	}, "backend-tok")
	require.NoError(t, err)
	return &http.Cookie{Name: "tp_session", Value: token}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tp_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not set")
	assert.True(t, cookie.HttpOnly)

	claims, err := session.Parse(cookie.Value, handlerTestSecret)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "backend-tok", claims.AccessToken)

	var body struct {
		CallbackURL string `json:"callbackUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard/free", body.CallbackURL)
}

func TestLoginHonorsSafeCallback(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/login?callbackUrl=%2Fadmin",
		strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		CallbackURL string `json:"callbackUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/admin", body.CallbackURL)
}

func TestLoginRejectsAbsoluteCallback(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/login?callbackUrl=https%3A%2F%2Fevil.example.com",
		strings.NewReader(`{"email":"ana@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		CallbackURL string `json:"callbackUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard/free", body.CallbackURL)
}

func TestLoginBadCredentials(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"email":"taken@example.com","password":"longenough"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Email already registered", body.Error)
}

func TestSessionEndpoint(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var anon struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	assert.False(t, anon.Authenticated)

	req = httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(sessionCookie(t, models.RolePremium))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var authed struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authed))
	assert.True(t, authed.Authenticated)
	assert.Equal(t, "premium", authed.User.Role)
}

func TestLogoutClearsCookie(t *testing.T) {
	backend := fakeBackend(t)
	engine, _, _ := newTestEngine(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(sessionCookie(t, models.RoleUser))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tp_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie not expired on logout")
}
