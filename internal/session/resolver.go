package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/models"
)

// FromRequest resolves the inbound request's session. A missing, malformed or
// expired token is simply an unauthenticated request, never an error. Pure
// decode: no network, no store lookup.
func FromRequest(r *http.Request, cfg config.SecurityConfig) *Session {
	raw := ""
	if cookie, err := r.Cookie(cfg.CookieName); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			raw = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if raw == "" {
		return nil
	}

	claims, err := Parse(raw, cfg.SessionSecret)
	if err != nil {
		return nil
	}

	role, ok := models.ParseRole(string(claims.Role))
	if !ok {
		return nil
	}

	return &Session{
		SubjectID:   claims.UserID,
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        role,
		AccessToken: claims.AccessToken,
	}
}

// SetCookie attaches a freshly issued session token to the response.
func SetCookie(c *gin.Context, cfg config.SecurityConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, int(cfg.SessionTTL.Seconds()), "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

// ClearCookie discards the session on logout.
func ClearCookie(c *gin.Context, cfg config.SecurityConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}
