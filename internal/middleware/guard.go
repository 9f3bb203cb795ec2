package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/authz"
	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/models"
	"tradepulse/gateway/internal/session"
)

const sessionKey = "current_session"

// Resolve decodes the request's session cookie and stashes the result (which
// may be nil) for downstream handlers. Pure decode, never aborts.
func Resolve(cfg config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := session.FromRequest(c.Request, cfg); s != nil {
			c.Set(sessionKey, s)
		}
		c.Next()
	}
}

// SessionFrom returns the resolved session for this request, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, ok := val.(*session.Session)
	if !ok {
		return nil
	}
	return s
}

// Guard applies the route-access policy to page navigation: redirects for
// unauthenticated or under-privileged requests, pass-through otherwise.
// Runs before any page logic; must follow Resolve.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := authz.Decide(c.Request.URL.Path, SessionFrom(c))
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSession protects JSON API routes: a missing session is a 401, not a
// redirect.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireRoles gates a JSON API group to the given roles with a 403. An
// authenticated caller with the wrong role is a distinct failure mode from a
// missing session.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		s := SessionFrom(c)
		if s == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := roleSet[s.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
