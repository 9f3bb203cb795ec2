// Package authz holds the single route-access policy consumed by the guard
// middleware. Decisions are pure functions of (path, role): no side effects,
// no backend calls.
package authz

import (
	"net/url"
	"strings"

	"tradepulse/gateway/internal/session"
)

const (
	LoginPath = "/login"

	// LandingPath is where authenticated users end up: after login, when
	// visiting auth-only pages, or when denied a role-gated area.
	LandingPath = "/dashboard/free"
)

var protectedPrefixes = []string{"/app", "/agente", "/backtest", "/admin", "/dashboard"}

var authOnlyPaths = map[string]struct{}{
	LoginPath:   {},
	"/register": {},
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(target string) Decision {
	return Decision{Redirect: target}
}

// Decide applies the ordered policy, first match wins:
//
//  1. protected path without a session redirects to login with a callback;
//  2. authenticated users are bounced off /login and /register;
//  3. /admin requires the admin role (wrong role goes to the landing page,
//     not back to login: the user is authenticated, just not authorized);
//  4. /dashboard/premium requires premium or admin;
//  5. anything else passes.
func Decide(path string, s *session.Session) Decision {
	if s == nil && isProtected(path) {
		q := url.Values{}
		q.Set("callbackUrl", path)
		return redirect(LoginPath + "?" + q.Encode())
	}

	if s != nil {
		if _, ok := authOnlyPaths[path]; ok {
			return redirect(LandingPath)
		}
	}

	if hasPrefix(path, "/admin") && (s == nil || !s.Role.IsAdmin()) {
		return redirect(LandingPath)
	}

	if hasPrefix(path, "/dashboard/premium") && (s == nil || !s.Role.CanAccessPremium()) {
		return redirect(LandingPath)
	}

	return allow()
}

func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if hasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// hasPrefix matches whole path segments, so /admin and /admin/users match
// "/admin" but /administration does not.
func hasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// SafeCallback validates a post-login redirect target. Only relative paths
// inside the site are honored; anything else falls back to the landing page.
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return LandingPath
	}
	return raw
}
