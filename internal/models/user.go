package models

import "time"

// Role is the coarse access tier decoded from the session token.
// The backend is the only authority that assigns roles.
type Role string

const (
	RoleFree    Role = "free"
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleFree, RoleUser, RolePremium, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanAccessPremium reports whether the role unlocks premium-gated areas.
func (r Role) CanAccessPremium() bool {
	return r == RolePremium || r == RoleAdmin
}

// Profile is the account shape returned by the backend's /auth/me endpoint.
type Profile struct {
	ID    int     `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  Role    `json:"role"`
}

// AdminUser is the backend-owned account projection rendered in the admin
// console. IsActive means "allowed to use non-free features"; pending accounts
// have it unset until an admin approves them.
type AdminUser struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminStats are the aggregate counts shown on the console cards. Non-critical:
// the console degrades to a cached snapshot when the live fetch fails.
type AdminStats struct {
	TotalUsers   int `json:"total_users"`
	PendingUsers int `json:"pending_users"`
	ActiveUsers  int `json:"active_users"`
	TotalAdmins  int `json:"total_admins"`
	TodaySignups int `json:"today_signups"`
}
