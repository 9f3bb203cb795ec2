package backend

import (
	"context"
	"fmt"
	"net/http"

	"tradepulse/gateway/internal/models"
)

// ListUsers pulls the full account list visible to an admin. Pagination is
// the console's concern; the backend returns everything in one response.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := c.doJSON(ctx, "admin_list_users", http.MethodGet, "/admin/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Stats(ctx context.Context, token string) (models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.doJSON(ctx, "admin_stats", http.MethodGet, "/admin/stats", token, nil, &stats); err != nil {
		return models.AdminStats{}, err
	}
	return stats, nil
}

// ApproveUser grants a pending account access and returns the updated record.
func (c *Client) ApproveUser(ctx context.Context, token string, id int) (models.AdminUser, error) {
	var user models.AdminUser
	path := fmt.Sprintf("/admin/users/%d/approve", id)
	if err := c.doJSON(ctx, "admin_approve_user", http.MethodPatch, path, token, nil, &user); err != nil {
		return models.AdminUser{}, err
	}
	return user, nil
}

// SetUserRole assigns role to the account and returns the updated record.
func (c *Client) SetUserRole(ctx context.Context, token string, id int, role models.Role) (models.AdminUser, error) {
	var user models.AdminUser
	path := fmt.Sprintf("/admin/users/%d/role", id)
	body := map[string]models.Role{"role": role}
	if err := c.doJSON(ctx, "admin_set_role", http.MethodPatch, path, token, body, &user); err != nil {
		return models.AdminUser{}, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/admin/users/%d", id)
	return c.doJSON(ctx, "admin_delete_user", http.MethodDelete, path, token, nil, nil)
}
