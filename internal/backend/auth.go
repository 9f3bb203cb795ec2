package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tradepulse/gateway/internal/models"
)

// LoginResult is the token pair issued by POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token. The backend expects an
// OAuth2-style form body with username/password fields, not JSON.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result LoginResult
	if err := c.do(req, "auth_login", &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Me fetches the profile behind a token. A non-2xx answer means the token is
// no longer a valid session.
func (c *Client) Me(ctx context.Context, token string) (models.Profile, error) {
	var profile models.Profile
	if err := c.doJSON(ctx, "auth_me", http.MethodGet, "/auth/me", token, nil, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.doJSON(ctx, "auth_register", http.MethodPost, "/auth/register", "", input, nil)
}

// Upgrade asks the backend to move the account behind token to the premium
// tier and returns the refreshed profile. The gateway never flips a role on
// its own.
func (c *Client) Upgrade(ctx context.Context, token string) (models.Profile, error) {
	var profile models.Profile
	if err := c.doJSON(ctx, "auth_upgrade", http.MethodPost, "/auth/upgrade", token, nil, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
