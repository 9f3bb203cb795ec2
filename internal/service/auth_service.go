package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"tradepulse/gateway/internal/backend"
	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/models"
	"tradepulse/gateway/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("session no longer valid")
)

// AuthAPI is the slice of the backend client the auth flows need.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	Me(ctx context.Context, token string) (models.Profile, error)
	Register(ctx context.Context, input backend.RegisterInput) error
	Upgrade(ctx context.Context, token string) (models.Profile, error)
}

// AuthService exchanges credentials with the backend and mints the signed
// session cookie. It never verifies a password or assigns a role itself.
type AuthService struct {
	api AuthAPI
	cfg config.SecurityConfig
	log zerolog.Logger
}

func NewAuthService(api AuthAPI, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		api: api,
		cfg: cfg,
		log: log,
	}
}

// LoginOutcome carries the minted session token plus the profile it encodes.
type LoginOutcome struct {
	SessionToken string
	Profile      models.Profile
}

// Login runs the two-step credential exchange: POST /auth/login for the
// bearer token, then GET /auth/me for the profile the session will carry.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		if _, ok := backend.IsAPIError(err); ok {
			return LoginOutcome{}, ErrInvalidCredentials
		}
		return LoginOutcome{}, err
	}
	if result.AccessToken == "" {
		return LoginOutcome{}, ErrInvalidCredentials
	}

	profile, err := s.api.Me(ctx, result.AccessToken)
	if err != nil {
		if _, ok := backend.IsAPIError(err); ok {
			return LoginOutcome{}, ErrInvalidCredentials
		}
		return LoginOutcome{}, err
	}

	token, err := session.Issue(s.cfg.SessionSecret, s.cfg.SessionTTL, profile, result.AccessToken)
	if err != nil {
		return LoginOutcome{}, err
	}

	s.log.Info().Str("email", profile.Email).Str("role", string(profile.Role)).Msg("login succeeded")
	return LoginOutcome{SessionToken: token, Profile: profile}, nil
}

func (s *AuthService) Register(ctx context.Context, input backend.RegisterInput) error {
	return s.api.Register(ctx, input)
}

// Upgrade asks the backend to move the session's account to premium and
// re-issues the session token so the new role takes effect immediately.
func (s *AuthService) Upgrade(ctx context.Context, sess *session.Session) (LoginOutcome, error) {
	profile, err := s.api.Upgrade(ctx, sess.AccessToken)
	if err != nil {
		return LoginOutcome{}, err
	}

	token, err := session.Issue(s.cfg.SessionSecret, s.cfg.SessionTTL, profile, sess.AccessToken)
	if err != nil {
		return LoginOutcome{}, err
	}

	s.log.Info().Str("email", profile.Email).Str("role", string(profile.Role)).Msg("account upgraded")
	return LoginOutcome{SessionToken: token, Profile: profile}, nil
}
