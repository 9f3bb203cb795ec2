package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tradepulse/gateway/internal/models"
)

// Claims is the payload of the signed session cookie. The backend access token
// rides inside so every authenticated page load can call the admin and app APIs
// without a second credential exchange.
type Claims struct {
	UserID      string      `json:"uid"`
	Email       string      `json:"email"`
	Name        string      `json:"name,omitempty"`
	Role        models.Role `json:"role"`
	AccessToken string      `json:"act"`
	jwt.RegisteredClaims
}

// Session is the per-request identity resolved from the cookie.
type Session struct {
	SubjectID   string
	Email       string
	Name        string
	Role        models.Role
	AccessToken string
}

func Issue(secret string, ttl time.Duration, profile models.Profile, accessToken string) (string, error) {
	now := time.Now()
	name := ""
	if profile.Name != nil {
		name = *profile.Name
	}
	claims := Claims{
		UserID:      fmt.Sprintf("%d", profile.ID),
		Email:       profile.Email,
		Name:        name,
		Role:        profile.Role,
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   fmt.Sprintf("%d", profile.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func Parse(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
