package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/authz"
	"tradepulse/gateway/internal/backend"
	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/service"
	"tradepulse/gateway/internal/session"
)

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	outcome, err := h.authService.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Msg("login exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "login service unavailable"})
		return
	}

	session.SetCookie(c, h.cfg.Security, outcome.SessionToken)

	callback := authz.SafeCallback(c.Query("callbackUrl"))
	if wantsJSON(c) {
		name := ""
		if outcome.Profile.Name != nil {
			name = *outcome.Profile.Name
		}
		c.JSON(http.StatusOK, gin.H{
			"user": userResponse{
				ID:    strconv.Itoa(outcome.Profile.ID),
				Email: outcome.Profile.Email,
				Name:  name,
				Role:  string(outcome.Profile.Role),
			},
			"callbackUrl": callback,
		})
		return
	}
	c.Redirect(http.StatusFound, callback)
}

type registerRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
	Name     string `form:"name" json:"name"`
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.Register(c.Request.Context(), backend.RegisterInput{
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		if apiErr, ok := backend.IsAPIError(err); ok {
			status := apiErr.Status
			if status < 400 || status > 499 {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": apiErr.Error()})
			return
		}
		h.log.Error().Err(err).Msg("register call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "registration service unavailable"})
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"message": "account created"})
		return
	}
	c.Redirect(http.StatusFound, authz.LoginPath)
}

func (h HandlerSet) Logout(c *gin.Context) {
	if s := middleware.SessionFrom(c); s != nil {
		h.consoles.Drop(s.SubjectID)
		if err := h.transcripts.Clear(c.Request.Context(), s.SubjectID); err != nil {
			h.log.Warn().Err(err).Msg("transcript clear failed")
		}
	}
	session.ClearCookie(c, h.cfg.Security)

	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Session reports the caller's resolved identity, or authenticated=false.
func (h HandlerSet) Session(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": userResponse{
			ID:    s.SubjectID,
			Email: s.Email,
			Name:  s.Name,
			Role:  string(s.Role),
		},
	})
}

// Upgrade moves the account to premium via the backend and re-issues the
// session cookie so the new role applies to the next navigation.
func (h HandlerSet) Upgrade(c *gin.Context) {
	s := middleware.SessionFrom(c)

	outcome, err := h.authService.Upgrade(c.Request.Context(), s)
	if err != nil {
		if apiErr, ok := backend.IsAPIError(err); ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Error()})
			return
		}
		h.log.Error().Err(err).Msg("upgrade call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upgrade service unavailable"})
		return
	}

	session.SetCookie(c, h.cfg.Security, outcome.SessionToken)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"role": string(outcome.Profile.Role)})
		return
	}
	c.Redirect(http.StatusFound, "/dashboard/premium")
}

func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.ContentType(), "application/json") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
