package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/backend"
	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/service"
)

// AdminUsers loads (or reloads) the console's user list and returns one page.
// The full list lives in the console; pagination is purely local.
func (h HandlerSet) AdminUsers(c *gin.Context) {
	s := middleware.SessionFrom(c)
	console := h.consoles.Get(s.SubjectID)

	refresh := c.Query("refresh") == "true" || len(console.Users()) == 0
	if refresh {
		if err := console.Load(c.Request.Context(), s.AccessToken); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load users"})
			return
		}
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}

	users, totalPages := console.Page(page)
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"page":       page,
		"totalPages": totalPages,
		"pageSize":   service.PageSize,
		"total":      len(console.Users()),
	})
}

// AdminStats returns the cards, flagged as degraded when they come from the
// snapshot instead of a live read. Absent stats are a placeholder, not an
// error: stats are non-critical by design.
func (h HandlerSet) AdminStats(c *gin.Context) {
	s := middleware.SessionFrom(c)
	console := h.consoles.Get(s.SubjectID)

	stats, degraded := console.Stats()
	if stats == nil {
		c.JSON(http.StatusOK, gin.H{"stats": nil, "degraded": degraded})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "degraded": degraded})
}

type stageActionRequest struct {
	Kind   string `json:"kind" binding:"required"`
	UserID int    `json:"userId" binding:"required"`
}

func (h HandlerSet) AdminStageAction(c *gin.Context) {
	var req stageActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, ok := service.ParseActionKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action kind"})
		return
	}

	s := middleware.SessionFrom(c)
	action, err := h.consoles.Get(s.SubjectID).Stage(kind, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActionInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": action})
}

func (h HandlerSet) AdminConfirmAction(c *gin.Context) {
	s := middleware.SessionFrom(c)

	outcome, err := h.consoles.Get(s.SubjectID).Confirm(c.Request.Context(), s.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActionInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoPendingAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Server-provided reason when present, generic otherwise. The
			// cached list is untouched either way.
			if apiErr, ok := backend.IsAPIError(err); ok {
				c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "action failed, nothing changed"})
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h HandlerSet) AdminCancelAction(c *gin.Context) {
	s := middleware.SessionFrom(c)
	h.consoles.Get(s.SubjectID).Cancel()
	c.Status(http.StatusNoContent)
}
