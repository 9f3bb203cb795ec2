package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/backend"
	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/models"
)

type backtestRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Market    string `json:"market" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

func (h HandlerSet) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	market, ok := models.ParseMarket(req.Market)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be stocks, forex or crypto"})
		return
	}
	for _, date := range []string{req.StartDate, req.EndDate} {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return
		}
	}

	result, err := h.backend.RunBacktest(c.Request.Context(), models.BacktestRequest{
		Symbol:    strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Market:    market,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("backtest failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "backtest failed, check the dates and try again"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type chatTurnRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat sends one turn to the expert agent. The user message is recorded
// before the call, the reply after, so a failed turn still shows what was
// asked.
func (h HandlerSet) Chat(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}

	s := middleware.SessionFrom(c)
	ctx := c.Request.Context()

	if _, err := h.transcripts.Append(ctx, s.SubjectID, models.ChatRoleUser, message); err != nil {
		h.log.Warn().Err(err).Msg("transcript append failed")
	}

	reply, err := h.backend.ChatExpert(ctx, message)
	if err != nil {
		if apiErr, ok := backend.IsAPIError(err); ok && apiErr.Detail != "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Detail})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "the expert agent is unavailable, try again"})
		return
	}

	assistantMsg, err := h.transcripts.Append(ctx, s.SubjectID, models.ChatRoleAssistant, reply)
	if err != nil {
		h.log.Warn().Err(err).Msg("transcript append failed")
		assistantMsg = models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply}
	}

	c.JSON(http.StatusOK, gin.H{"reply": assistantMsg})
}

func (h HandlerSet) ChatHistory(c *gin.Context) {
	s := middleware.SessionFrom(c)

	messages, err := h.transcripts.History(c.Request.Context(), s.SubjectID)
	if err != nil {
		h.log.Warn().Err(err).Msg("transcript load failed")
		c.JSON(http.StatusOK, gin.H{"messages": []models.ChatMessage{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
