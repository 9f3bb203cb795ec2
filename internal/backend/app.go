package backend

import (
	"context"
	"net/http"

	"tradepulse/gateway/internal/models"
)

// RunBacktest executes one backtest on the backend's 1-minute candle engine.
func (c *Client) RunBacktest(ctx context.Context, req models.BacktestRequest) (models.BacktestResult, error) {
	var result models.BacktestResult
	if err := c.doJSON(ctx, "backtest_run", http.MethodPost, "/backtests/", "", req, &result); err != nil {
		return models.BacktestResult{}, err
	}
	return result, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// ChatExpert sends one turn to the expert agent and returns its reply.
func (c *Client) ChatExpert(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.doJSON(ctx, "chat_expert", http.MethodPost, "/chat/expert", "", chatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}
