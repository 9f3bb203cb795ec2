package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/session"
)

// Page handlers return the view model the front-end shell renders. Styling
// and layout are the client's concern; the guard has already decided access
// by the time these run.

func pageResponse(c *gin.Context, page string, extra gin.H) {
	body := gin.H{"page": page}
	if s := middleware.SessionFrom(c); s != nil {
		body["user"] = userResponse{
			ID:    s.SubjectID,
			Email: s.Email,
			Name:  s.Name,
			Role:  string(s.Role),
		}
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func (h HandlerSet) HomePage(c *gin.Context) {
	pageResponse(c, "home", nil)
}

func (h HandlerSet) LoginPage(c *gin.Context) {
	pageResponse(c, "login", gin.H{"callbackUrl": c.Query("callbackUrl")})
}

func (h HandlerSet) RegisterPage(c *gin.Context) {
	pageResponse(c, "register", nil)
}

func (h HandlerSet) AppPage(c *gin.Context) {
	pageResponse(c, "app", nil)
}

func (h HandlerSet) AgentPage(c *gin.Context) {
	pageResponse(c, "agente", nil)
}

func (h HandlerSet) BacktestPage(c *gin.Context) {
	pageResponse(c, "backtest", gin.H{
		"markets": []string{"stocks", "forex", "crypto"},
	})
}

func (h HandlerSet) DashboardPage(c *gin.Context) {
	pageResponse(c, "dashboard", nil)
}

func (h HandlerSet) DashboardFreePage(c *gin.Context) {
	s := middleware.SessionFrom(c)
	pageResponse(c, "dashboard/free", gin.H{
		"canUpgrade": canUpgrade(s),
	})
}

func (h HandlerSet) UpgradePage(c *gin.Context) {
	pageResponse(c, "dashboard/free/upgrade", nil)
}

func (h HandlerSet) DashboardPremiumPage(c *gin.Context) {
	pageResponse(c, "dashboard/premium", nil)
}

func (h HandlerSet) AdminPage(c *gin.Context) {
	pageResponse(c, "admin", nil)
}

func canUpgrade(s *session.Session) bool {
	return s != nil && !s.Role.CanAccessPremium()
}
