package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tradepulse/gateway/internal/backend"
	"tradepulse/gateway/internal/cache"
	"tradepulse/gateway/internal/chat"
	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/metrics"
	"tradepulse/gateway/internal/middleware"
	"tradepulse/gateway/internal/models"
	"tradepulse/gateway/internal/service"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	backend      *backend.Client
	authService  *service.AuthService
	consoles     *service.ConsoleManager
	transcripts  *chat.TranscriptStore
	cache        *redis.Client
	loginLimiter *middleware.LoginRateLimiter
}

func NewHandlerSet(log zerolog.Logger, cacheClient *redis.Client, cfg *config.AppConfig) HandlerSet {
	backendClient := backend.NewClient(cfg.Backend, log)
	snapshots := cache.NewStatsSnapshotStore(cacheClient, cfg.Console.StatsCacheTTL, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		backend:      backendClient,
		authService:  service.NewAuthService(backendClient, cfg.Security, log),
		consoles:     service.NewConsoleManager(backendClient, snapshots, log),
		transcripts:  chat.NewTranscriptStore(cacheClient, cfg.Chat.TranscriptTTL, cfg.Chat.MaxMessages),
		cache:        cacheClient,
		loginLimiter: middleware.NewLoginRateLimiter(cfg.RateLimit),
	}
}

// Consoles exposes the console manager so the sweep job can reach it.
func (h HandlerSet) Consoles() *service.ConsoleManager {
	return h.consoles
}

func (h HandlerSet) Close() {
	h.loginLimiter.Stop()
}

func (h HandlerSet) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Page routes run through the navigation guard: redirects, never 401s.
	pages := engine.Group("/", middleware.Guard())
	{
		pages.GET("/", h.HomePage)
		pages.GET("/login", h.LoginPage)
		pages.GET("/register", h.RegisterPage)
		pages.GET("/app", h.AppPage)
		pages.GET("/agente", h.AgentPage)
		pages.GET("/backtest", h.BacktestPage)
		pages.GET("/dashboard", h.DashboardPage)
		pages.GET("/dashboard/free", h.DashboardFreePage)
		pages.GET("/dashboard/free/upgrade", h.UpgradePage)
		pages.GET("/dashboard/premium", h.DashboardPremiumPage)
		pages.GET("/admin", h.AdminPage)
	}

	limited := h.loginLimiter.Middleware()
	engine.POST("/login", limited, h.Login)
	engine.POST("/register", limited, h.Register)
	engine.POST("/logout", h.Logout)

	api := engine.Group("/api")
	api.GET("/session", h.Session)

	app := api.Group("", middleware.RequireSession())
	app.POST("/backtest", h.RunBacktest)
	app.POST("/chat", h.Chat)
	app.GET("/chat/history", h.ChatHistory)
	app.POST("/upgrade", h.Upgrade)

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", h.AdminUsers)
	admin.GET("/stats", h.AdminStats)
	admin.POST("/actions", h.AdminStageAction)
	admin.POST("/actions/confirm", h.AdminConfirmAction)
	admin.POST("/actions/cancel", h.AdminCancelAction)
}
