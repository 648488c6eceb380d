package router

import (
	"context"
	"net/http"
	"time"

	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/handler"
	"github.com/certbible/certprep/internal/middleware"
	"github.com/certbible/certprep/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Catalog *handler.CatalogHandler
	Session *handler.SessionHandler
	Result  *handler.ResultHandler
	Chat    *handler.ChatHandler
	Flag    *handler.FlagHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background goroutines owned by middlewares.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.HeaderAPIKey, middleware.HeaderLearnerID, response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. API Group (API key + learner) ──────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.APIKey(cfg.APIKey), middleware.Learner())
	{
		catalog := api.Group("/catalog")
		catalog.Use(middleware.CacheControl(3600))
		{
			catalog.GET("", handlers.Catalog.List)
			catalog.GET("/:code", handlers.Catalog.Get)
		}

		sessions := api.Group("/sessions")
		sessions.Use(middleware.NoStore())
		{
			sessions.POST("", handlers.Session.Start)
			sessions.GET("/:session_id", handlers.Session.Get)
			sessions.DELETE("/:session_id", handlers.Session.Abandon)
			sessions.PUT("/:session_id/answer", handlers.Session.Answer)
			sessions.POST("/:session_id/navigate", handlers.Session.Navigate)
			sessions.POST("/:session_id/check", handlers.Session.Check)
			sessions.POST("/:session_id/submit", handlers.Session.Submit)
		}

		results := api.Group("/results")
		results.Use(middleware.NoStore())
		{
			results.GET("", handlers.Result.List)
			results.GET("/archive", handlers.Result.Archive)
			results.GET("/:result_id/review", handlers.Result.Review)
		}

		// Tutor calls cost money upstream; limit per learner.
		chatLimiter := middleware.NewRateLimiter(ctx, cfg.ChatRatePerMinute, time.Minute).ByLearner()
		api.POST("/chat", chatLimiter.Middleware(), handlers.Chat.Ask)

		api.POST("/flags", handlers.Flag.Create)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.APIKey(cfg.APIKey), middleware.Learner())
	{
		ws.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	return router
}
