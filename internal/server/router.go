package server

import (
	"github.com/gin-gonic/gin"

	"github.com/fahad04code/Bakbak-bot/internal/http/handlers"
	"github.com/fahad04code/Bakbak-bot/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	PromptHandler     *handlers.PromptHandler
	ActivityHandler   *handlers.ActivityHandler
	HealthHandler     *handlers.HealthHandler
	SessionMiddleware *middleware.SessionMiddleware
	RateLimit         *middleware.RateLimitMiddleware
	RequestLogger     gin.HandlerFunc
	UploadDir         string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.AttachTraceContext())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger)
	}
	router.MaxMultipartMemory = 32 << 20

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	// Stored uploads are public by name; names carry a 32-char hex prefix.
	router.Static("/uploads", cfg.UploadDir)

	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("")
	protected.Use(cfg.SessionMiddleware.RequireSession())
	{
		// Prompts
		prompts := protected.Group("/prompts")
		if cfg.RateLimit != nil {
			prompts.Use(cfg.RateLimit.LimitPromptRequests())
		}
		prompts.POST("/:kind", cfg.PromptHandler.Generate)

		// Activities
		protected.POST("/activities/truth", cfg.ActivityHandler.SubmitTruth)
		protected.POST("/activities/dare", cfg.ActivityHandler.SubmitDare)
		protected.POST("/activities/meme", cfg.ActivityHandler.SubmitMeme)
		protected.POST("/activities/twister", cfg.ActivityHandler.SubmitTwister)
		protected.GET("/activities", cfg.ActivityHandler.List)
	}

	return router
}
