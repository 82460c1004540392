package main

import (
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fahad04code/Bakbak-bot/internal/clients/assemblyai"
	redisclient "github.com/fahad04code/Bakbak-bot/internal/clients/redis"
	"github.com/fahad04code/Bakbak-bot/internal/data/db"
	"github.com/fahad04code/Bakbak-bot/internal/data/repos"
	"github.com/fahad04code/Bakbak-bot/internal/http/handlers"
	"github.com/fahad04code/Bakbak-bot/internal/http/middleware"
	"github.com/fahad04code/Bakbak-bot/internal/platform/envutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/prompts"
	"github.com/fahad04code/Bakbak-bot/internal/server"
	"github.com/fahad04code/Bakbak-bot/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	adminPassphrase := envutil.GetEnv("ADMIN_PASSPHRASE", "FFSVA", log)
	sessionTTL := envutil.GetEnvAsInt("SESSION_TTL_SECONDS", 86400, log)
	promptRateLimit := envutil.GetEnvAsInt("PROMPT_RATE_LIMIT_PER_MINUTE", 0, log)

	// SQLite
	sqliteService, err := db.NewSQLiteService(log)
	if err != nil {
		log.Error("SQLite init failed", "error", err)
		os.Exit(1)
	}
	if err = sqliteService.AutoMigrateAll(); err != nil {
		log.Error("SQLite auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := sqliteService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	activityRepo := repos.NewActivityRepo(theDB, log)
	promptHistoryRepo := repos.NewPromptHistoryRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	fileStore, err := services.NewFileStoreService(log)
	if err != nil {
		log.Error("Could not init FileStoreService", "error", err)
		os.Exit(1)
	}
	var aaiClient assemblyai.Client
	if os.Getenv("ASSEMBLYAI_API_KEY") != "" {
		aaiClient, err = assemblyai.NewClient(log)
		if err != nil {
			log.Warn("Could not init AssemblyAI client; transcription disabled", "error", err)
		}
	} else {
		log.Info("ASSEMBLYAI_API_KEY not set; transcription disabled")
	}
	transcriptionService := services.NewTranscriptionService(log, aaiClient, fileStore)
	templatePack := prompts.Default(log)
	promptService := services.NewPromptService(log, promptHistoryRepo, templatePack, nil)
	authService := services.NewAuthService(log, userRepo, adminPassphrase, jwtSecretKey, time.Duration(sessionTTL)*time.Second)
	activityService := services.NewActivityService(log, activityRepo, fileStore, transcriptionService)

	// Redis (optional, only backs prompt rate limiting)
	var rdb *goredis.Client
	if os.Getenv("REDIS_ADDR") != "" {
		rdb, err = redisclient.NewClient(log)
		if err != nil {
			log.Warn("Could not init redis; prompt rate limiting disabled", "error", err)
		}
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	promptHandler := handlers.NewPromptHandler(log, promptService)
	activityHandler := handlers.NewActivityHandler(log, activityService)
	healthHandler := handlers.NewHealthHandler()

	// Middleware
	log.Info("Setting up middleware from main...")
	sessionMiddleware := middleware.NewSessionMiddleware(log, authService)
	rateLimit := middleware.NewRateLimitMiddleware(log, rdb, promptRateLimit, time.Minute)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		PromptHandler:     promptHandler,
		ActivityHandler:   activityHandler,
		HealthHandler:     healthHandler,
		SessionMiddleware: sessionMiddleware,
		RateLimit:         rateLimit,
		RequestLogger:     middleware.RequestLogger(log),
		UploadDir:         fileStore.Dir(),
	})

	port := envutil.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
