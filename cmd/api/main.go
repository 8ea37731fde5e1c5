// @title Wiki Quiz API
// @version 1.0
// @description Generates multiple choice quizzes from Wikipedia articles and keeps a history of them.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_ADMIN_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wiki-quiz/cmd/api/docs"
	"wiki-quiz/internal/adapter"
	"wiki-quiz/internal/adapter/quizgen"
	"wiki-quiz/internal/adapter/scraper"
	"wiki-quiz/internal/cache"
	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/handler"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/observability"
	"wiki-quiz/internal/repository"
	"wiki-quiz/internal/service"
	"wiki-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	docs.SwaggerInfo.Version = cfg.Version

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Otel, cfg.Version)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	store, err := repository.OpenQuizDatabaseAdapter(ctx, cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err), zap.String("driver", cfg.DB.Driver))
	}
	defer store.Close()
	if err := store.Initialize(ctx); err != nil {
		appLogger.Fatal("Failed to initialize database schema", zap.Error(err))
	}
	appLogger.Info("Quiz store ready", zap.String("driver", cfg.DB.Driver))

	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without record cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("RedisCacheAdapter initialized", zap.String("address", cfg.Redis.Address))
		}
	}
	recordCache := service.NewQuizRecordCache(cacheAdapter, cfg.Redis.RecordTTL)

	generator, err := quizgen.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create text generator", zap.Error(err), zap.String("provider", cfg.LLM.Provider))
	}
	appLogger.Info("Text generator initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))

	fetcher := scraper.NewWikipediaFetcher(cfg.Scraper.Timeout,
		scraper.WithUserAgent(cfg.Scraper.UserAgent),
		scraper.WithMaxContentChars(cfg.Scraper.MaxContentChars))

	quizService := service.NewQuizService(
		store,
		fetcher,
		generator,
		validation.NewQuizOutputValidator(cfg.Quiz.QuestionCountPolicy),
		quizgen.BuildPrompt,
		recordCache,
		service.QuizServiceConfig{
			MaxAttempts:  cfg.LLM.MaxAttempts,
			RetryBackoff: cfg.LLM.RetryBackoff,
		},
	)
	adminAuth := service.NewAdminAuthService(cfg.Auth)
	if !adminAuth.Enabled() {
		appLogger.Warn("auth.admin_secret is not set, quiz deletion is open")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: cfg.Server.AllowedOrigins != "*",
		MaxAge:           300,
	}))

	handler.SetupRoutes(app, handler.Routes{
		Quiz:          handler.NewQuizHandler(quizService),
		Health:        handler.NewHealthHandler(quizService, cacheAdapter, cfg.Version),
		AdminAuth:     adminAuth,
		EnableMetrics: cfg.Metrics.Enabled,
		EnableSwagger: true,
	})

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("Tracer shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
