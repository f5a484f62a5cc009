package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/cache"
	"github.com/Dosada05/competition-engine/config"
	"github.com/Dosada05/competition-engine/db"
	"github.com/Dosada05/competition-engine/handlers"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/middleware"
	"github.com/Dosada05/competition-engine/repositories"
	api "github.com/Dosada05/competition-engine/routes"
	"github.com/Dosada05/competition-engine/services"
	"github.com/Dosada05/competition-engine/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})) // Default to Info level

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Миграции
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Кэш турнирных таблиц. Без REDIS_URL кэш живет в памяти процесса.
	standingsCache := cache.NewMemoryStandingsCache()
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.RedisURL, logger)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("failed to close redis client", slog.Any("error", err))
			}
		}()
		standingsCache = cache.NewRedisStandingsCache(redisClient, cfg.StandingsCacheTTL)
	} else {
		logger.Warn("REDIS_URL not set, standings cached in process memory")
	}

	// Инициализация загрузчика файлов (Cloudflare R2): логотипы клубов и архив сеток
	var (
		uploader storage.FileUploader
		archiver services.BracketArchiver
	)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(context.Background(), cfg.R2())
	switch {
	case err == nil:
		uploader = cloudflareUploader
		archiver = storage.NewBracketArchiver(cloudflareUploader)
		logger.Info("Cloudflare R2 uploader initialized")
	case errors.Is(err, storage.ErrR2NotConfigured):
		logger.Warn("Cloudflare R2 not configured, club logos and bracket archives disabled")
	default:
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket Hub started")

	// Метрики
	metricsService := metrics.NewService()

	// Инициализация хранилища и сервисов
	store := repositories.NewPostgresStore(dbConn)
	directory := services.NewClubDirectory(store, uploader)

	competitionService := services.NewCompetitionService(store, directory, logger)
	bracketService := services.NewBracketService(store, wsHub, metricsService, logger)
	resultService := services.NewResultService(store, standingsCache, wsHub, archiver, metricsService, logger)
	standingsService := services.NewStandingsService(store, standingsCache, directory, metricsService, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	competitionHandler := handlers.NewCompetitionHandler(competitionService, bracketService, standingsService, logger)
	matchHandler := handlers.NewMatchHandler(resultService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, competitionService, cfg.CORSAllowedOrigins, logger)
	healthHandler := handlers.NewHealthHandler(dbConn, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			MetricsHandler: metrics.NewMetricsHandler(),
			RequestLogger:  middleware.Logger(logger),
		},
		competitionHandler,
		matchHandler,
		webSocketHandler,
		healthHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			// If shutdown fails, force close.
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
