package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/teamplay/scheduler/config"
	"github.com/teamplay/scheduler/db"
	"github.com/teamplay/scheduler/handlers"
	"github.com/teamplay/scheduler/live"
	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/repositories"
	api "github.com/teamplay/scheduler/routes"
	"github.com/teamplay/scheduler/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	catalog, err := models.ParseSlotCatalog(strings.Split(cfg.SlotCatalog, ","))
	if err != nil {
		logger.Error("invalid slot catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("slot catalog loaded", slog.Int("slots", len(catalog)))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	patternRepo := repositories.NewPostgresPatternRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	seriesRepo := repositories.NewPostgresSeriesRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	schedulingService := services.NewSchedulingService(
		dbConn,
		patternRepo,
		gameRepo,
		seriesRepo,
		teamRepo,
		availabilityRepo,
		catalog,
		wsHub,
		logger,
	)
	availabilityService := services.NewAvailabilityService(
		availabilityRepo,
		teamRepo,
		catalog,
	)
	logger.Info("Services initialized")

	// Фоновая генерация игр по активным паттернам
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		logger.Info("game generation sweep started",
			slog.Duration("interval", cfg.SweepInterval),
			slog.Int("horizon_days", cfg.GenerationHorizonDays))

		// Первый прогон сразу при старте, дальше по тикеру
		if created, err := schedulingService.GenerateUpcomingGames(context.Background(), cfg.GenerationHorizonDays); err != nil {
			logger.Error("sweep: initial run failed", slog.Any("error", err))
		} else if created > 0 {
			logger.Info("sweep: games generated", slog.Int("created", created))
		}

		for range ticker.C {
			created, err := schedulingService.GenerateUpcomingGames(context.Background(), cfg.GenerationHorizonDays)
			if err != nil {
				logger.Error("sweep: periodic run failed", slog.Any("error", err))
				continue
			}
			if created > 0 {
				logger.Info("sweep: games generated", slog.Int("created", created))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	liveHandler := handlers.NewLiveHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, schedulingHandler, availabilityHandler, liveHandler)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
