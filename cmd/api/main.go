package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/config"
	"github.com/noah-isme/samms-api/internal/database"
	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/handler"
	"github.com/noah-isme/samms-api/internal/middleware"
	"github.com/noah-isme/samms-api/internal/repository"
	"github.com/noah-isme/samms-api/internal/router"
	"github.com/noah-isme/samms-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.Level(cfg.LogLevel)

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	slot, err := openSlot(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}

	storeRepo := repository.NewStoreRepository(slot, cfg.StorageKey, logger)
	data, err := storeRepo.Load(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load store")
	}
	logger.Info().
		Str("backend", slot.Backend()).
		Int("students", len(data.Students)).
		Int("assessments", len(data.Assessments)).
		Msg("store loaded")

	store := datastore.New(data, storeRepo, logger)
	validate := service.NewValidator()

	recordService := service.NewRecordService(store, validate, logger)
	reportService := service.NewReportService(store, logger)
	dashboardService := service.NewStudentDashboardService(store, redisClient, cfg.DashboardCacheTTL, logger)
	authService := service.NewAuthService(store, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	transferService, err := service.NewTransferService(store, recordService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise transfer service")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    16 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:             handler.NewAuthHandler(authService, logger),
		StudentHandler:          handler.NewStudentHandler(recordService, reportService, logger),
		AttendanceHandler:       handler.NewAttendanceHandler(recordService, reportService, validate, logger),
		AssessmentHandler:       handler.NewAssessmentHandler(recordService, logger),
		ReportHandler:           handler.NewReportHandler(reportService, validate, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		TransferHandler:         handler.NewTransferHandler(transferService, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func openSlot(cfg config.Config, redisClient *redis.Client) (repository.Slot, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		return repository.NewFileSlot(cfg.StorageDir)
	case config.StorageSQLite:
		db, err := database.ConnectSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLSlot(db)
	case config.StoragePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLSlot(db)
	case config.StorageRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis driver selected without a redis connection")
		}
		return repository.NewRedisSlot(redisClient)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
