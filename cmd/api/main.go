package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/athlete-assessment-api/internal/completeness"
	"github.com/noah-isme/athlete-assessment-api/internal/config"
	"github.com/noah-isme/athlete-assessment-api/internal/database"
	"github.com/noah-isme/athlete-assessment-api/internal/handler"
	"github.com/noah-isme/athlete-assessment-api/internal/middleware"
	"github.com/noah-isme/athlete-assessment-api/internal/repository"
	"github.com/noah-isme/athlete-assessment-api/internal/router"
	"github.com/noah-isme/athlete-assessment-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; restorable list cache disabled")
		} else {
			defer redisClient.Close()
			probes["redis"] = func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable; lifecycle events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	registry := completeness.Default()

	assessmentRepo := repository.NewAssessmentRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditLogRepo, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, registry, validate, auditService, logger)
	archiveService := service.NewArchiveService(assessmentRepo, archiveRepo, auditLogRepo, auditService, registry, service.ArchiveServiceOptions{
		Cache:          redisClient,
		CacheTTL:       cfg.GovernanceCacheTTL,
		AuditScanLimit: cfg.AuditListLimit,
		Events:         service.NewNATSPublisher(natsConn, cfg.NATSSubject),
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		GovernanceHandler: handler.NewGovernanceHandler(archiveService, auditService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes:      probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
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
