package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-retriage/internal/api/http"
	"github.com/spec-kit/ticket-retriage/internal/api/http/handlers"
	"github.com/spec-kit/ticket-retriage/internal/auth"
	"github.com/spec-kit/ticket-retriage/internal/config"
	"github.com/spec-kit/ticket-retriage/internal/events"
	"github.com/spec-kit/ticket-retriage/internal/observability"
	"github.com/spec-kit/ticket-retriage/internal/persistence"
	"github.com/spec-kit/ticket-retriage/internal/repository"
	"github.com/spec-kit/ticket-retriage/internal/service"
	"github.com/spec-kit/ticket-retriage/internal/triage"
	"github.com/spec-kit/ticket-retriage/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Configured() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	auditService := service.NewAuditService(dispatcher, repository.NewAuditRepository(pg.PoolHandle()), metrics, logger)
	worker.StartAuditWorker(auditService)
	go worker.RunMetricsReporter(ctx, metrics, logger, cfg.App.MetricsLogInterval())

	catalog := service.NewCatalog(cfg.Data, logger)
	if err := catalog.Reload(); err != nil {
		logger.Fatal("failed to load label metadata", zap.Error(err))
	}

	var cache repository.ResultCache
	if cfg.Cache.Enabled {
		cache = repository.NewResultCache(redis.Client, cfg.Cache.KeyPrefix, cfg.Cache.TTL())
	}

	deps := service.RetriageDependencies{
		Catalog:    catalog,
		Cache:      cache,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	generator, err := triage.NewGeminiGenerator(ctx, cfg.Model, logger)
	switch {
	case errors.Is(err, triage.ErrModelDisabled):
		logger.Warn("GEMINI_API_KEY not provided; typed re-triage disabled, example mode only")
	case err != nil:
		logger.Fatal("failed to init model client", zap.Error(err))
	default:
		deps.Generator = generator
		logger.Info("model client ready", zap.String("model", generator.Model()))
	}
	retriageService := service.NewRetriageService(deps)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, retriageService.ModelEnabled),
		Portal:         handlers.NewPortalHandler(retriageService),
		Retriage:       handlers.NewRetriageHandler(retriageService),
		Admin:          handlers.NewAdminHandler(catalog, auditService, metrics, logger),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
