package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/eventra/entrypass/internal/api/http"
	"github.com/eventra/entrypass/internal/api/http/handlers"
	"github.com/eventra/entrypass/internal/auth"
	"github.com/eventra/entrypass/internal/config"
	"github.com/eventra/entrypass/internal/events"
	"github.com/eventra/entrypass/internal/observability"
	"github.com/eventra/entrypass/internal/persistence"
	"github.com/eventra/entrypass/internal/qr"
	"github.com/eventra/entrypass/internal/repository"
	"github.com/eventra/entrypass/internal/service"
	"github.com/eventra/entrypass/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	metrics := observability.NewMetrics()
	codec := qr.NewCodec()
	dispatcher := events.NewInMemoryDispatcher()

	issuanceService := service.NewIssuanceService(service.IssuanceDependencies{
		TicketRepo:  ticketRepo,
		EventRepo:   eventRepo,
		Codec:       codec,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		MintRetries: cfg.Issuance.MintRetries,
	})
	redemptionService := service.NewRedemptionService(service.RedemptionDependencies{
		TicketRepo: ticketRepo,
		EventRepo:  eventRepo,
		Codec:      codec,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	directoryService := service.NewDirectoryService(eventRepo)
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Events:         handlers.NewEventsHandler(directoryService),
		Tickets:        handlers.NewTicketsHandler(issuanceService, directoryService),
		Scan:           handlers.NewScanHandler(redemptionService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
