package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-bot/internal/api/http"
	"github.com/spec-kit/support-bot/internal/api/http/handlers"
	"github.com/spec-kit/support-bot/internal/bot"
	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/persistence"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/scheduler"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/session"
	"github.com/spec-kit/support-bot/internal/transport"
	"github.com/spec-kit/support-bot/internal/worker"
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

	var ticketRepo repository.TicketRepository
	if pool := pg.PoolHandle(); pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
	}

	var sessions session.Store
	if cfg.Session.Backend == "redis" {
		sessions = session.NewRedisStore(redis.Client)
	} else {
		sessions = session.NewMemoryStore()
	}

	telegram, err := transport.NewTelegram(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("failed to connect telegram", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(ticketRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, telegram, logger, cfg.Telegram.AdminChatID)
	worker.StartNotificationWorker(notificationService)

	resolutionScheduler := scheduler.New(ticketRepo, telegram, logger, cfg.Resolution.CheckDelay)
	defer resolutionScheduler.Stop()

	metrics := observability.NewMetrics()
	router := bot.NewRouter(bot.Config{
		AdminChatID: cfg.Telegram.AdminChatID,
		Cities:      cfg.Cities,
		CheckDelay:  cfg.Resolution.CheckDelay,
	}, sessions, ticketService, resolutionScheduler, telegram, logger, metrics)

	// Each update runs on its own goroutine; the router serializes per
	// user, so one user's open flow never stalls another's.
	handle := func(ctx context.Context, event transport.Event) {
		go router.HandleEvent(ctx, event)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	var webhookHandler *handlers.WebhookHandler
	if cfg.Telegram.WebhookEnabled {
		webhookHandler = handlers.NewWebhookHandler(handle)
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Webhook: webhookHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	if !cfg.Telegram.WebhookEnabled {
		go func() {
			if err := telegram.Run(ctx, cfg.Telegram.PollTimeoutSeconds, handle); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("telegram polling stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("support bot started", zap.Bool("webhook", cfg.Telegram.WebhookEnabled))
	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
