package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	walletservice "reelfund/contexts/finance-core/wallet-service"
	gatewayadapter "reelfund/contexts/finance-core/wallet-service/adapters/gateway"
	walletpostgres "reelfund/contexts/finance-core/wallet-service/adapters/postgres"
	walletworkers "reelfund/contexts/finance-core/wallet-service/application/workers"
	fundingpoolservice "reelfund/contexts/video-economy/funding-pool-service"
	fundingpostgres "reelfund/contexts/video-economy/funding-pool-service/adapters/postgres"
	fundingworkers "reelfund/contexts/video-economy/funding-pool-service/application/workers"
	fundingports "reelfund/contexts/video-economy/funding-pool-service/ports"
	"reelfund/internal/platform/config"
	"reelfund/internal/platform/db"
	"reelfund/internal/platform/httpserver"
	"reelfund/internal/platform/messaging"
	"reelfund/internal/platform/notify"
	"reelfund/internal/platform/redislock"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	sweepLockKey  = "wallet:reconciliation-sweep"
	reaperLockKey = "wallet:abandoned-reaper"
	lockTTL       = 2 * time.Minute
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	cfg       config.Config
	postgres  *db.Postgres
	publisher fundingports.EventPublisher
	lock      *redislock.Lock
	sweeper   walletworkers.ReconciliationSweeper
	reaper    walletworkers.AbandonedReaper
	relay     fundingworkers.OutboxRelay
	logger    *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub(logger)

	walletModule := walletservice.NewModule(walletservice.Dependencies{
		Repo: walletpostgres.NewRepository(pg.DB, logger),
		Gateway: &gatewayadapter.Client{
			BaseURL:    cfg.GatewayBaseURL,
			ShopID:     cfg.GatewayShopID,
			SecretKey:  cfg.GatewaySecret,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
			Logger:     logger,
		},
		Notifier:     hub,
		Clock:        walletpostgres.SystemClock{},
		IDGen:        walletpostgres.UUIDGenerator{},
		ExchangeRate: decimal.NewFromInt(cfg.CoinExchangeRate),
		Currency:     cfg.Currency,
		ReturnURL:    cfg.PaymentReturnURL,
		Logger:       logger,
	})

	fundingModule := fundingpoolservice.NewModule(fundingpoolservice.Dependencies{
		Repo:     fundingpostgres.NewRepository(pg.DB, logger),
		Notifier: hub,
		Clock:    fundingpostgres.SystemClock{},
		IDGen:    fundingpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	server := httpserver.New(walletModule, fundingModule, hub, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	walletRepo := walletpostgres.NewRepository(pg.DB, logger)
	wallet := walletservice.NewModule(walletservice.Dependencies{
		Repo: walletRepo,
		Gateway: &gatewayadapter.Client{
			BaseURL:    cfg.GatewayBaseURL,
			ShopID:     cfg.GatewayShopID,
			SecretKey:  cfg.GatewaySecret,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
			Logger:     logger,
		},
		Clock:        walletpostgres.SystemClock{},
		IDGen:        walletpostgres.UUIDGenerator{},
		ExchangeRate: decimal.NewFromInt(cfg.CoinExchangeRate),
		Currency:     cfg.Currency,
		ReturnURL:    cfg.PaymentReturnURL,
		Logger:       logger,
	}).Wallet

	fundingRepo := fundingpostgres.NewRepository(pg.DB, logger)
	publisher := buildEventPublisher(cfg, logger)

	return &WorkerApp{
		cfg:       cfg,
		postgres:  pg,
		publisher: publisher,
		lock:      redislock.NewFromAddr(cfg.RedisAddr),
		sweeper: walletworkers.ReconciliationSweeper{
			Wallet:     wallet,
			Repo:       walletRepo,
			Clock:      walletpostgres.SystemClock{},
			GraceAge:   cfg.SweepGraceAge,
			MaxAge:     cfg.SweepMaxAge,
			BatchLimit: cfg.SweepBatchLimit,
			Logger:     logger,
		},
		reaper: walletworkers.AbandonedReaper{
			Repo:     walletRepo,
			Clock:    walletpostgres.SystemClock{},
			GraceAge: cfg.ReaperGraceAge,
			Logger:   logger,
		},
		relay: fundingworkers.OutboxRelay{
			Outbox:    fundingRepo,
			Publisher: publisher,
			Clock:     fundingpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		logger: logger,
	}, nil
}

// buildEventPublisher picks the relay's downstream: the kafka writer when
// brokers are configured, the in-process bus for single-process deployments.
func buildEventPublisher(cfg config.Config, logger *slog.Logger) fundingports.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, outbox relays to in-process bus",
			"event", "bootstrap_bus_publisher_selected",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		return messaging.NewBus(logger)
	}
	return messaging.NewKafkaPublisher(cfg.KafkaBrokers, logger)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run schedules the sweep jobs on cron and drives the outbox relay on a short
// ticker. Scheduled jobs take a distributed lock first so only one worker
// replica reconciles at a time.
func (w *WorkerApp) Run(ctx context.Context) error {
	scheduler := cron.New()
	if w.cfg.EnableReconciliationSweep {
		if _, err := scheduler.AddFunc(w.cfg.SweepSchedule, func() {
			w.runLocked(ctx, sweepLockKey, w.sweeper.RunOnce)
		}); err != nil {
			return err
		}
	}
	if w.cfg.EnableAbandonedReaper {
		if _, err := scheduler.AddFunc(w.cfg.ReaperSchedule, func() {
			w.runLocked(ctx, reaperLockKey, w.reaper.RunOnce)
		}); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_schedule", w.cfg.SweepSchedule,
		"reaper_schedule", w.cfg.ReaperSchedule,
		"relay_period", w.cfg.OutboxRelayPeriod.String(),
	)

	ticker := time.NewTicker(w.cfg.OutboxRelayPeriod)
	defer ticker.Stop()

	for {
		if w.cfg.EnableOutboxRelay {
			if err := w.relay.RunOnce(ctx); err != nil {
				w.logger.Error("outbox relay cycle failed",
					"event", "bootstrap_relay_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) runLocked(ctx context.Context, key string, job func(context.Context) error) {
	acquired, err := w.lock.Acquire(ctx, key, lockTTL)
	if err != nil {
		w.logger.Error("job lock unavailable",
			"event", "bootstrap_lock_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"lock_key", key,
			"error", err.Error(),
		)
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := w.lock.Release(ctx, key); err != nil {
			w.logger.Warn("job lock release failed",
				"event", "bootstrap_lock_release_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"lock_key", key,
				"error", err.Error(),
			)
		}
	}()

	if err := job(ctx); err != nil {
		w.logger.Error("scheduled job failed",
			"event", "bootstrap_job_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"lock_key", key,
			"error", err.Error(),
		)
	}
}

func (w *WorkerApp) Close() error {
	if closer, ok := w.publisher.(io.Closer); ok {
		_ = closer.Close()
	}
	if w.lock != nil {
		_ = w.lock.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
