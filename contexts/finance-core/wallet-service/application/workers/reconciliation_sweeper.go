package workers

import (
	"context"
	"log/slog"
	"time"

	application "reelfund/contexts/finance-core/wallet-service/application"
	"reelfund/contexts/finance-core/wallet-service/ports"
)

// ReconciliationSweeper re-checks stale pending deposits that already have a
// gateway reference. One failing item is logged and skipped; the sweep itself
// never aborts on item errors.
type ReconciliationSweeper struct {
	Wallet     application.Service
	Repo       ports.Repository
	Clock      ports.Clock
	GraceAge   time.Duration
	MaxAge     time.Duration
	BatchLimit int
	Logger     *slog.Logger
}

func (s ReconciliationSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	grace := s.GraceAge
	if grace <= 0 {
		grace = 10 * time.Minute
	}
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	limit := s.BatchLimit
	if limit <= 0 {
		limit = 50
	}

	stale, err := s.Repo.FindStalePending(ctx, now.Add(-grace), now.Add(-maxAge), limit)
	if err != nil {
		logger.Error("stale pending lookup failed",
			"event", "wallet_reconciliation_lookup_failed",
			"module", "finance-core/wallet-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	synced := 0
	for _, transactionID := range stale {
		if _, err := s.Wallet.SyncStatus(ctx, transactionID); err != nil {
			logger.Error("deposit status sync failed",
				"event", "wallet_reconciliation_sync_failed",
				"module", "finance-core/wallet-service",
				"layer", "worker",
				"transaction_id", transactionID,
				"error", err.Error(),
			)
			continue
		}
		synced++
	}

	logger.Info("reconciliation sweep completed",
		"event", "wallet_reconciliation_completed",
		"module", "finance-core/wallet-service",
		"layer", "worker",
		"checked", len(stale),
		"synced", synced,
	)
	return nil
}
