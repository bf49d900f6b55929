package workers

import (
	"context"
	"log/slog"
	"time"

	application "reelfund/contexts/finance-core/wallet-service/application"
	"reelfund/contexts/finance-core/wallet-service/ports"
)

// AbandonedReaper bulk-fails pending deposits that never obtained a gateway
// reference. Transactions with an external id are left to the reconciliation
// sweeper no matter how old they are.
type AbandonedReaper struct {
	Repo     ports.Repository
	Clock    ports.Clock
	GraceAge time.Duration
	Logger   *slog.Logger
}

func (r AbandonedReaper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}
	grace := r.GraceAge
	if grace <= 0 {
		grace = 30 * time.Minute
	}

	count, err := r.Repo.FailAbandoned(ctx, now.Add(-grace), now)
	if err != nil {
		logger.Error("abandoned transaction sweep failed",
			"event", "wallet_reaper_failed",
			"module", "finance-core/wallet-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if count > 0 {
		logger.Info("abandoned transactions cleaned up",
			"event", "wallet_reaper_completed",
			"module", "finance-core/wallet-service",
			"layer", "worker",
			"count", count,
		)
	}
	return nil
}
