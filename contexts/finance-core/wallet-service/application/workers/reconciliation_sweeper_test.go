package workers

import (
	"context"
	"testing"
	"time"

	"reelfund/contexts/finance-core/wallet-service/adapters/memory"
	"reelfund/contexts/finance-core/wallet-service/application"
	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	"reelfund/contexts/finance-core/wallet-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type stubGateway struct {
	states map[string]ports.PaymentState
}

func (g stubGateway) GetPaymentStatus(_ context.Context, externalID string) (ports.PaymentState, error) {
	state, ok := g.states[externalID]
	if !ok {
		return ports.PaymentStatePending, nil
	}
	return state, nil
}

func seedPending(t *testing.T, store *memory.Store, id string, createdAt time.Time, externalID string) {
	t.Helper()
	transaction := entities.Transaction{
		TransactionID: id,
		UserID:        "user-1",
		Amount:        50,
		Type:          entities.TransactionTypeDeposit,
		Status:        entities.TransactionStatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if externalID != "" {
		transaction.ExternalID = &externalID
	}
	if err := store.OpenPendingDeposit(context.Background(), transaction); err != nil {
		t.Fatalf("seed pending %s: %v", id, err)
	}
}

func TestSweeperReconcilesStaleDeposits(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)

	seedPending(t, store, "tx-succeeded", now.Add(-time.Hour), "ext-ok")
	seedPending(t, store, "tx-canceled", now.Add(-time.Hour), "ext-gone")
	seedPending(t, store, "tx-fresh", now.Add(-time.Minute), "ext-fresh")

	wallet := application.Service{
		Repo: store,
		Gateway: stubGateway{states: map[string]ports.PaymentState{
			"ext-ok":   ports.PaymentStateSucceeded,
			"ext-gone": ports.PaymentStateCanceled,
		}},
		Clock: fixedClock{now: now},
	}
	sweeper := ReconciliationSweeper{
		Wallet: wallet,
		Repo:   store,
		Clock:  fixedClock{now: now},
	}

	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	cases := map[string]entities.TransactionStatus{
		"tx-succeeded": entities.TransactionStatusCompleted,
		"tx-canceled":  entities.TransactionStatusFailed,
		"tx-fresh":     entities.TransactionStatusPending,
	}
	for id, want := range cases {
		transaction, err := store.GetTransaction(context.Background(), id)
		if err != nil {
			t.Fatalf("get transaction %s: %v", id, err)
		}
		if transaction.Status != want {
			t.Fatalf("transaction %s: expected %s, got %s", id, want, transaction.Status)
		}
	}

	account, err := store.GetAccount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.Balance != 50 {
		t.Fatalf("expected only the succeeded deposit credited, got %d", account.Balance)
	}
}

func TestReaperFailsOrphanedDeposits(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)

	seedPending(t, store, "tx-orphan", now.Add(-time.Hour), "")
	seedPending(t, store, "tx-tracked", now.Add(-time.Hour), "ext-1")

	reaper := AbandonedReaper{
		Repo:  store,
		Clock: fixedClock{now: now},
	}
	if err := reaper.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	orphan, err := store.GetTransaction(context.Background(), "tx-orphan")
	if err != nil {
		t.Fatalf("get orphan: %v", err)
	}
	if orphan.Status != entities.TransactionStatusFailed {
		t.Fatalf("expected orphan to be failed, got %s", orphan.Status)
	}
	tracked, err := store.GetTransaction(context.Background(), "tx-tracked")
	if err != nil {
		t.Fatalf("get tracked: %v", err)
	}
	if tracked.Status != entities.TransactionStatusPending {
		t.Fatalf("expected tracked order untouched, got %s", tracked.Status)
	}
}
