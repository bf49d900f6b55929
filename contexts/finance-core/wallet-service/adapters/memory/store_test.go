package memory

import (
	"context"
	"testing"
	"time"

	"reelfund/contexts/finance-core/wallet-service/domain/entities"
)

func openPending(t *testing.T, store *Store, id string, userID string, createdAt time.Time, externalID string) {
	t.Helper()
	transaction := entities.Transaction{
		TransactionID: id,
		UserID:        userID,
		Amount:        100,
		Type:          entities.TransactionTypeDeposit,
		Status:        entities.TransactionStatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if externalID != "" {
		transaction.ExternalID = &externalID
	}
	if err := store.OpenPendingDeposit(context.Background(), transaction); err != nil {
		t.Fatalf("open pending deposit %s: %v", id, err)
	}
}

func TestFailAbandonedSkipsOrdersWithExternalID(t *testing.T) {
	store := NewStore()
	store.SeedAccount("user-1", 0, 0)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	openPending(t, store, "tx-old-orphan", "user-1", now.Add(-2*time.Hour), "")
	openPending(t, store, "tx-old-tracked", "user-1", now.Add(-2*time.Hour), "ext-1")
	openPending(t, store, "tx-fresh-orphan", "user-1", now.Add(-10*time.Minute), "")

	count, err := store.FailAbandoned(context.Background(), now.Add(-30*time.Minute), now)
	if err != nil {
		t.Fatalf("fail abandoned: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one reaped order, got %d", count)
	}

	cases := map[string]entities.TransactionStatus{
		"tx-old-orphan":   entities.TransactionStatusFailed,
		"tx-old-tracked":  entities.TransactionStatusPending,
		"tx-fresh-orphan": entities.TransactionStatusPending,
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
}

func TestFindStalePendingHonorsAgeWindow(t *testing.T) {
	store := NewStore()
	store.SeedAccount("user-1", 0, 0)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	openPending(t, store, "tx-in-window", "user-1", now.Add(-time.Hour), "ext-1")
	openPending(t, store, "tx-too-fresh", "user-1", now.Add(-5*time.Minute), "ext-2")
	openPending(t, store, "tx-too-old", "user-1", now.Add(-48*time.Hour), "ext-3")
	openPending(t, store, "tx-no-external", "user-1", now.Add(-time.Hour), "")

	ids, err := store.FindStalePending(context.Background(), now.Add(-10*time.Minute), now.Add(-24*time.Hour), 50)
	if err != nil {
		t.Fatalf("find stale pending: %v", err)
	}
	if len(ids) != 1 || ids[0] != "tx-in-window" {
		t.Fatalf("expected only tx-in-window, got %v", ids)
	}
}

func TestCompletePendingDepositIsConditional(t *testing.T) {
	store := NewStore()
	store.SeedAccount("user-1", 10, 0)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	openPending(t, store, "tx-1", "user-1", now.Add(-time.Minute), "ext-1")

	account, finalized, err := store.CompletePendingDeposit(context.Background(), "tx-1", now)
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if !finalized {
		t.Fatalf("expected first completion to win")
	}
	if account.Balance != 110 {
		t.Fatalf("expected balance 110, got %d", account.Balance)
	}

	_, finalized, err = store.CompletePendingDeposit(context.Background(), "tx-1", now)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if finalized {
		t.Fatalf("expected second completion to lose")
	}

	again, err := store.GetAccount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if again.Balance != 110 {
		t.Fatalf("expected balance to stay 110, got %d", again.Balance)
	}
}
