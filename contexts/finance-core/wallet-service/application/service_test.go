package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"reelfund/contexts/finance-core/wallet-service/adapters/memory"
	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	domainerrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	"reelfund/contexts/finance-core/wallet-service/ports"
	"reelfund/internal/shared/events"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

type fakeGateway struct {
	state ports.PaymentState
	err   error
	calls int
}

func (g *fakeGateway) GetPaymentStatus(_ context.Context, _ string) (ports.PaymentState, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.state, nil
}

type recordedEvent struct {
	UserID string
	Type   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) EmitToUser(userID string, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{UserID: userID, Type: eventType})
}

func (n *fakeNotifier) Broadcast(eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType})
}

func (n *fakeNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, event := range n.events {
		if event.Type == eventType {
			total++
		}
	}
	return total
}

func newService(store *memory.Store, gateway ports.PaymentGateway, notifier ports.Notifier) Service {
	return Service{
		Repo:     store,
		Gateway:  gateway,
		Notifier: notifier,
		Clock:    fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:    &seqIDGen{},
	}
}

func TestFinalizeDepositCreditsExactlyOnce(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)
	notifier := &fakeNotifier{}
	service := newService(store, nil, notifier)

	order, err := service.CreateDepositOrder(context.Background(), "user-1", 250)
	if err != nil {
		t.Fatalf("create deposit order: %v", err)
	}
	if err := service.AttachExternalID(context.Background(), order.TransactionID, "ext-1"); err != nil {
		t.Fatalf("attach external id: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	finalized := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, won, err := service.FinalizeDeposit(context.Background(), order.TransactionID)
			if err != nil {
				t.Errorf("finalize deposit: %v", err)
				return
			}
			finalized <- won
		}()
	}
	wg.Wait()
	close(finalized)

	wins := 0
	for won := range finalized {
		if won {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one caller to finalize, got %d", wins)
	}

	account, err := service.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if account.Balance != 250 {
		t.Fatalf("expected balance credited exactly once to 250, got %d", account.Balance)
	}
	if got := notifier.count(events.TypeTransactionSuccess); got != 1 {
		t.Fatalf("expected one success notification, got %d", got)
	}
}

func TestDeductFundsRejectsOverdraw(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 40, 0)
	service := newService(store, nil, &fakeNotifier{})

	_, err := service.DeductFunds(context.Background(), "user-1", 41, entities.TransactionTypeWithdraw)
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	account, err := service.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if account.Balance != 40 {
		t.Fatalf("expected balance unchanged at 40, got %d", account.Balance)
	}
}

func TestListTransactionsPaginatesNewestFirst(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)
	service := newService(store, nil, &fakeNotifier{})
	service.Clock = nil

	for i := 1; i <= 5; i++ {
		if _, err := service.AddFunds(context.Background(), "user-1", int64(i*10)); err != nil {
			t.Fatalf("add funds %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	page, err := service.ListTransactions(context.Background(), "user-1", 2, 2)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected total 5, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(page.Items))
	}
	if page.Items[0].Amount != 30 || page.Items[1].Amount != 20 {
		t.Fatalf("expected amounts [30 20] on page 2, got [%d %d]", page.Items[0].Amount, page.Items[1].Amount)
	}
}

func TestSyncStatusPropagatesGatewayErrorWithoutMutation(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)
	gateway := &fakeGateway{err: domainerrors.ErrGatewayUnavailable}
	service := newService(store, gateway, &fakeNotifier{})

	order, err := service.CreateDepositOrder(context.Background(), "user-1", 100)
	if err != nil {
		t.Fatalf("create deposit order: %v", err)
	}
	if err := service.AttachExternalID(context.Background(), order.TransactionID, "ext-err"); err != nil {
		t.Fatalf("attach external id: %v", err)
	}

	if _, err := service.SyncStatus(context.Background(), order.TransactionID); !errors.Is(err, domainerrors.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error to propagate, got %v", err)
	}

	transaction, err := store.GetTransaction(context.Background(), order.TransactionID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if transaction.IsFinal() {
		t.Fatalf("expected transaction to stay pending after gateway failure, got %s", transaction.Status)
	}
}

func TestSyncStatusFailsCanceledPayment(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)
	gateway := &fakeGateway{state: ports.PaymentStateCanceled}
	notifier := &fakeNotifier{}
	service := newService(store, gateway, notifier)

	order, err := service.CreateDepositOrder(context.Background(), "user-1", 100)
	if err != nil {
		t.Fatalf("create deposit order: %v", err)
	}
	if err := service.AttachExternalID(context.Background(), order.TransactionID, "ext-cancel"); err != nil {
		t.Fatalf("attach external id: %v", err)
	}

	status, err := service.SyncStatus(context.Background(), order.TransactionID)
	if err != nil {
		t.Fatalf("sync status: %v", err)
	}
	if string(status) != "FAILED" {
		t.Fatalf("expected FAILED, got %s", status)
	}
	if got := notifier.count(events.TypeTransactionFailed); got != 1 {
		t.Fatalf("expected one failure notification, got %d", got)
	}

	account, err := service.GetBalance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if account.Balance != 0 {
		t.Fatalf("expected no credit for canceled payment, got %d", account.Balance)
	}

	// A later sync answers from the final state without calling the gateway.
	before := gateway.calls
	if _, err := service.SyncStatus(context.Background(), order.TransactionID); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if gateway.calls != before {
		t.Fatalf("expected final transaction to skip the gateway")
	}
}

func TestCreateDepositOrderConvertsCoinsToFiat(t *testing.T) {
	store := memory.NewStore()
	store.SeedAccount("user-1", 0, 0)
	service := newService(store, nil, &fakeNotifier{})

	order, err := service.CreateDepositOrder(context.Background(), "user-1", 150)
	if err != nil {
		t.Fatalf("create deposit order: %v", err)
	}
	if order.Payload.Amount.Value != "1500.00" {
		t.Fatalf("expected fiat value 1500.00 at the default rate, got %s", order.Payload.Amount.Value)
	}
	if order.Payload.Amount.Currency != "RUB" {
		t.Fatalf("expected default currency RUB, got %s", order.Payload.Amount.Currency)
	}
	if order.Payload.Metadata.TransactionID != order.TransactionID {
		t.Fatalf("expected metadata to carry the transaction id")
	}
	if order.Payload.IdempotencyKey != order.TransactionID {
		t.Fatalf("expected idempotency key to equal the transaction id")
	}
}
