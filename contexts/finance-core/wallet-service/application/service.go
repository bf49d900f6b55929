package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelfund/contexts/finance-core/wallet-service/domain/entities"
	domainerrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	"reelfund/contexts/finance-core/wallet-service/ports"
	"reelfund/internal/shared/events"

	"github.com/shopspring/decimal"
)

const (
	defaultPageSize    = 20
	defaultCurrency    = "RUB"
	defaultCoinRate    = 10
	confirmationType   = "redirect"
	defaultReturnedURL = "/wallet"
)

// Service owns account balances and the transaction log: instant credits and
// debits, deposit order preparation, and the idempotent deposit finalization
// path shared by the webhook handler, the manual status check, and the
// reconciliation sweeper.
type Service struct {
	Repo         ports.Repository
	Gateway      ports.PaymentGateway
	Notifier     ports.Notifier
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	ExchangeRate decimal.Decimal
	Currency     string
	ReturnURL    string
	Logger       *slog.Logger
}

// GetBalance returns balance and reputation together so the transport layer
// can render both in one round trip.
func (s Service) GetBalance(ctx context.Context, userID string) (entities.Account, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.Account{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetAccount(ctx, strings.TrimSpace(userID))
}

// AddFunds credits the balance instantly and logs a COMPLETED deposit in the
// same atomic unit.
func (s Service) AddFunds(ctx context.Context, userID string, amount int64) (entities.Account, error) {
	entry, err := s.buildEntry(ctx, userID, amount, entities.TransactionTypeDeposit, "")
	if err != nil {
		return entities.Account{}, err
	}
	account, err := s.Repo.CreditWithLog(ctx, entry)
	if err != nil {
		return entities.Account{}, err
	}
	s.notifyBalance(account)
	s.emitToUser(account.UserID, events.TypeTransactionSuccess, map[string]any{
		"message": fmt.Sprintf("Successfully deposited %d coins.", amount),
	})
	ResolveLogger(s.Logger).Info("funds added",
		"event", "wallet_funds_added",
		"module", "finance-core/wallet-service",
		"layer", "application",
		"user_id", account.UserID,
		"amount", amount,
	)
	return account, nil
}

// DeductFunds debits the balance and logs a COMPLETED transaction of the
// given type. The balance check and decrement are one atomic step in the
// repository, so concurrent debits cannot overdraw the account.
func (s Service) DeductFunds(
	ctx context.Context,
	userID string,
	amount int64,
	transactionType entities.TransactionType,
) (entities.Account, error) {
	if !entities.ValidTransactionType(transactionType) {
		return entities.Account{}, domainerrors.ErrInvalidInput
	}
	entry, err := s.buildEntry(ctx, userID, amount, transactionType, "")
	if err != nil {
		return entities.Account{}, err
	}
	account, err := s.Repo.DebitWithLog(ctx, entry)
	if err != nil {
		return entities.Account{}, err
	}
	s.notifyBalance(account)
	return account, nil
}

// ListTransactions returns the newest-first transaction history page.
// Page numbers are 1-indexed; skip = (page-1)*limit.
func (s Service) ListTransactions(
	ctx context.Context,
	userID string,
	page int,
	limit int,
) (ports.TransactionPage, error) {
	if strings.TrimSpace(userID) == "" {
		return ports.TransactionPage{}, domainerrors.ErrInvalidInput
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := (page - 1) * limit
	return s.Repo.ListTransactionsByUser(ctx, strings.TrimSpace(userID), limit, offset)
}

// CreateDepositOrder opens a PENDING deposit and prepares the gateway order
// payload. Talking to the gateway is the caller's responsibility; this method
// only records intent.
func (s Service) CreateDepositOrder(ctx context.Context, userID string, coins int64) (ports.DepositOrder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.DepositOrder{}, domainerrors.ErrInvalidInput
	}
	if coins <= 0 {
		return ports.DepositOrder{}, domainerrors.ErrInvalidAmount
	}
	if _, err := s.Repo.GetAccount(ctx, userID); err != nil {
		return ports.DepositOrder{}, err
	}

	transactionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.DepositOrder{}, err
	}
	now := s.now()
	if err := s.Repo.OpenPendingDeposit(ctx, entities.Transaction{
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        coins,
		Type:          entities.TransactionTypeDeposit,
		Status:        entities.TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return ports.DepositOrder{}, err
	}

	fiat := decimal.NewFromInt(coins).Mul(s.exchangeRate())
	order := ports.DepositOrder{
		TransactionID: transactionID,
		Payload: ports.GatewayOrderPayload{
			Amount: ports.OrderAmount{
				Value:    fiat.StringFixed(2),
				Currency: s.currency(),
			},
			Capture:     true,
			Description: fmt.Sprintf("Refill balance: %d coins", coins),
			Confirmation: ports.OrderConfirmation{
				Type:      confirmationType,
				ReturnURL: s.returnURL(),
			},
			Metadata: ports.OrderMetadata{
				TransactionID: transactionID,
				UserID:        userID,
			},
			IdempotencyKey: transactionID,
		},
	}
	ResolveLogger(s.Logger).Info("deposit order created",
		"event", "wallet_deposit_order_created",
		"module", "finance-core/wallet-service",
		"layer", "application",
		"user_id", userID,
		"transaction_id", transactionID,
		"coins", coins,
		"fiat_value", order.Payload.Amount.Value,
	)
	return order, nil
}

// AttachExternalID stores the gateway's order id for later status polling.
func (s Service) AttachExternalID(ctx context.Context, transactionID string, externalID string) error {
	if strings.TrimSpace(transactionID) == "" || strings.TrimSpace(externalID) == "" {
		return domainerrors.ErrInvalidInput
	}
	return s.Repo.AttachExternalID(ctx, strings.TrimSpace(transactionID), strings.TrimSpace(externalID), s.now())
}

// FinalizeDeposit is the idempotent completion path. However many callers race
// here for the same transaction id, exactly one wins the conditional
// PENDING -> COMPLETED transition and credits the balance; everyone else gets
// finalized=false, which is a no-op outcome and never an error.
func (s Service) FinalizeDeposit(ctx context.Context, transactionID string) (entities.Account, bool, error) {
	if strings.TrimSpace(transactionID) == "" {
		return entities.Account{}, false, domainerrors.ErrInvalidInput
	}
	account, finalized, err := s.Repo.CompletePendingDeposit(ctx, strings.TrimSpace(transactionID), s.now())
	if err != nil {
		return entities.Account{}, false, err
	}
	if !finalized {
		return entities.Account{}, false, nil
	}
	s.notifyBalance(account)
	s.emitToUser(account.UserID, events.TypeTransactionSuccess, map[string]any{
		"message": "Your payment was processed successfully!",
	})
	ResolveLogger(s.Logger).Info("deposit finalized",
		"event", "wallet_deposit_finalized",
		"module", "finance-core/wallet-service",
		"layer", "application",
		"user_id", account.UserID,
		"transaction_id", strings.TrimSpace(transactionID),
	)
	return account, true, nil
}

// FailDeposit conditionally fails a pending deposit (canceled payments, reaped
// abandoned orders). Losing the race is a silent no-op.
func (s Service) FailDeposit(ctx context.Context, transactionID string) (bool, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return false, domainerrors.ErrInvalidInput
	}
	transaction, err := s.Repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return false, err
	}
	failed, err := s.Repo.FailIfPending(ctx, transactionID, s.now())
	if err != nil {
		return false, err
	}
	if failed {
		s.emitToUser(transaction.UserID, events.TypeTransactionFailed, map[string]any{
			"message": "Payment was canceled by provider.",
		})
	}
	return failed, nil
}

// SyncStatus reconciles one pending deposit against the gateway. Gateway
// failures propagate to the caller with no local state change.
func (s Service) SyncStatus(ctx context.Context, transactionID string) (entities.TransactionStatus, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return "", domainerrors.ErrInvalidInput
	}
	transaction, err := s.Repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return "", err
	}
	if transaction.IsFinal() {
		return transaction.Status, nil
	}
	if transaction.ExternalID == nil || strings.TrimSpace(*transaction.ExternalID) == "" {
		return entities.TransactionStatusPending, nil
	}

	state, err := s.Gateway.GetPaymentStatus(ctx, *transaction.ExternalID)
	if err != nil {
		return "", err
	}
	switch state {
	case ports.PaymentStateSucceeded:
		if _, _, err := s.FinalizeDeposit(ctx, transactionID); err != nil {
			return "", err
		}
		return entities.TransactionStatusCompleted, nil
	case ports.PaymentStateCanceled:
		if _, err := s.FailDeposit(ctx, transactionID); err != nil {
			return "", err
		}
		return entities.TransactionStatusFailed, nil
	default:
		return entities.TransactionStatusPending, nil
	}
}

func (s Service) buildEntry(
	ctx context.Context,
	userID string,
	amount int64,
	transactionType entities.TransactionType,
	videoID string,
) (ports.LedgerEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.LedgerEntry{}, domainerrors.ErrInvalidInput
	}
	if amount <= 0 {
		return ports.LedgerEntry{}, domainerrors.ErrInvalidAmount
	}
	transactionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.LedgerEntry{}, err
	}
	return ports.LedgerEntry{
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Type:          transactionType,
		VideoID:       strings.TrimSpace(videoID),
		CreatedAt:     s.now(),
	}, nil
}

func (s Service) notifyBalance(account entities.Account) {
	s.emitToUser(account.UserID, events.TypeBalanceUpdated, map[string]any{
		"balance":    account.Balance,
		"reputation": account.Reputation,
	})
}

func (s Service) emitToUser(userID string, eventType string, data any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.EmitToUser(userID, eventType, data)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) exchangeRate() decimal.Decimal {
	if s.ExchangeRate.IsPositive() {
		return s.ExchangeRate
	}
	return decimal.NewFromInt(defaultCoinRate)
}

func (s Service) currency() string {
	if strings.TrimSpace(s.Currency) != "" {
		return s.Currency
	}
	return defaultCurrency
}

func (s Service) returnURL() string {
	if strings.TrimSpace(s.ReturnURL) != "" {
		return s.ReturnURL
	}
	return defaultReturnedURL
}
