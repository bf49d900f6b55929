package ports

import (
	"context"
	"time"

	"reelfund/contexts/finance-core/wallet-service/domain/entities"
)

// LedgerEntry describes one paired balance mutation + transaction log row.
// The repository applies both inside a single atomic unit; a balance change
// without a log row must not exist.
type LedgerEntry struct {
	TransactionID string
	UserID        string
	Amount        int64
	Type          entities.TransactionType
	VideoID       string
	CreatedAt     time.Time
}

type TransactionPage struct {
	Items []entities.Transaction
	Total int64
}

type Repository interface {
	GetAccount(ctx context.Context, userID string) (entities.Account, error)

	// CreditWithLog increments the balance and writes a COMPLETED transaction
	// row atomically. Fails with ErrAccountNotFound for unknown users.
	CreditWithLog(ctx context.Context, entry LedgerEntry) (entities.Account, error)

	// DebitWithLog decrements the balance with a conditional balance >= amount
	// guard inside the UPDATE itself, plus the COMPLETED transaction row.
	// Fails with ErrInsufficientFunds leaving state unchanged.
	DebitWithLog(ctx context.Context, entry LedgerEntry) (entities.Account, error)

	OpenPendingDeposit(ctx context.Context, transaction entities.Transaction) error
	GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error)
	AttachExternalID(ctx context.Context, transactionID string, externalID string, updatedAt time.Time) error

	// CompletePendingDeposit wins or loses the PENDING -> COMPLETED race with a
	// conditional status update and, only when it wins, credits the user's
	// balance by the transaction amount in the same atomic unit. The bool
	// reports whether this caller performed the transition.
	CompletePendingDeposit(ctx context.Context, transactionID string, completedAt time.Time) (entities.Account, bool, error)

	// FailIfPending is the symmetric conditional PENDING -> FAILED transition.
	FailIfPending(ctx context.Context, transactionID string, failedAt time.Time) (bool, error)

	ListTransactionsByUser(ctx context.Context, userID string, limit int, offset int) (TransactionPage, error)

	// FindStalePending selects PENDING transaction ids that already carry a
	// gateway reference inside the (newerThan, olderThan) age window.
	FindStalePending(ctx context.Context, olderThan time.Time, newerThan time.Time, limit int) ([]string, error)

	// FailAbandoned bulk-fails PENDING transactions without a gateway
	// reference created before the cutoff, via one conditional update.
	FailAbandoned(ctx context.Context, cutoff time.Time, failedAt time.Time) (int64, error)
}

type PaymentState string

const (
	PaymentStateSucceeded PaymentState = "succeeded"
	PaymentStateCanceled  PaymentState = "canceled"
	PaymentStatePending   PaymentState = "pending"
)

// PaymentGateway resolves the real-world status of a gateway order.
// Transient failures must surface as errors with no local side effects.
type PaymentGateway interface {
	GetPaymentStatus(ctx context.Context, externalID string) (PaymentState, error)
}

// Notifier produces typed realtime events. An empty user id on the platform
// side means broadcast; the engine never manages connections.
type Notifier interface {
	EmitToUser(userID string, eventType string, data any)
	Broadcast(eventType string, data any)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OrderAmount is the fiat value of a deposit order, rendered the way the
// gateway expects it (string with two decimal places).
type OrderAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type OrderConfirmation struct {
	Type      string `json:"type"`
	ReturnURL string `json:"return_url"`
}

type OrderMetadata struct {
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
}

// GatewayOrderPayload is what the external HTTP layer forwards to the payment
// provider. The engine only prepares it and records intent.
type GatewayOrderPayload struct {
	Amount         OrderAmount       `json:"amount"`
	Capture        bool              `json:"capture"`
	Description    string            `json:"description"`
	Confirmation   OrderConfirmation `json:"confirmation"`
	Metadata       OrderMetadata     `json:"metadata"`
	IdempotencyKey string            `json:"idempotency_key"`
}

type DepositOrder struct {
	TransactionID string
	Payload       GatewayOrderPayload
}
