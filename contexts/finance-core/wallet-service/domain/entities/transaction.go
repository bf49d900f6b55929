package entities

import "time"

type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "DEPOSIT"
	TransactionTypeWithdraw     TransactionType = "WITHDRAW"
	TransactionTypeUserVoteCost TransactionType = "USER_VOTE_COST"
	TransactionTypeAuthorPayout TransactionType = "AUTHOR_PAYOUT"
	TransactionTypePlatformFee  TransactionType = "PLATFORM_FEE"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is one balance-affecting event. Status only ever moves
// PENDING -> COMPLETED or PENDING -> FAILED, and the completing transition
// happens at most once, enforced by conditional updates in the repository.
type Transaction struct {
	TransactionID string
	UserID        string
	Amount        int64
	Type          TransactionType
	Status        TransactionStatus
	ExternalID    *string
	VideoID       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsFinal reports whether the status can no longer change.
func (t Transaction) IsFinal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}

func ValidTransactionType(value TransactionType) bool {
	switch value {
	case TransactionTypeDeposit,
		TransactionTypeWithdraw,
		TransactionTypeUserVoteCost,
		TransactionTypeAuthorPayout,
		TransactionTypePlatformFee:
		return true
	default:
		return false
	}
}
