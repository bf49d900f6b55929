package entities

import "time"

type ReviewType string

const (
	ReviewTypePositive ReviewType = "POSITIVE"
	ReviewTypeNegative ReviewType = "NEGATIVE"
)

// Review is a critic's verdict on an episode. It becomes executed exactly
// once, when enough users vote for it; only executed reviews influence the
// revenue split.
type Review struct {
	ReviewID      string
	VideoID       string
	CriticID      string
	Type          ReviewType
	Content       string
	CurrentVotes  int64
	VotesRequired int64
	IsExecuted    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Pledge is the immutable audit record of one funding contribution.
type Pledge struct {
	PledgeID  string
	UserID    string
	VideoID   string
	Amount    int64
	CreatedAt time.Time
}

func ValidReviewType(value ReviewType) bool {
	return value == ReviewTypePositive || value == ReviewTypeNegative
}
