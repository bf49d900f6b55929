package ports

import (
	"context"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	contractsv1 "reelfund/contracts/gen/events/v1"
)

// PledgeInput carries one pledge with every id pre-generated by the
// application layer, so the repository can apply the whole unit atomically
// without talking back.
type PledgeInput struct {
	PledgeID      string
	TransactionID string
	UserID        string
	VideoID       string
	Amount        int64

	// Used only when this pledge crosses the funding threshold.
	PayoutTransactionID string
	PayoutEventID       string
	PublishEventID      string

	Now time.Time
}

// Distribution reports a threshold crossing executed inside the pledge's
// atomic unit. Platform and critic ratios are bookkeeping figures; only the
// author amount was credited.
type Distribution struct {
	AuthorID         string
	AuthorAmount     int64
	AuthorBalance    int64
	AuthorReputation int64
	AuthorRatio      float64
	PlatformRatio    float64
	CriticRatio      float64
	ExecutedReviews  int
	VideoTitle       string
}

type PledgeResult struct {
	Video             entities.Video
	PledgerBalance    int64
	PledgerReputation int64
	Distribution      *Distribution
}

type CreateVideoInput struct {
	Video            entities.Video
	Fee              int64
	FeeTransactionID string
	Now              time.Time
}

type CreateVideoResult struct {
	Video            entities.Video
	AuthorBalance    int64
	AuthorReputation int64
}

type SeriesDetail struct {
	Series entities.Series
	Videos []entities.Video
}

type Repository interface {
	// ProcessPledge runs the entire pledge as one atomic unit: conditional
	// balance debit, USER_VOTE_COST log row, pledge row, collected-funds
	// increment on a still-fundable video, series earnings increment, and,
	// when the threshold is crossed, the distribution (author credit, payout
	// log row, release flag, outbox rows) before returning.
	ProcessPledge(ctx context.Context, input PledgeInput) (PledgeResult, error)

	// VoteReview increments the vote count unless the review is executed and
	// flips is_executed in the same atomic step when the threshold is met.
	// The bool reports whether anything changed.
	VoteReview(ctx context.Context, reviewID string, now time.Time) (entities.Review, bool, error)

	CreateSeries(ctx context.Context, series entities.Series) error

	// CreateVideo debits the episode creation fee from the author and logs a
	// PLATFORM_FEE transaction atomically with the video row. Rejected while
	// the series still has an unreleased episode.
	CreateVideo(ctx context.Context, input CreateVideoInput) (CreateVideoResult, error)

	CreateReview(ctx context.Context, review entities.Review) error

	GetVideo(ctx context.Context, videoID string) (entities.Video, error)
	GetSeries(ctx context.Context, seriesID string) (SeriesDetail, error)
	ListSeriesByAuthor(ctx context.Context, authorID string) ([]SeriesDetail, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// Notifier produces typed realtime events; empty recipient means broadcast on
// the platform side.
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
