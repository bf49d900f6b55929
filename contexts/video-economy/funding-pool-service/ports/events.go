package ports

import (
	"encoding/json"
	"time"
)

// Durable domain events recorded through the outbox and relayed to the bus.
const (
	EventTypeAuthorPayout   = "funding.author_payout"
	EventTypeVideoPublished = "funding.video_published"

	sourceService = "funding-pool-service"
	schemaVersion = 1
)

type AuthorPayoutEvent struct {
	EventID       string
	VideoID       string
	VideoTitle    string
	AuthorID      string
	Amount        int64
	AuthorRatio   float64
	PlatformRatio float64
	CriticRatio   float64
	OccurredAt    time.Time
}

type VideoPublishedEvent struct {
	EventID    string
	VideoID    string
	SeriesID   string
	Title      string
	OccurredAt time.Time
}

// BuildAuthorPayoutEnvelope renders the canonical envelope both storage
// adapters persist into their outbox.
func BuildAuthorPayoutEnvelope(event AuthorPayoutEvent) (EventEnvelope, error) {
	data, err := json.Marshal(map[string]any{
		"video_id":       event.VideoID,
		"video_title":    event.VideoTitle,
		"author_id":      event.AuthorID,
		"amount":         event.Amount,
		"author_ratio":   event.AuthorRatio,
		"platform_ratio": event.PlatformRatio,
		"critic_ratio":   event.CriticRatio,
	})
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          event.EventID,
		EventType:        EventTypeAuthorPayout,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          event.EventID,
		SchemaVersion:    schemaVersion,
		PartitionKeyPath: "video_id",
		PartitionKey:     event.VideoID,
		Data:             data,
	}, nil
}

func BuildVideoPublishedEnvelope(event VideoPublishedEvent) (EventEnvelope, error) {
	data, err := json.Marshal(map[string]any{
		"video_id":  event.VideoID,
		"series_id": event.SeriesID,
		"title":     event.Title,
	})
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:          event.EventID,
		EventType:        EventTypeVideoPublished,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          event.EventID,
		SchemaVersion:    schemaVersion,
		PartitionKeyPath: "video_id",
		PartitionKey:     event.VideoID,
		Data:             data,
	}, nil
}
