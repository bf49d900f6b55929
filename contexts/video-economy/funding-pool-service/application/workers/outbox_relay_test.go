package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/adapters/memory"
	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	"reelfund/contexts/video-economy/funding-pool-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type publishedRecord struct {
	Topic string
	Event ports.EventEnvelope
}

type fakePublisher struct {
	published []publishedRecord
	failOn    string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failOn != "" && topic == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, publishedRecord{Topic: topic, Event: event})
	return nil
}

func stageDistribution(t *testing.T, store *memory.Store, now time.Time) {
	t.Helper()
	store.SeedAccount("author-1", 500, 0)
	store.SeedAccount("viewer-1", 1000, 0)
	if err := store.CreateSeries(context.Background(), entities.Series{
		SeriesID:  "series-1",
		AuthorID:  "author-1",
		Title:     "Signals",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("create series: %v", err)
	}
	if _, err := store.CreateVideo(context.Background(), ports.CreateVideoInput{
		Video: entities.Video{
			VideoID:       "video-1",
			SeriesID:      "series-1",
			AuthorID:      "author-1",
			Title:         "Episode 1",
			Status:        entities.VideoStatusPublished,
			VotesRequired: 1000,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Fee:              500,
		FeeTransactionID: "fee-tx-1",
		Now:              now,
	}); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if _, err := store.ProcessPledge(context.Background(), ports.PledgeInput{
		UserID:              "viewer-1",
		VideoID:             "video-1",
		Amount:              1000,
		PledgeID:            "pledge-1",
		TransactionID:       "tx-1",
		PayoutTransactionID: "payout-tx-1",
		PayoutEventID:       "payout-event-1",
		PublishEventID:      "publish-event-1",
		Now:                 now,
	}); err != nil {
		t.Fatalf("process pledge: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarksRows(t *testing.T) {
	now := time.Date(2026, time.April, 2, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	stageDistribution(t, store, now)

	publisher := &fakePublisher{}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected payout and publish events, got %d", len(publisher.published))
	}
	topics := map[string]bool{}
	for _, record := range publisher.published {
		topics[record.Topic] = true
	}
	if !topics["funding.author_payout"] || !topics["funding.video_published"] {
		t.Fatalf("unexpected topics %v", topics)
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published rows must not be republished, got %d", len(publisher.published))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	now := time.Date(2026, time.April, 2, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	stageDistribution(t, store, now)

	publisher := &fakePublisher{failOn: "funding.author_payout"}
	relay := OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure to surface")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("failed rows must stay pending, got %d", len(pending))
	}

	publisher.failOn = ""
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry run: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending after retry: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained, got %d pending", len(pending))
	}
}
