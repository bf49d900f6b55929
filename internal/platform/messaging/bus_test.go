package messaging

import (
	"context"
	"testing"
	"time"

	fundingports "reelfund/contexts/video-economy/funding-pool-service/ports"
	eventsv1 "reelfund/contracts/gen/events/v1"
)

// The worker bootstrap hands the bus to the outbox relay when no broker is
// configured, so it must satisfy the relay's publisher port.
var _ fundingports.EventPublisher = (*Bus)(nil)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan eventsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "funding.author_payout", "test-group", func(_ context.Context, event eventsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	other := make(chan eventsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "funding.video_published", "test-group", func(_ context.Context, event eventsv1.Envelope) error {
		other <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe other topic: %v", err)
	}

	event := eventsv1.Envelope{EventID: "event-1", EventType: "funding.author_payout"}
	if err := bus.Publish(ctx, "funding.author_payout", event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "event-1" {
			t.Fatalf("expected event-1, got %s", got.EventID)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}
	select {
	case got := <-other:
		t.Fatalf("unrelated topic received event %s", got.EventID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus := NewBus(nil)
	event := eventsv1.Envelope{EventID: "event-1", EventType: "funding.video_published"}
	if err := bus.Publish(context.Background(), "funding.video_published", event); err != nil {
		t.Fatalf("publish to empty topic: %v", err)
	}
}
