package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/adapters/memory"
	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	domainerrors "reelfund/contexts/video-economy/funding-pool-service/domain/errors"
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

func newFixture(t *testing.T) (Service, *memory.Store, *fakeNotifier) {
	t.Helper()
	store := memory.NewStore()
	notifier := &fakeNotifier{}
	service := Service{
		Repo:     store,
		Notifier: notifier,
		Clock:    fixedClock{now: time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:    &seqIDGen{},
	}
	return service, store, notifier
}

func createEpisode(t *testing.T, service Service, store *memory.Store, authorID string) entities.Video {
	t.Helper()
	store.SeedAccount(authorID, 1000, 0)
	series, err := service.CreateSeries(context.Background(), authorID, CreateSeriesInput{Title: "Signals"})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	video, err := service.CreateVideo(context.Background(), authorID, CreateVideoInput{
		SeriesID: series.SeriesID,
		Title:    "Episode 1",
	})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func TestPledgeCrossingThresholdDistributesOnce(t *testing.T) {
	service, store, notifier := newFixture(t)
	video := createEpisode(t, service, store, "author-1")
	store.SeedAccount("viewer-1", 2000, 0)

	first, err := service.Pledge(context.Background(), "viewer-1", video.VideoID, 600)
	if err != nil {
		t.Fatalf("first pledge: %v", err)
	}
	if first.Distribution != nil {
		t.Fatalf("expected no distribution below the threshold")
	}
	if first.Video.CollectedFunds != 600 {
		t.Fatalf("expected collected funds 600, got %d", first.Video.CollectedFunds)
	}

	second, err := service.Pledge(context.Background(), "viewer-1", video.VideoID, 400)
	if err != nil {
		t.Fatalf("second pledge: %v", err)
	}
	if second.Distribution == nil {
		t.Fatalf("expected the threshold-crossing pledge to distribute")
	}
	if second.Distribution.AuthorAmount != 700 {
		t.Fatalf("expected author payout 700 from a 1000 pool, got %d", second.Distribution.AuthorAmount)
	}
	if !second.Video.IsReleased || second.Video.Status != entities.VideoStatusPublished {
		t.Fatalf("expected video released and published, got %+v", second.Video)
	}

	balance, _, ok := store.AccountState("author-1")
	if !ok {
		t.Fatalf("author account missing")
	}
	// 1000 seeded, 500 creation fee, 700 payout.
	if balance != 1200 {
		t.Fatalf("expected author balance 1200, got %d", balance)
	}

	if _, err := service.Pledge(context.Background(), "viewer-1", video.VideoID, 10); !errors.Is(err, domainerrors.ErrTargetNotFundable) {
		t.Fatalf("expected released video to reject pledges, got %v", err)
	}
	if got := notifier.count(events.TypeVideoPublished); got != 1 {
		t.Fatalf("expected one publish broadcast, got %d", got)
	}
	if got := notifier.count(events.TypeAuthorPayoutReceived); got != 1 {
		t.Fatalf("expected one payout notification, got %d", got)
	}
}

func TestConcurrentPledgesDistributeExactlyOnce(t *testing.T) {
	service, store, notifier := newFixture(t)
	video := createEpisode(t, service, store, "author-1")
	authorBefore, _, _ := store.AccountState("author-1")

	const pledgers = 5
	for i := 0; i < pledgers; i++ {
		store.SeedAccount(fmt.Sprintf("viewer-%d", i), 500, 0)
	}

	var wg sync.WaitGroup
	distributions := make(chan int64, pledgers)
	rejected := make(chan error, pledgers)
	for i := 0; i < pledgers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := service.Pledge(context.Background(), fmt.Sprintf("viewer-%d", i), video.VideoID, 300)
			if err != nil {
				rejected <- err
				return
			}
			if result.Distribution != nil {
				distributions <- result.Distribution.AuthorAmount
			}
		}(i)
	}
	wg.Wait()
	close(distributions)
	close(rejected)

	var payouts []int64
	for amount := range distributions {
		payouts = append(payouts, amount)
	}
	if len(payouts) != 1 {
		t.Fatalf("expected exactly one distribution, got %d", len(payouts))
	}
	for err := range rejected {
		if !errors.Is(err, domainerrors.ErrTargetNotFundable) {
			t.Fatalf("late pledges must fail with not fundable, got %v", err)
		}
	}

	authorAfter, _, _ := store.AccountState("author-1")
	if authorAfter-authorBefore != payouts[0] {
		t.Fatalf("expected author credited exactly the payout %d, got delta %d", payouts[0], authorAfter-authorBefore)
	}
	if got := notifier.count(events.TypeVideoPublished); got != 1 {
		t.Fatalf("expected one publish broadcast, got %d", got)
	}
}

func TestExecutedNegativeReviewShapesDistribution(t *testing.T) {
	service, store, _ := newFixture(t)
	video := createEpisode(t, service, store, "author-1")
	store.SeedAccount("critic-1", 0, 100)
	store.SeedAccount("viewer-1", 2000, 0)

	review, err := service.CreateReview(context.Background(), "critic-1", CreateReviewInput{
		VideoID: video.VideoID,
		Type:    entities.ReviewTypeNegative,
		Content: "pacing drags",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	for i := int64(0); i < review.VotesRequired; i++ {
		if _, _, err := service.VoteReview(context.Background(), review.ReviewID); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	result, err := service.Pledge(context.Background(), "viewer-1", video.VideoID, 1000)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}
	if result.Distribution == nil {
		t.Fatalf("expected distribution")
	}
	if result.Distribution.AuthorAmount != 600 {
		t.Fatalf("expected author payout 600 with one negative review, got %d", result.Distribution.AuthorAmount)
	}
	if result.Distribution.ExecutedReviews != 1 {
		t.Fatalf("expected one executed review counted, got %d", result.Distribution.ExecutedReviews)
	}
}

func TestVoteReviewExecutesExactlyAtThreshold(t *testing.T) {
	service, store, _ := newFixture(t)
	video := createEpisode(t, service, store, "author-1")
	store.SeedAccount("critic-1", 0, 0)

	review, err := service.CreateReview(context.Background(), "critic-1", CreateReviewInput{
		VideoID: video.VideoID,
		Type:    entities.ReviewTypePositive,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	var last entities.Review
	for i := int64(0); i < review.VotesRequired; i++ {
		updated, changed, err := service.VoteReview(context.Background(), review.ReviewID)
		if err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
		if !changed {
			t.Fatalf("vote %d should have counted", i)
		}
		last = updated
	}
	if !last.IsExecuted {
		t.Fatalf("expected review executed at the threshold")
	}
	if last.CurrentVotes != review.VotesRequired {
		t.Fatalf("expected %d votes, got %d", review.VotesRequired, last.CurrentVotes)
	}

	after, changed, err := service.VoteReview(context.Background(), review.ReviewID)
	if err != nil {
		t.Fatalf("extra vote: %v", err)
	}
	if changed {
		t.Fatalf("executed review must absorb votes without change")
	}
	if after.CurrentVotes != review.VotesRequired {
		t.Fatalf("expected vote count frozen at %d, got %d", review.VotesRequired, after.CurrentVotes)
	}
}

func TestVoteReviewUnknownReview(t *testing.T) {
	service, _, _ := newFixture(t)
	if _, _, err := service.VoteReview(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestCreateVideoDebitsCreationFee(t *testing.T) {
	service, store, _ := newFixture(t)
	video := createEpisode(t, service, store, "author-1")

	if video.Status != entities.VideoStatusPublished {
		t.Fatalf("expected new episode status PUBLISHED, got %s", video.Status)
	}
	if video.IsReleased {
		t.Fatalf("new episode must start unreleased")
	}

	balance, _, ok := store.AccountState("author-1")
	if !ok {
		t.Fatalf("author account missing")
	}
	if balance != 500 {
		t.Fatalf("expected creation fee debited from 1000 to 500, got %d", balance)
	}
	types := store.LedgerByUser("author-1")
	if len(types) != 1 || types[0] != "PLATFORM_FEE" {
		t.Fatalf("expected one PLATFORM_FEE ledger row, got %v", types)
	}
}

func TestCreateVideoRejectsWhileEpisodeStillFunding(t *testing.T) {
	service, store, _ := newFixture(t)
	video := createEpisode(t, service, store, "author-1")

	_, err := service.CreateVideo(context.Background(), "author-1", CreateVideoInput{
		SeriesID: video.SeriesID,
		Title:    "Episode 2",
	})
	if !errors.Is(err, domainerrors.ErrSeriesHasActiveEpisode) {
		t.Fatalf("expected ErrSeriesHasActiveEpisode, got %v", err)
	}

	balance, _, _ := store.AccountState("author-1")
	if balance != 500 {
		t.Fatalf("expected no second fee debit, got balance %d", balance)
	}
}

func TestCreateVideoRequiresFeeBalance(t *testing.T) {
	service, store, _ := newFixture(t)
	store.SeedAccount("author-poor", 499, 0)
	series, err := service.CreateSeries(context.Background(), "author-poor", CreateSeriesInput{Title: "Broke"})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	_, err = service.CreateVideo(context.Background(), "author-poor", CreateVideoInput{
		SeriesID: series.SeriesID,
		Title:    "Episode 1",
	})
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}
