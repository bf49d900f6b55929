package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	domainerrors "reelfund/contexts/video-economy/funding-pool-service/domain/errors"
	"reelfund/contexts/video-economy/funding-pool-service/domain/services"
	"reelfund/contexts/video-economy/funding-pool-service/ports"
)

// Store is the in-memory repository used by tests and local development.
// A single mutex stands in for the database transaction, so every atomic
// unit behaves exactly like the postgres adapter.
type Store struct {
	mu sync.Mutex

	accounts map[string]accountRow
	series   map[string]entities.Series
	videos   map[string]entities.Video
	reviews  map[string]entities.Review
	pledges  []entities.Pledge
	ledger   []ledgerRow
	outbox   []outboxRow
}

type accountRow struct {
	Balance    int64
	Reputation int64
}

type ledgerRow struct {
	TransactionID string
	UserID        string
	Amount        int64
	Type          string
	VideoID       string
	CreatedAt     time.Time
}

type outboxRow struct {
	Message   ports.OutboxMessage
	Published bool
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]accountRow),
		series:   make(map[string]entities.Series),
		videos:   make(map[string]entities.Video),
		reviews:  make(map[string]entities.Review),
	}
}

// SeedAccount registers a user with a starting balance and reputation.
func (s *Store) SeedAccount(userID string, balance int64, reputation int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[userID] = accountRow{Balance: balance, Reputation: reputation}
}

// AccountState reports the current balance and reputation of a user.
func (s *Store) AccountState(userID string) (int64, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	return account.Balance, account.Reputation, ok
}

// LedgerByUser returns the transaction types logged for a user, oldest first.
func (s *Store) LedgerByUser(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var types []string
	for _, row := range s.ledger {
		if row.UserID == userID {
			types = append(types, row.Type)
		}
	}
	return types
}

func (s *Store) ProcessPledge(_ context.Context, input ports.PledgeInput) (ports.PledgeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[input.VideoID]
	if !ok || !video.Fundable() {
		return ports.PledgeResult{}, domainerrors.ErrTargetNotFundable
	}
	account, ok := s.accounts[input.UserID]
	if !ok {
		return ports.PledgeResult{}, domainerrors.ErrAccountNotFound
	}
	if account.Balance < input.Amount {
		return ports.PledgeResult{}, domainerrors.ErrInsufficientFunds
	}

	account.Balance -= input.Amount
	s.accounts[input.UserID] = account
	s.ledger = append(s.ledger, ledgerRow{
		TransactionID: input.TransactionID,
		UserID:        input.UserID,
		Amount:        input.Amount,
		Type:          "USER_VOTE_COST",
		VideoID:       input.VideoID,
		CreatedAt:     input.Now,
	})
	s.pledges = append(s.pledges, entities.Pledge{
		PledgeID:  input.PledgeID,
		UserID:    input.UserID,
		VideoID:   input.VideoID,
		Amount:    input.Amount,
		CreatedAt: input.Now,
	})

	video.CollectedFunds += input.Amount
	video.UpdatedAt = input.Now
	s.videos[input.VideoID] = video

	if series, ok := s.series[video.SeriesID]; ok {
		series.TotalEarnings += input.Amount
		s.series[video.SeriesID] = series
	}

	result := ports.PledgeResult{
		Video:             video,
		PledgerBalance:    account.Balance,
		PledgerReputation: account.Reputation,
	}
	if video.CollectedFunds < video.VotesRequired {
		return result, nil
	}

	distribution, err := s.distribute(video, input)
	if err != nil {
		return ports.PledgeResult{}, err
	}
	result.Video = s.videos[input.VideoID]
	result.Distribution = distribution
	return result, nil
}

// distribute releases the video and pays the author. Caller holds the mutex.
func (s *Store) distribute(video entities.Video, input ports.PledgeInput) (*ports.Distribution, error) {
	var executed []services.ExecutedReview
	for _, review := range s.reviews {
		if review.VideoID != video.VideoID || !review.IsExecuted {
			continue
		}
		executed = append(executed, services.ExecutedReview{
			Type:             review.Type,
			CriticReputation: s.accounts[review.CriticID].Reputation,
		})
	}
	split := services.ComputeSplit(video.CollectedFunds, executed)

	author, ok := s.accounts[video.AuthorID]
	if !ok {
		return nil, domainerrors.ErrAccountNotFound
	}
	author.Balance += split.AuthorAmount
	s.accounts[video.AuthorID] = author
	s.ledger = append(s.ledger, ledgerRow{
		TransactionID: input.PayoutTransactionID,
		UserID:        video.AuthorID,
		Amount:        split.AuthorAmount,
		Type:          "AUTHOR_PAYOUT",
		VideoID:       video.VideoID,
		CreatedAt:     input.Now,
	})

	video.IsReleased = true
	video.Status = entities.VideoStatusPublished
	video.UpdatedAt = input.Now
	s.videos[video.VideoID] = video

	payout, err := ports.BuildAuthorPayoutEnvelope(ports.AuthorPayoutEvent{
		EventID:       input.PayoutEventID,
		VideoID:       video.VideoID,
		VideoTitle:    video.Title,
		AuthorID:      video.AuthorID,
		Amount:        split.AuthorAmount,
		AuthorRatio:   split.AuthorRatio,
		PlatformRatio: split.PlatformRatio,
		CriticRatio:   split.CriticRatio,
		OccurredAt:    input.Now,
	})
	if err != nil {
		return nil, err
	}
	published, err := ports.BuildVideoPublishedEnvelope(ports.VideoPublishedEvent{
		EventID:    input.PublishEventID,
		VideoID:    video.VideoID,
		SeriesID:   video.SeriesID,
		Title:      video.Title,
		OccurredAt: input.Now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.appendOutbox(payout, input.Now); err != nil {
		return nil, err
	}
	if err := s.appendOutbox(published, input.Now); err != nil {
		return nil, err
	}

	return &ports.Distribution{
		AuthorID:         video.AuthorID,
		AuthorAmount:     split.AuthorAmount,
		AuthorBalance:    author.Balance,
		AuthorReputation: author.Reputation,
		AuthorRatio:      split.AuthorRatio,
		PlatformRatio:    split.PlatformRatio,
		CriticRatio:      split.CriticRatio,
		ExecutedReviews:  len(executed),
		VideoTitle:       video.Title,
	}, nil
}

func (s *Store) appendOutbox(event ports.EventEnvelope, now time.Time) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, outboxRow{Message: ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    now,
	}})
	return nil
}

func (s *Store) VoteReview(_ context.Context, reviewID string, now time.Time) (entities.Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[strings.TrimSpace(reviewID)]
	if !ok {
		return entities.Review{}, false, domainerrors.ErrReviewNotFound
	}
	if review.IsExecuted {
		return review, false, nil
	}
	review.CurrentVotes++
	if review.CurrentVotes >= review.VotesRequired {
		review.IsExecuted = true
	}
	review.UpdatedAt = now
	s.reviews[review.ReviewID] = review
	return review, true, nil
}

func (s *Store) CreateSeries(_ context.Context, series entities.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[series.SeriesID] = series
	return nil
}

func (s *Store) CreateVideo(_ context.Context, input ports.CreateVideoInput) (ports.CreateVideoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video := input.Video
	if _, ok := s.series[video.SeriesID]; !ok {
		return ports.CreateVideoResult{}, domainerrors.ErrSeriesNotFound
	}
	for _, existing := range s.videos {
		if existing.SeriesID == video.SeriesID && !existing.IsReleased {
			return ports.CreateVideoResult{}, domainerrors.ErrSeriesHasActiveEpisode
		}
	}
	account, ok := s.accounts[video.AuthorID]
	if !ok {
		return ports.CreateVideoResult{}, domainerrors.ErrAccountNotFound
	}
	if account.Balance < input.Fee {
		return ports.CreateVideoResult{}, domainerrors.ErrInsufficientFunds
	}

	account.Balance -= input.Fee
	s.accounts[video.AuthorID] = account
	s.ledger = append(s.ledger, ledgerRow{
		TransactionID: input.FeeTransactionID,
		UserID:        video.AuthorID,
		Amount:        input.Fee,
		Type:          "PLATFORM_FEE",
		VideoID:       video.VideoID,
		CreatedAt:     input.Now,
	})
	s.videos[video.VideoID] = video

	return ports.CreateVideoResult{
		Video:            video,
		AuthorBalance:    account.Balance,
		AuthorReputation: account.Reputation,
	}, nil
}

func (s *Store) CreateReview(_ context.Context, review entities.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[review.VideoID]; !ok {
		return domainerrors.ErrVideoNotFound
	}
	s.reviews[review.ReviewID] = review
	return nil
}

func (s *Store) GetVideo(_ context.Context, videoID string) (entities.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[strings.TrimSpace(videoID)]
	if !ok {
		return entities.Video{}, domainerrors.ErrVideoNotFound
	}
	return video, nil
}

func (s *Store) GetSeries(_ context.Context, seriesID string) (ports.SeriesDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.series[strings.TrimSpace(seriesID)]
	if !ok {
		return ports.SeriesDetail{}, domainerrors.ErrSeriesNotFound
	}
	return ports.SeriesDetail{Series: series, Videos: s.videosOf(series.SeriesID)}, nil
}

func (s *Store) ListSeriesByAuthor(_ context.Context, authorID string) ([]ports.SeriesDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var details []ports.SeriesDetail
	for _, series := range s.series {
		if series.AuthorID != authorID {
			continue
		}
		details = append(details, ports.SeriesDetail{Series: series, Videos: s.videosOf(series.SeriesID)})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Series.CreatedAt.Before(details[j].Series.CreatedAt)
	})
	return details, nil
}

// videosOf lists a series' episodes oldest first. Caller holds the mutex.
func (s *Store) videosOf(seriesID string) []entities.Video {
	var videos []entities.Video
	for _, video := range s.videos {
		if video.SeriesID == seriesID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.Before(videos[j].CreatedAt)
	})
	return videos
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []ports.OutboxMessage
	for _, row := range s.outbox {
		if row.Published {
			continue
		}
		pending = append(pending, row.Message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.outbox {
		if row.Message.OutboxID == outboxID {
			s.outbox[i].Published = true
			return nil
		}
	}
	return nil
}
