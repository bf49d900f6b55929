package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	domainerrors "reelfund/contexts/video-economy/funding-pool-service/domain/errors"
	"reelfund/contexts/video-economy/funding-pool-service/domain/services"
	"reelfund/contexts/video-economy/funding-pool-service/ports"
	"reelfund/internal/shared/events"
)

// Service coordinates the funding pool: pledges, review voting, series and
// episode lifecycle. Every multi-row state change is delegated to the
// repository as one atomic unit; the service pre-generates ids, validates
// input, and emits realtime notifications after the unit commits.
type Service struct {
	Repo     ports.Repository
	Notifier ports.Notifier
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type CreateSeriesInput struct {
	Title       string
	Description string
	CoverURL    string
	Tags        []string
}

type CreateVideoInput struct {
	SeriesID    string
	Title       string
	Description string
	URL         string
}

type CreateReviewInput struct {
	VideoID string
	Type    entities.ReviewType
	Content string
}

// Pledge debits the pledger, credits the video's pool, and, when the pledge
// crosses the funding threshold, runs the revenue distribution inside the same
// atomic unit. The returned result carries the distribution when one happened.
func (s Service) Pledge(ctx context.Context, userID string, videoID string, amount int64) (ports.PledgeResult, error) {
	userID = strings.TrimSpace(userID)
	videoID = strings.TrimSpace(videoID)
	if userID == "" || videoID == "" {
		return ports.PledgeResult{}, domainerrors.ErrInvalidInput
	}
	if amount <= 0 {
		return ports.PledgeResult{}, domainerrors.ErrInvalidAmount
	}

	input := ports.PledgeInput{
		UserID:  userID,
		VideoID: videoID,
		Amount:  amount,
		Now:     s.now(),
	}
	ids := []*string{
		&input.PledgeID,
		&input.TransactionID,
		&input.PayoutTransactionID,
		&input.PayoutEventID,
		&input.PublishEventID,
	}
	for _, id := range ids {
		generated, err := s.IDGen.NewID(ctx)
		if err != nil {
			return ports.PledgeResult{}, err
		}
		*id = generated
	}

	result, err := s.Repo.ProcessPledge(ctx, input)
	if err != nil {
		return ports.PledgeResult{}, err
	}

	s.emitToUser(userID, events.TypeBalanceUpdated, map[string]any{
		"balance":    result.PledgerBalance,
		"reputation": result.PledgerReputation,
	})
	s.broadcast(events.TypeVideoProgressUpdated, map[string]any{
		"videoId":        result.Video.VideoID,
		"collectedFunds": result.Video.CollectedFunds,
		"votesRequired":  result.Video.VotesRequired,
	})
	ResolveLogger(s.Logger).Info("pledge processed",
		"event", "funding_pledge_processed",
		"module", "video-economy/funding-pool-service",
		"layer", "application",
		"user_id", userID,
		"video_id", result.Video.VideoID,
		"amount", amount,
		"collected_funds", result.Video.CollectedFunds,
	)

	if dist := result.Distribution; dist != nil {
		s.emitToUser(dist.AuthorID, events.TypeBalanceUpdated, map[string]any{
			"balance":    dist.AuthorBalance,
			"reputation": dist.AuthorReputation,
		})
		s.emitToUser(dist.AuthorID, events.TypeAuthorPayoutReceived, map[string]any{
			"amount":     dist.AuthorAmount,
			"videoTitle": dist.VideoTitle,
		})
		s.broadcast(events.TypeVideoPublished, map[string]any{
			"videoId": result.Video.VideoID,
			"title":   result.Video.Title,
		})
		ResolveLogger(s.Logger).Info("funding pool distributed",
			"event", "funding_pool_distributed",
			"module", "video-economy/funding-pool-service",
			"layer", "application",
			"video_id", result.Video.VideoID,
			"author_id", dist.AuthorID,
			"author_amount", dist.AuthorAmount,
			"executed_reviews", dist.ExecutedReviews,
		)
	}
	return result, nil
}

// VoteReview adds one vote to an unexecuted review and reports whether the
// vote landed. An executed review absorbs further votes without change.
func (s Service) VoteReview(ctx context.Context, reviewID string) (entities.Review, bool, error) {
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return entities.Review{}, false, domainerrors.ErrInvalidInput
	}
	review, changed, err := s.Repo.VoteReview(ctx, reviewID, s.now())
	if err != nil {
		return entities.Review{}, false, err
	}
	if changed && review.IsExecuted {
		ResolveLogger(s.Logger).Info("review executed",
			"event", "funding_review_executed",
			"module", "video-economy/funding-pool-service",
			"layer", "application",
			"review_id", review.ReviewID,
			"video_id", review.VideoID,
			"review_type", string(review.Type),
		)
	}
	return review, changed, nil
}

// CreateSeries registers a new series for the author.
func (s Service) CreateSeries(ctx context.Context, authorID string, input CreateSeriesInput) (entities.Series, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" || strings.TrimSpace(input.Title) == "" {
		return entities.Series{}, domainerrors.ErrInvalidInput
	}
	seriesID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Series{}, err
	}
	series := entities.Series{
		SeriesID:    seriesID,
		AuthorID:    authorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Tags:        input.Tags,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.CreateSeries(ctx, series); err != nil {
		return entities.Series{}, err
	}
	s.broadcast(events.TypeSeriesCreated, map[string]any{
		"seriesId": series.SeriesID,
		"title":    series.Title,
		"authorId": series.AuthorID,
	})
	return series, nil
}

// CreateVideo opens the next episode of a series. The creation fee is debited
// from the author in the same atomic unit as the video row, and a series with
// an unreleased episode rejects new ones.
func (s Service) CreateVideo(ctx context.Context, authorID string, input CreateVideoInput) (entities.Video, error) {
	authorID = strings.TrimSpace(authorID)
	seriesID := strings.TrimSpace(input.SeriesID)
	if authorID == "" || seriesID == "" || strings.TrimSpace(input.Title) == "" {
		return entities.Video{}, domainerrors.ErrInvalidInput
	}
	videoID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Video{}, err
	}
	feeTransactionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Video{}, err
	}
	now := s.now()
	result, err := s.Repo.CreateVideo(ctx, ports.CreateVideoInput{
		Video: entities.Video{
			VideoID:       videoID,
			SeriesID:      seriesID,
			AuthorID:      authorID,
			Title:         strings.TrimSpace(input.Title),
			Description:   input.Description,
			URL:           input.URL,
			Status:        entities.VideoStatusPublished,
			VotesRequired: services.DefaultVideoThreshold,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Fee:              services.EpisodeCreationFee,
		FeeTransactionID: feeTransactionID,
		Now:              now,
	})
	if err != nil {
		return entities.Video{}, err
	}
	s.emitToUser(authorID, events.TypeBalanceUpdated, map[string]any{
		"balance":    result.AuthorBalance,
		"reputation": result.AuthorReputation,
	})
	ResolveLogger(s.Logger).Info("episode created",
		"event", "funding_episode_created",
		"module", "video-economy/funding-pool-service",
		"layer", "application",
		"author_id", authorID,
		"series_id", seriesID,
		"video_id", result.Video.VideoID,
		"fee", services.EpisodeCreationFee,
	)
	return result.Video, nil
}

// CreateReview opens a critic review on a video. Votes start at zero and the
// review only counts toward distribution once it is executed.
func (s Service) CreateReview(ctx context.Context, criticID string, input CreateReviewInput) (entities.Review, error) {
	criticID = strings.TrimSpace(criticID)
	videoID := strings.TrimSpace(input.VideoID)
	if criticID == "" || videoID == "" {
		return entities.Review{}, domainerrors.ErrInvalidInput
	}
	if !entities.ValidReviewType(input.Type) {
		return entities.Review{}, domainerrors.ErrInvalidInput
	}
	if _, err := s.Repo.GetVideo(ctx, videoID); err != nil {
		return entities.Review{}, err
	}
	reviewID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Review{}, err
	}
	now := s.now()
	review := entities.Review{
		ReviewID:      reviewID,
		VideoID:       videoID,
		CriticID:      criticID,
		Type:          input.Type,
		Content:       input.Content,
		VotesRequired: services.DefaultReviewThreshold,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.CreateReview(ctx, review); err != nil {
		return entities.Review{}, err
	}
	return review, nil
}

func (s Service) GetVideo(ctx context.Context, videoID string) (entities.Video, error) {
	if strings.TrimSpace(videoID) == "" {
		return entities.Video{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetVideo(ctx, strings.TrimSpace(videoID))
}

func (s Service) GetSeries(ctx context.Context, seriesID string) (ports.SeriesDetail, error) {
	if strings.TrimSpace(seriesID) == "" {
		return ports.SeriesDetail{}, domainerrors.ErrInvalidInput
	}
	return s.Repo.GetSeries(ctx, strings.TrimSpace(seriesID))
}

func (s Service) ListSeriesByAuthor(ctx context.Context, authorID string) ([]ports.SeriesDetail, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Repo.ListSeriesByAuthor(ctx, strings.TrimSpace(authorID))
}

func (s Service) emitToUser(userID string, eventType string, data any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.EmitToUser(userID, eventType, data)
}

func (s Service) broadcast(eventType string, data any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Broadcast(eventType, data)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
