package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	domainerrors "reelfund/contexts/video-economy/funding-pool-service/domain/errors"
	"reelfund/contexts/video-economy/funding-pool-service/domain/services"
	"reelfund/contexts/video-economy/funding-pool-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) ProcessPledge(ctx context.Context, input ports.PledgeInput) (ports.PledgeResult, error) {
	var result ports.PledgeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Balance check and decrement are one conditional UPDATE so concurrent
		// pledges cannot overdraw the account.
		debit := tx.Model(&accountModel{}).
			Where("user_id = ? AND balance >= ?", input.UserID, input.Amount).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", input.Amount),
				"updated_at": input.Now.UTC(),
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			var row accountModel
			if err := tx.Where("user_id = ?", input.UserID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrAccountNotFound
				}
				return err
			}
			return domainerrors.ErrInsufficientFunds
		}

		videoID := ptr(input.VideoID)
		if err := tx.Create(&transactionModel{
			ID:        input.TransactionID,
			UserID:    input.UserID,
			Amount:    input.Amount,
			Type:      "USER_VOTE_COST",
			Status:    "COMPLETED",
			VideoID:   videoID,
			CreatedAt: input.Now.UTC(),
			UpdatedAt: input.Now.UTC(),
		}).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}
		if err := tx.Create(&pledgeModel{
			ID:        input.PledgeID,
			UserID:    input.UserID,
			VideoID:   input.VideoID,
			Amount:    input.Amount,
			CreatedAt: input.Now.UTC(),
		}).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}

		// The released guard sits inside the UPDATE itself: a pledge racing a
		// release either lands before the flag flips or touches zero rows.
		fund := tx.Model(&videoModel{}).
			Where("id = ? AND is_released = ?", input.VideoID, false).
			Updates(map[string]any{
				"collected_funds": gorm.Expr("collected_funds + ?", input.Amount),
				"updated_at":      input.Now.UTC(),
			})
		if fund.Error != nil {
			return fund.Error
		}
		if fund.RowsAffected == 0 {
			return domainerrors.ErrTargetNotFundable
		}

		var video videoModel
		if err := tx.Where("id = ?", input.VideoID).First(&video).Error; err != nil {
			return err
		}
		if err := tx.Model(&seriesModel{}).
			Where("id = ?", video.SeriesID).
			Update("total_earnings", gorm.Expr("total_earnings + ?", input.Amount)).Error; err != nil {
			return err
		}

		var pledger accountModel
		if err := tx.Where("user_id = ?", input.UserID).First(&pledger).Error; err != nil {
			return err
		}
		result = ports.PledgeResult{
			Video:             video.toEntity(),
			PledgerBalance:    pledger.Balance,
			PledgerReputation: pledger.Reputation,
		}
		if video.CollectedFunds < video.VotesRequired {
			return nil
		}

		// Release CAS. Exactly one pledge transaction wins this flip even when
		// several cross the threshold together, so the distribution runs once.
		release := tx.Model(&videoModel{}).
			Where("id = ? AND is_released = ?", video.ID, false).
			Updates(map[string]any{
				"is_released": true,
				"status":      string(entities.VideoStatusPublished),
				"updated_at":  input.Now.UTC(),
			})
		if release.Error != nil {
			return release.Error
		}
		if release.RowsAffected == 0 {
			return nil
		}

		distribution, err := r.distribute(tx, video, input)
		if err != nil {
			return err
		}
		video.IsReleased = true
		video.Status = string(entities.VideoStatusPublished)
		result.Video = video.toEntity()
		result.Distribution = distribution
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return ports.PledgeResult{}, err
		}
		return ports.PledgeResult{}, r.logError("funding_repo_process_pledge_failed", err,
			"user_id", input.UserID,
			"video_id", input.VideoID,
		)
	}
	return result, nil
}

// distribute pays the author and stages the durable events. Runs inside the
// pledge transaction, after the release CAS was won.
func (r *Repository) distribute(tx *gorm.DB, video videoModel, input ports.PledgeInput) (*ports.Distribution, error) {
	var executedRows []struct {
		Type       string
		Reputation int64
	}
	if err := tx.Table("reviews").
		Select("reviews.type AS type, COALESCE(accounts.reputation, 0) AS reputation").
		Joins("LEFT JOIN accounts ON accounts.user_id = reviews.critic_id").
		Where("reviews.video_id = ? AND reviews.is_executed = ?", video.ID, true).
		Scan(&executedRows).Error; err != nil {
		return nil, err
	}
	executed := make([]services.ExecutedReview, 0, len(executedRows))
	for _, row := range executedRows {
		executed = append(executed, services.ExecutedReview{
			Type:             entities.ReviewType(row.Type),
			CriticReputation: row.Reputation,
		})
	}
	split := services.ComputeSplit(video.CollectedFunds, executed)

	credit := tx.Model(&accountModel{}).
		Where("user_id = ?", video.AuthorID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", split.AuthorAmount),
			"updated_at": input.Now.UTC(),
		})
	if credit.Error != nil {
		return nil, credit.Error
	}
	if credit.RowsAffected == 0 {
		return nil, domainerrors.ErrAccountNotFound
	}
	if err := tx.Create(&transactionModel{
		ID:        input.PayoutTransactionID,
		UserID:    video.AuthorID,
		Amount:    split.AuthorAmount,
		Type:      "AUTHOR_PAYOUT",
		Status:    "COMPLETED",
		VideoID:   ptr(video.ID),
		CreatedAt: input.Now.UTC(),
		UpdatedAt: input.Now.UTC(),
	}).Error; err != nil {
		return nil, err
	}
	var author accountModel
	if err := tx.Where("user_id = ?", video.AuthorID).First(&author).Error; err != nil {
		return nil, err
	}

	payout, err := ports.BuildAuthorPayoutEnvelope(ports.AuthorPayoutEvent{
		EventID:       input.PayoutEventID,
		VideoID:       video.ID,
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
		VideoID:    video.ID,
		SeriesID:   video.SeriesID,
		Title:      video.Title,
		OccurredAt: input.Now,
	})
	if err != nil {
		return nil, err
	}
	for _, event := range []ports.EventEnvelope{payout, published} {
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		if err := tx.Create(&outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			Status:       outboxStatusPending,
			CreatedAt:    input.Now.UTC(),
		}).Error; err != nil {
			return nil, err
		}
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

func (r *Repository) VoteReview(ctx context.Context, reviewID string, now time.Time) (entities.Review, bool, error) {
	reviewID = strings.TrimSpace(reviewID)
	var (
		review  entities.Review
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row reviewModel
		if err := tx.Where("id = ?", reviewID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrReviewNotFound
			}
			return err
		}
		if row.IsExecuted {
			review = row.toEntity()
			return nil
		}

		// Increment and the executed flip happen in one statement; the guard
		// makes concurrent votes past the threshold lose instead of double
		// executing.
		result := tx.Model(&reviewModel{}).
			Where("id = ? AND is_executed = ?", reviewID, false).
			Updates(map[string]any{
				"current_votes": gorm.Expr("current_votes + 1"),
				"is_executed":   gorm.Expr("current_votes + 1 >= votes_required"),
				"updated_at":    now.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		changed = result.RowsAffected == 1

		if err := tx.Where("id = ?", reviewID).First(&row).Error; err != nil {
			return err
		}
		review = row.toEntity()
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Review{}, false, err
		}
		return entities.Review{}, false, r.logError("funding_repo_vote_review_failed", err,
			"review_id", reviewID,
		)
	}
	return review, changed, nil
}

func (r *Repository) CreateSeries(ctx context.Context, series entities.Series) error {
	row, err := seriesModelFromEntity(series)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("funding_repo_create_series_failed", err,
			"series_id", series.SeriesID,
			"author_id", series.AuthorID,
		)
	}
	return nil
}

func (r *Repository) CreateVideo(ctx context.Context, input ports.CreateVideoInput) (ports.CreateVideoResult, error) {
	var result ports.CreateVideoResult
	video := input.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var series seriesModel
		if err := tx.Where("id = ?", video.SeriesID).First(&series).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSeriesNotFound
			}
			return err
		}
		var active int64
		if err := tx.Model(&videoModel{}).
			Where("series_id = ? AND is_released = ?", video.SeriesID, false).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return domainerrors.ErrSeriesHasActiveEpisode
		}

		fee := tx.Model(&accountModel{}).
			Where("user_id = ? AND balance >= ?", video.AuthorID, input.Fee).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", input.Fee),
				"updated_at": input.Now.UTC(),
			})
		if fee.Error != nil {
			return fee.Error
		}
		if fee.RowsAffected == 0 {
			var row accountModel
			if err := tx.Where("user_id = ?", video.AuthorID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrAccountNotFound
				}
				return err
			}
			return domainerrors.ErrInsufficientFunds
		}
		if err := tx.Create(&transactionModel{
			ID:        input.FeeTransactionID,
			UserID:    video.AuthorID,
			Amount:    input.Fee,
			Type:      "PLATFORM_FEE",
			Status:    "COMPLETED",
			VideoID:   ptr(video.VideoID),
			CreatedAt: input.Now.UTC(),
			UpdatedAt: input.Now.UTC(),
		}).Error; err != nil {
			return err
		}

		row := videoModelFromEntity(video)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}

		var author accountModel
		if err := tx.Where("user_id = ?", video.AuthorID).First(&author).Error; err != nil {
			return err
		}
		result = ports.CreateVideoResult{
			Video:            row.toEntity(),
			AuthorBalance:    author.Balance,
			AuthorReputation: author.Reputation,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return ports.CreateVideoResult{}, err
		}
		return ports.CreateVideoResult{}, r.logError("funding_repo_create_video_failed", err,
			"series_id", video.SeriesID,
			"author_id", video.AuthorID,
		)
	}
	return result, nil
}

func (r *Repository) CreateReview(ctx context.Context, review entities.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var video videoModel
		if err := tx.Where("id = ?", review.VideoID).First(&video).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrVideoNotFound
			}
			return err
		}
		row := reviewModelFromEntity(review)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidInput
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("funding_repo_create_review_failed", err,
			"review_id", review.ReviewID,
			"video_id", review.VideoID,
		)
	}
	return nil
}

func (r *Repository) GetVideo(ctx context.Context, videoID string) (entities.Video, error) {
	var row videoModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(videoID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Video{}, domainerrors.ErrVideoNotFound
		}
		return entities.Video{}, r.logError("funding_repo_get_video_failed", err, "video_id", videoID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSeries(ctx context.Context, seriesID string) (ports.SeriesDetail, error) {
	var row seriesModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(seriesID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SeriesDetail{}, domainerrors.ErrSeriesNotFound
		}
		return ports.SeriesDetail{}, r.logError("funding_repo_get_series_failed", err, "series_id", seriesID)
	}
	videos, err := r.videosOf(ctx, row.ID)
	if err != nil {
		return ports.SeriesDetail{}, err
	}
	return ports.SeriesDetail{Series: row.toEntity(), Videos: videos}, nil
}

func (r *Repository) ListSeriesByAuthor(ctx context.Context, authorID string) ([]ports.SeriesDetail, error) {
	var rows []seriesModel
	err := r.db.WithContext(ctx).
		Where("author_id = ?", strings.TrimSpace(authorID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("funding_repo_list_series_failed", err, "author_id", authorID)
	}
	details := make([]ports.SeriesDetail, 0, len(rows))
	for _, row := range rows {
		videos, err := r.videosOf(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, ports.SeriesDetail{Series: row.toEntity(), Videos: videos})
	}
	return details, nil
}

func (r *Repository) videosOf(ctx context.Context, seriesID string) ([]entities.Video, error) {
	var rows []videoModel
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("funding_repo_list_videos_failed", err, "series_id", seriesID)
	}
	videos := make([]entities.Video, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, row.toEntity())
	}
	return videos, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("funding_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("funding_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "video-economy/funding-pool-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("funding repository operation failed", fields...)
	return err
}

func ptr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrAccountNotFound) ||
		errors.Is(err, domainerrors.ErrInsufficientFunds) ||
		errors.Is(err, domainerrors.ErrTargetNotFundable) ||
		errors.Is(err, domainerrors.ErrSeriesNotFound) ||
		errors.Is(err, domainerrors.ErrVideoNotFound) ||
		errors.Is(err, domainerrors.ErrReviewNotFound) ||
		errors.Is(err, domainerrors.ErrSeriesHasActiveEpisode) ||
		errors.Is(err, domainerrors.ErrInvalidInput)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
