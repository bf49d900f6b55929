package postgresadapter

import (
	"encoding/json"
	"time"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
)

const (
	outboxStatusPending   = "PENDING"
	outboxStatusPublished = "PUBLISHED"
)

// accountModel and transactionModel map the shared ledger tables owned by the
// wallet module. This module only touches them through conditional updates
// inside its own transactions.
type accountModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	Balance    int64     `gorm:"column:balance"`
	Reputation int64     `gorm:"column:reputation"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "accounts"
}

type transactionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	Amount    int64     `gorm:"column:amount"`
	Type      string    `gorm:"column:type"`
	Status    string    `gorm:"column:status"`
	VideoID   *string   `gorm:"column:video_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

type seriesModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	AuthorID      string    `gorm:"column:author_id"`
	Title         string    `gorm:"column:title"`
	Description   string    `gorm:"column:description"`
	CoverURL      string    `gorm:"column:cover_url"`
	Tags          []byte    `gorm:"column:tags"`
	TotalEarnings int64     `gorm:"column:total_earnings"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (seriesModel) TableName() string {
	return "series"
}

func seriesModelFromEntity(series entities.Series) (seriesModel, error) {
	tags, err := json.Marshal(series.Tags)
	if err != nil {
		return seriesModel{}, err
	}
	return seriesModel{
		ID:            series.SeriesID,
		AuthorID:      series.AuthorID,
		Title:         series.Title,
		Description:   series.Description,
		CoverURL:      series.CoverURL,
		Tags:          tags,
		TotalEarnings: series.TotalEarnings,
		CreatedAt:     series.CreatedAt.UTC(),
	}, nil
}

func (m seriesModel) toEntity() entities.Series {
	var tags []string
	if len(m.Tags) > 0 {
		_ = json.Unmarshal(m.Tags, &tags)
	}
	return entities.Series{
		SeriesID:      m.ID,
		AuthorID:      m.AuthorID,
		Title:         m.Title,
		Description:   m.Description,
		CoverURL:      m.CoverURL,
		Tags:          tags,
		TotalEarnings: m.TotalEarnings,
		CreatedAt:     m.CreatedAt,
	}
}

type videoModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	SeriesID       string    `gorm:"column:series_id"`
	AuthorID       string    `gorm:"column:author_id"`
	Title          string    `gorm:"column:title"`
	Description    string    `gorm:"column:description"`
	URL            string    `gorm:"column:url"`
	Status         string    `gorm:"column:status"`
	CollectedFunds int64     `gorm:"column:collected_funds"`
	VotesRequired  int64     `gorm:"column:votes_required"`
	IsReleased     bool      `gorm:"column:is_released"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (videoModel) TableName() string {
	return "videos"
}

func videoModelFromEntity(video entities.Video) videoModel {
	return videoModel{
		ID:             video.VideoID,
		SeriesID:       video.SeriesID,
		AuthorID:       video.AuthorID,
		Title:          video.Title,
		Description:    video.Description,
		URL:            video.URL,
		Status:         string(video.Status),
		CollectedFunds: video.CollectedFunds,
		VotesRequired:  video.VotesRequired,
		IsReleased:     video.IsReleased,
		CreatedAt:      video.CreatedAt.UTC(),
		UpdatedAt:      video.UpdatedAt.UTC(),
	}
}

func (m videoModel) toEntity() entities.Video {
	return entities.Video{
		VideoID:        m.ID,
		SeriesID:       m.SeriesID,
		AuthorID:       m.AuthorID,
		Title:          m.Title,
		Description:    m.Description,
		URL:            m.URL,
		Status:         entities.VideoStatus(m.Status),
		CollectedFunds: m.CollectedFunds,
		VotesRequired:  m.VotesRequired,
		IsReleased:     m.IsReleased,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type reviewModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	VideoID       string    `gorm:"column:video_id"`
	CriticID      string    `gorm:"column:critic_id"`
	Type          string    `gorm:"column:type"`
	Content       string    `gorm:"column:content"`
	CurrentVotes  int64     `gorm:"column:current_votes"`
	VotesRequired int64     `gorm:"column:votes_required"`
	IsExecuted    bool      `gorm:"column:is_executed"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string {
	return "reviews"
}

func reviewModelFromEntity(review entities.Review) reviewModel {
	return reviewModel{
		ID:            review.ReviewID,
		VideoID:       review.VideoID,
		CriticID:      review.CriticID,
		Type:          string(review.Type),
		Content:       review.Content,
		CurrentVotes:  review.CurrentVotes,
		VotesRequired: review.VotesRequired,
		IsExecuted:    review.IsExecuted,
		CreatedAt:     review.CreatedAt.UTC(),
		UpdatedAt:     review.UpdatedAt.UTC(),
	}
}

func (m reviewModel) toEntity() entities.Review {
	return entities.Review{
		ReviewID:      m.ID,
		VideoID:       m.VideoID,
		CriticID:      m.CriticID,
		Type:          entities.ReviewType(m.Type),
		Content:       m.Content,
		CurrentVotes:  m.CurrentVotes,
		VotesRequired: m.VotesRequired,
		IsExecuted:    m.IsExecuted,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type pledgeModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id"`
	VideoID   string    `gorm:"column:video_id"`
	Amount    int64     `gorm:"column:amount"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (pledgeModel) TableName() string {
	return "pledges"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "funding_outbox"
}
