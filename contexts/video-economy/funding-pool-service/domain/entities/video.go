package entities

import "time"

type VideoStatus string

const (
	VideoStatusDraft      VideoStatus = "DRAFT"
	VideoStatusModeration VideoStatus = "MODERATION"
	VideoStatusPublished  VideoStatus = "PUBLISHED"
)

// Video is the funding target: each episode accumulates pledges toward its
// own threshold. Once released the record is frozen with respect to funding.
type Video struct {
	VideoID        string
	SeriesID       string
	AuthorID       string
	Title          string
	Description    string
	URL            string
	Status         VideoStatus
	CollectedFunds int64
	VotesRequired  int64
	IsReleased     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Fundable reports whether the video still accepts pledges.
func (v Video) Fundable() bool {
	return !v.IsReleased
}

// Series groups episodes by one author. TotalEarnings is aggregate
// bookkeeping only; the funding pool itself is per-video.
type Series struct {
	SeriesID      string
	AuthorID      string
	Title         string
	Description   string
	CoverURL      string
	Tags          []string
	TotalEarnings int64
	CreatedAt     time.Time
}
