package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PledgeRequest struct {
	Amount int64 `json:"amount"`
}

type PledgeResponse struct {
	VideoID        string                `json:"video_id"`
	CollectedFunds int64                 `json:"collected_funds"`
	VotesRequired  int64                 `json:"votes_required"`
	Released       bool                  `json:"released"`
	Balance        int64                 `json:"balance"`
	Distribution   *DistributionResponse `json:"distribution,omitempty"`
}

type DistributionResponse struct {
	AuthorID        string  `json:"author_id"`
	AuthorAmount    int64   `json:"author_amount"`
	AuthorRatio     float64 `json:"author_ratio"`
	PlatformRatio   float64 `json:"platform_ratio"`
	CriticRatio     float64 `json:"critic_ratio"`
	ExecutedReviews int     `json:"executed_reviews"`
}

type ReviewVoteResponse struct {
	ReviewID      string `json:"review_id"`
	CurrentVotes  int64  `json:"current_votes"`
	VotesRequired int64  `json:"votes_required"`
	Executed      bool   `json:"executed"`
	Counted       bool   `json:"counted"`
}

type CreateSeriesRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CoverURL    string   `json:"cover_url"`
	Tags        []string `json:"tags"`
}

type SeriesResponse struct {
	SeriesID      string   `json:"id"`
	AuthorID      string   `json:"author_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CoverURL      string   `json:"cover_url"`
	Tags          []string `json:"tags"`
	TotalEarnings int64    `json:"total_earnings"`
}

type SeriesDetailResponse struct {
	Series SeriesResponse  `json:"series"`
	Videos []VideoResponse `json:"videos"`
}

type CreateVideoRequest struct {
	SeriesID    string `json:"series_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type VideoResponse struct {
	VideoID        string `json:"id"`
	SeriesID       string `json:"series_id"`
	AuthorID       string `json:"author_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	Status         string `json:"status"`
	CollectedFunds int64  `json:"collected_funds"`
	VotesRequired  int64  `json:"votes_required"`
	Released       bool   `json:"released"`
}

type CreateReviewRequest struct {
	VideoID string `json:"video_id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ReviewResponse struct {
	ReviewID      string `json:"id"`
	VideoID       string `json:"video_id"`
	CriticID      string `json:"critic_id"`
	Type          string `json:"type"`
	Content       string `json:"content"`
	CurrentVotes  int64  `json:"current_votes"`
	VotesRequired int64  `json:"votes_required"`
	Executed      bool   `json:"executed"`
}
