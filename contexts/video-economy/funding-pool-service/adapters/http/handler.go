package httpadapter

import (
	"context"
	"log/slog"

	"reelfund/contexts/video-economy/funding-pool-service/application"
	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
	"reelfund/contexts/video-economy/funding-pool-service/ports"
	httptransport "reelfund/contexts/video-economy/funding-pool-service/transport/http"
)

type Handler struct {
	Funding application.Service
	Logger  *slog.Logger
}

func (h Handler) PledgeHandler(
	ctx context.Context,
	userID string,
	videoID string,
	req httptransport.PledgeRequest,
) (httptransport.PledgeResponse, error) {
	result, err := h.Funding.Pledge(ctx, userID, videoID, req.Amount)
	if err != nil {
		return httptransport.PledgeResponse{}, err
	}
	resp := httptransport.PledgeResponse{
		VideoID:        result.Video.VideoID,
		CollectedFunds: result.Video.CollectedFunds,
		VotesRequired:  result.Video.VotesRequired,
		Released:       result.Video.IsReleased,
		Balance:        result.PledgerBalance,
	}
	if dist := result.Distribution; dist != nil {
		resp.Distribution = &httptransport.DistributionResponse{
			AuthorID:        dist.AuthorID,
			AuthorAmount:    dist.AuthorAmount,
			AuthorRatio:     dist.AuthorRatio,
			PlatformRatio:   dist.PlatformRatio,
			CriticRatio:     dist.CriticRatio,
			ExecutedReviews: dist.ExecutedReviews,
		}
	}
	return resp, nil
}

func (h Handler) VoteReviewHandler(
	ctx context.Context,
	reviewID string,
) (httptransport.ReviewVoteResponse, error) {
	review, counted, err := h.Funding.VoteReview(ctx, reviewID)
	if err != nil {
		return httptransport.ReviewVoteResponse{}, err
	}
	return httptransport.ReviewVoteResponse{
		ReviewID:      review.ReviewID,
		CurrentVotes:  review.CurrentVotes,
		VotesRequired: review.VotesRequired,
		Executed:      review.IsExecuted,
		Counted:       counted,
	}, nil
}

func (h Handler) CreateSeriesHandler(
	ctx context.Context,
	authorID string,
	req httptransport.CreateSeriesRequest,
) (httptransport.SeriesResponse, error) {
	series, err := h.Funding.CreateSeries(ctx, authorID, application.CreateSeriesInput{
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Tags:        req.Tags,
	})
	if err != nil {
		return httptransport.SeriesResponse{}, err
	}
	return seriesResponse(series), nil
}

func (h Handler) CreateVideoHandler(
	ctx context.Context,
	authorID string,
	req httptransport.CreateVideoRequest,
) (httptransport.VideoResponse, error) {
	video, err := h.Funding.CreateVideo(ctx, authorID, application.CreateVideoInput{
		SeriesID:    req.SeriesID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		return httptransport.VideoResponse{}, err
	}
	return videoResponse(video), nil
}

func (h Handler) CreateReviewHandler(
	ctx context.Context,
	criticID string,
	req httptransport.CreateReviewRequest,
) (httptransport.ReviewResponse, error) {
	review, err := h.Funding.CreateReview(ctx, criticID, application.CreateReviewInput{
		VideoID: req.VideoID,
		Type:    entities.ReviewType(req.Type),
		Content: req.Content,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{
		ReviewID:      review.ReviewID,
		VideoID:       review.VideoID,
		CriticID:      review.CriticID,
		Type:          string(review.Type),
		Content:       review.Content,
		CurrentVotes:  review.CurrentVotes,
		VotesRequired: review.VotesRequired,
		Executed:      review.IsExecuted,
	}, nil
}

func (h Handler) GetVideoHandler(ctx context.Context, videoID string) (httptransport.VideoResponse, error) {
	video, err := h.Funding.GetVideo(ctx, videoID)
	if err != nil {
		return httptransport.VideoResponse{}, err
	}
	return videoResponse(video), nil
}

func (h Handler) GetSeriesHandler(ctx context.Context, seriesID string) (httptransport.SeriesDetailResponse, error) {
	detail, err := h.Funding.GetSeries(ctx, seriesID)
	if err != nil {
		return httptransport.SeriesDetailResponse{}, err
	}
	return seriesDetailResponse(detail), nil
}

func (h Handler) ListSeriesHandler(ctx context.Context, authorID string) ([]httptransport.SeriesDetailResponse, error) {
	details, err := h.Funding.ListSeriesByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	responses := make([]httptransport.SeriesDetailResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, seriesDetailResponse(detail))
	}
	return responses, nil
}

func seriesResponse(series entities.Series) httptransport.SeriesResponse {
	return httptransport.SeriesResponse{
		SeriesID:      series.SeriesID,
		AuthorID:      series.AuthorID,
		Title:         series.Title,
		Description:   series.Description,
		CoverURL:      series.CoverURL,
		Tags:          series.Tags,
		TotalEarnings: series.TotalEarnings,
	}
}

func videoResponse(video entities.Video) httptransport.VideoResponse {
	return httptransport.VideoResponse{
		VideoID:        video.VideoID,
		SeriesID:       video.SeriesID,
		AuthorID:       video.AuthorID,
		Title:          video.Title,
		Description:    video.Description,
		URL:            video.URL,
		Status:         string(video.Status),
		CollectedFunds: video.CollectedFunds,
		VotesRequired:  video.VotesRequired,
		Released:       video.IsReleased,
	}
}

func seriesDetailResponse(detail ports.SeriesDetail) httptransport.SeriesDetailResponse {
	videos := make([]httptransport.VideoResponse, 0, len(detail.Videos))
	for _, video := range detail.Videos {
		videos = append(videos, videoResponse(video))
	}
	return httptransport.SeriesDetailResponse{
		Series: seriesResponse(detail.Series),
		Videos: videos,
	}
}
