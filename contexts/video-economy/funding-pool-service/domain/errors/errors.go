package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid funding input")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTargetNotFundable      = errors.New("video is already released or not found")
	ErrSeriesNotFound         = errors.New("series not found")
	ErrVideoNotFound          = errors.New("video not found")
	ErrReviewNotFound         = errors.New("review not found")
	ErrSeriesHasActiveEpisode = errors.New("current episode is still in funding")
)
