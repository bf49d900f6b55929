package services

import (
	"math"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
)

// Video economy constants. Base shares must sum to 1.0 before review
// modifiers are applied; the platform share absorbs any residual afterwards.
const (
	BaseAuthorShare   = 0.70
	BasePlatformShare = 0.20
	BaseCriticShare   = 0.10

	CriticReputationWeight = 0.001

	NegativeAuthorReduction = 0.10
	NegativePlatformGain    = 0.05
	NegativeCriticGain      = 0.05

	PositivePlatformReduction = 0.05
	PositiveCriticGain        = 0.05

	DefaultVideoThreshold  = 1000
	DefaultReviewThreshold = 50
	EpisodeCreationFee     = 500
)

// ExecutedReview carries the two facts a review contributes to the split.
type ExecutedReview struct {
	Type             entities.ReviewType
	CriticReputation int64
}

// Split is the outcome of distributing one funding pool. Only the author
// amount is paid out here; platform and critic ratios are reported for
// downstream bookkeeping.
type Split struct {
	AuthorRatio   float64
	PlatformRatio float64
	CriticRatio   float64
	AuthorAmount  int64
}

// ComputeSplit applies every executed review's modifier to the base shares
// and derives the author payout. All terms are additive, so review order does
// not matter. The author ratio is clamped at zero: heavy negative reviews can
// reduce the payout to nothing but never make the author owe the pool.
func ComputeSplit(totalPool int64, reviews []ExecutedReview) Split {
	authorRatio := BaseAuthorShare
	platformRatio := BasePlatformShare
	criticRatio := BaseCriticShare

	for _, review := range reviews {
		reputationBonus := float64(review.CriticReputation) * CriticReputationWeight

		if review.Type == entities.ReviewTypeNegative {
			authorRatio -= NegativeAuthorReduction
			platformRatio += NegativePlatformGain + reputationBonus
			criticRatio += NegativeCriticGain
		} else {
			platformRatio -= PositivePlatformReduction
			criticRatio += PositiveCriticGain + reputationBonus
		}
	}

	return Split{
		AuthorRatio:   authorRatio,
		PlatformRatio: platformRatio,
		CriticRatio:   criticRatio,
		AuthorAmount:  int64(math.Floor(float64(totalPool) * math.Max(authorRatio, 0))),
	}
}
