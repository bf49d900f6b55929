package services

import (
	"testing"

	"reelfund/contexts/video-economy/funding-pool-service/domain/entities"
)

func TestComputeSplitBaseShares(t *testing.T) {
	split := ComputeSplit(1000, nil)
	if split.AuthorAmount != 700 {
		t.Fatalf("expected author amount 700, got %d", split.AuthorAmount)
	}
	if split.AuthorRatio != 0.70 || split.PlatformRatio != 0.20 || split.CriticRatio != 0.10 {
		t.Fatalf("expected base ratios 0.70/0.20/0.10, got %v/%v/%v",
			split.AuthorRatio, split.PlatformRatio, split.CriticRatio)
	}
}

func TestComputeSplitNegativeReviewCutsAuthorShare(t *testing.T) {
	split := ComputeSplit(1000, []ExecutedReview{
		{Type: entities.ReviewTypeNegative, CriticReputation: 0},
	})
	if split.AuthorAmount != 600 {
		t.Fatalf("expected author amount 600 after one negative review, got %d", split.AuthorAmount)
	}
	if diff := split.PlatformRatio - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected platform ratio 0.25, got %v", split.PlatformRatio)
	}
	if diff := split.CriticRatio - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected critic ratio 0.15, got %v", split.CriticRatio)
	}
}

func TestComputeSplitReputationBonusFollowsReviewType(t *testing.T) {
	// Positive reviews route the reputation bonus to the critic pool,
	// negative reviews route it to the platform pool.
	positive := ComputeSplit(1000, []ExecutedReview{
		{Type: entities.ReviewTypePositive, CriticReputation: 100},
	})
	if positive.AuthorAmount != 700 {
		t.Fatalf("positive review must not touch the author share, got %d", positive.AuthorAmount)
	}
	if diff := positive.CriticRatio - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected critic ratio 0.25 with reputation bonus, got %v", positive.CriticRatio)
	}

	negative := ComputeSplit(1000, []ExecutedReview{
		{Type: entities.ReviewTypeNegative, CriticReputation: 100},
	})
	if diff := negative.PlatformRatio - 0.35; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected platform ratio 0.35 with reputation bonus, got %v", negative.PlatformRatio)
	}
}

func TestComputeSplitIsOrderIndependent(t *testing.T) {
	reviews := []ExecutedReview{
		{Type: entities.ReviewTypeNegative, CriticReputation: 50},
		{Type: entities.ReviewTypePositive, CriticReputation: 200},
		{Type: entities.ReviewTypeNegative, CriticReputation: 10},
	}
	reversed := []ExecutedReview{reviews[2], reviews[1], reviews[0]}

	a := ComputeSplit(5000, reviews)
	b := ComputeSplit(5000, reversed)
	if a.AuthorAmount != b.AuthorAmount {
		t.Fatalf("expected order-independent payout, got %d vs %d", a.AuthorAmount, b.AuthorAmount)
	}
	for _, diff := range []float64{
		a.AuthorRatio - b.AuthorRatio,
		a.PlatformRatio - b.PlatformRatio,
		a.CriticRatio - b.CriticRatio,
	} {
		if diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("expected order-independent ratios, got %+v vs %+v", a, b)
		}
	}
}

func TestComputeSplitClampsAuthorShareAtZero(t *testing.T) {
	reviews := make([]ExecutedReview, 8)
	for i := range reviews {
		reviews[i] = ExecutedReview{Type: entities.ReviewTypeNegative}
	}
	split := ComputeSplit(1000, reviews)
	if split.AuthorAmount != 0 {
		t.Fatalf("expected author amount clamped to 0, got %d", split.AuthorAmount)
	}
	if split.AuthorRatio >= 0 {
		t.Fatalf("expected raw author ratio to go negative for reporting, got %v", split.AuthorRatio)
	}
}

func TestComputeSplitFloorsAuthorAmount(t *testing.T) {
	split := ComputeSplit(999, nil)
	if split.AuthorAmount != 699 {
		t.Fatalf("expected floor(999*0.70)=699, got %d", split.AuthorAmount)
	}
}
