package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_BrandNewAccountIsRejected(t *testing.T) {
	snapshot := Snapshot{
		GuestID:        "guest-1",
		TotalBookings:  0,
		AccountAgeDays: 3,
	}

	assessment := Score(snapshot)

	// 50 base, -10 no bookings, -15 account newer than 7 days
	assert.Equal(t, 25, assessment.Score)
	assert.Equal(t, ActionReject, assessment.Action)
	assert.Equal(t, 80, assessment.Confidence)
	assert.Contains(t, assessment.RiskFactors, "no prior bookings")
	assert.Contains(t, assessment.RiskFactors, "account newer than 7 days")
}

func TestScore_EstablishedRepeatGuestAutoApproves(t *testing.T) {
	snapshot := Snapshot{
		GuestID:           "guest-2",
		TotalBookings:     20,
		CompletedBookings: 18,
		AverageRating:     4.8,
		RatingCount:       15,
		AccountAgeDays:    365,
		RepeatGuest:       true,
	}

	assessment := Score(snapshot)

	// 50 + 25 repeat + 20 rating + 15 completed + 10 age = 120, clamped
	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, ActionAutoApprove, assessment.Action)
	assert.Equal(t, 95, assessment.Confidence)
	assert.Empty(t, assessment.RiskFactors)
}

func TestScore_IsDeterministic(t *testing.T) {
	snapshot := Snapshot{
		GuestID:           "guest-3",
		TotalBookings:     8,
		CompletedBookings: 6,
		CancelledByGuest:  1,
		AverageRating:     4.2,
		RatingCount:       5,
		AccountAgeDays:    120,
	}

	first := Score(snapshot)
	second := Score(snapshot)

	assert.Equal(t, first, second)
}

func TestScore_CancellationRateTiers(t *testing.T) {
	base := Snapshot{
		GuestID:           "guest-4",
		TotalBookings:     10,
		CompletedBookings: 10,
		AccountAgeDays:    200,
	}
	// 50 + 15 completed + 10 age = 75 with no cancellations
	clean := Score(base)
	assert.Equal(t, 75, clean.Score)
	assert.Equal(t, ActionApprove, clean.Action)

	elevated := base
	elevated.CancelledByGuest = 2 // rate 0.20, elevated tier only
	assert.Equal(t, 65, Score(elevated).Score)

	high := base
	high.CancelledByGuest = 3 // rate 0.30
	assert.Equal(t, 55, Score(high).Score)
	assert.Equal(t, ActionReview, Score(high).Action)
}

func TestScore_LowRatingNeedsAtLeastOneRating(t *testing.T) {
	unrated := Snapshot{
		GuestID:        "guest-5",
		TotalBookings:  2,
		AverageRating:  0,
		RatingCount:    0,
		AccountAgeDays: 30,
	}
	// No low-rating penalty without any ratings
	assert.Equal(t, 50, Score(unrated).Score)

	rated := unrated
	rated.AverageRating = 2.0
	rated.RatingCount = 3
	assert.Equal(t, 35, Score(rated).Score)
	assert.Equal(t, ActionReject, Score(rated).Action)
}

func TestScore_ClampsAtZero(t *testing.T) {
	snapshot := Snapshot{
		GuestID:          "guest-6",
		TotalBookings:    10,
		CancelledByGuest: 5,
		AverageRating:    1.0,
		RatingCount:      4,
		AccountAgeDays:   2,
	}

	assessment := Score(snapshot)

	// 50 - 20 cancellations - 15 rating - 15 new account = 0
	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, ActionReject, assessment.Action)
}

func TestCancellationRate_NoHistory(t *testing.T) {
	assert.Zero(t, Snapshot{}.CancellationRate())
}
