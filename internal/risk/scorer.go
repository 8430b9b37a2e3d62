package risk

import "fmt"

type Action string

const (
	ActionAutoApprove Action = "AUTO_APPROVE"
	ActionApprove     Action = "APPROVE"
	ActionReview      Action = "MANUAL_REVIEW"
	ActionReject      Action = "REJECT"
)

// Snapshot is a derived, read-only aggregate of a guest's history. It is
// computed on demand and never persisted.
type Snapshot struct {
	GuestID           string  `json:"guest_id"`
	TotalBookings     int     `json:"total_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	CancelledByGuest  int     `json:"cancelled_by_guest"`
	AverageRating     float64 `json:"average_rating"`
	RatingCount       int     `json:"rating_count"`
	AccountAgeDays    int     `json:"account_age_days"`
	RepeatGuest       bool    `json:"repeat_guest"`
}

// CancellationRate is cancellations over total bookings, 0 when there is no
// history.
func (s Snapshot) CancellationRate() float64 {
	if s.TotalBookings == 0 {
		return 0
	}
	return float64(s.CancelledByGuest) / float64(s.TotalBookings)
}

// Assessment is the scorer's advisory recommendation for a host-gated
// booking. It never drives a state transition by itself.
type Assessment struct {
	Action      Action   `json:"action"`
	Confidence  int      `json:"confidence"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	RiskFactors []string `json:"risk_factors"`
}

const baseScore = 50

// Score evaluates a guest snapshot against the heuristic weights. Pure
// function: identical input always yields an identical assessment.
func Score(s Snapshot) Assessment {
	score := baseScore
	var reasons, riskFactors []string

	if s.RepeatGuest {
		score += 25
		reasons = append(reasons, "repeat guest for this space")
	}

	switch {
	case s.AverageRating >= 4.5:
		score += 20
		reasons = append(reasons, fmt.Sprintf("excellent guest rating (%.1f)", s.AverageRating))
	case s.AverageRating >= 4.0:
		score += 15
		reasons = append(reasons, fmt.Sprintf("good guest rating (%.1f)", s.AverageRating))
	}

	switch {
	case s.CompletedBookings >= 10:
		score += 15
		reasons = append(reasons, fmt.Sprintf("%d completed bookings", s.CompletedBookings))
	case s.CompletedBookings >= 5:
		score += 10
		reasons = append(reasons, fmt.Sprintf("%d completed bookings", s.CompletedBookings))
	}

	if s.AccountAgeDays >= 90 {
		score += 10
		reasons = append(reasons, "established account")
	}

	rate := s.CancellationRate()
	switch {
	case rate > 0.20:
		score -= 20
		riskFactors = append(riskFactors, fmt.Sprintf("high cancellation rate (%.0f%%)", rate*100))
	case rate > 0.10:
		score -= 10
		riskFactors = append(riskFactors, fmt.Sprintf("elevated cancellation rate (%.0f%%)", rate*100))
	}

	if s.RatingCount >= 1 && s.AverageRating < 3.5 {
		score -= 15
		riskFactors = append(riskFactors, fmt.Sprintf("low guest rating (%.1f)", s.AverageRating))
	}

	if s.TotalBookings == 0 {
		score -= 10
		riskFactors = append(riskFactors, "no prior bookings")
	}

	if s.AccountAgeDays < 7 {
		score -= 15
		riskFactors = append(riskFactors, "account newer than 7 days")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	action, confidence := actionFor(score)

	return Assessment{
		Action:      action,
		Confidence:  confidence,
		Score:       score,
		Reasons:     reasons,
		RiskFactors: riskFactors,
	}
}

func actionFor(score int) (Action, int) {
	switch {
	case score >= 85:
		return ActionAutoApprove, 95
	case score >= 70:
		return ActionApprove, 85
	case score >= 50:
		return ActionReview, 70
	default:
		return ActionReject, 80
	}
}
