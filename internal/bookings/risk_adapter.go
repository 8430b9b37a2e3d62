package bookings

import (
	"context"

	"github.com/google/uuid"

	"workhive/internal/risk"
)

// RiskHistoryAdapter exposes booking aggregates to the risk scorer without
// the risk package depending on this one.
type RiskHistoryAdapter struct {
	repo Repository
}

func NewRiskHistoryAdapter(repo Repository) *RiskHistoryAdapter {
	return &RiskHistoryAdapter{repo: repo}
}

func (a *RiskHistoryAdapter) GuestHistory(ctx context.Context, guestID, spaceID uuid.UUID) (*risk.HistoryStats, error) {
	stats, err := a.repo.GuestStats(ctx, guestID, spaceID)
	if err != nil {
		return nil, err
	}
	return &risk.HistoryStats{
		TotalBookings:     stats.TotalBookings,
		CompletedBookings: stats.CompletedBookings,
		CancelledByGuest:  stats.CancelledByGuest,
		BookingsForSpace:  stats.BookingsForSpace,
	}, nil
}
