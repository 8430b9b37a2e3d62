package payouts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"workhive/internal/bookings"
)

// Repository selects the candidate sets the background jobs sweep over.
// Both queries are read-only; the state transitions themselves go through
// the bookings repository so the compare-and-swap guards apply.
type Repository interface {
	// FindPayoutCandidates returns served bookings whose service window ended
	// at or before cutoff and which have never been picked up by the payout
	// scheduler.
	FindPayoutCandidates(ctx context.Context, cutoff time.Time, limit int) ([]bookings.Booking, error)

	// FindActivePayeeDisconnected returns confirmed and frozen bookings whose
	// host can no longer receive payouts.
	FindActivePayeeDisconnected(ctx context.Context, limit int) ([]bookings.Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPayoutCandidates(ctx context.Context, cutoff time.Time, limit int) ([]bookings.Booking, error) {
	var candidates []bookings.Booking

	err := r.db.WithContext(ctx).
		Where("status = ?", bookings.StatusServed).
		Where("service_completed_at IS NOT NULL AND service_completed_at <= ?", cutoff).
		Where("payout_scheduled_at IS NULL").
		Preload("Payment").
		Preload("Space.Host").
		Order("service_completed_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payout candidates: %w", err)
	}
	return candidates, nil
}

func (r *repository) FindActivePayeeDisconnected(ctx context.Context, limit int) ([]bookings.Booking, error) {
	var affected []bookings.Booking

	err := r.db.WithContext(ctx).
		Joins("JOIN spaces ON spaces.id = bookings.space_id").
		Joins("JOIN users hosts ON hosts.id = spaces.host_id").
		Where("bookings.status IN ?", []bookings.Status{bookings.StatusConfirmed, bookings.StatusFrozen}).
		Where("hosts.stripe_account_id = '' OR hosts.charges_enabled = ? OR hosts.payouts_enabled = ?", false, false).
		Preload("Payment").
		Preload("Space.Host").
		Preload("User").
		Order("bookings.date ASC, bookings.start_time ASC").
		Limit(limit).
		Find(&affected).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payee-disconnected bookings: %w", err)
	}
	return affected, nil
}
