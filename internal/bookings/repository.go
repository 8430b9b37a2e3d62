package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workhive/internal/payments"
	"workhive/internal/spaces"
)

type Repository interface {
	// Concurrency-safe slot reservation
	Reserve(ctx context.Context, booking *Booking, payment *payments.Payment) error

	// Core booking reads
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)

	// Guarded lifecycle transitions; each is a compare-and-swap on the
	// current status so re-applying an applied transition is a no-op.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, extra map[string]interface{}) (bool, error)
	MarkServed(ctx context.Context, id uuid.UUID, completedAt time.Time) (bool, error)
	Freeze(ctx context.Context, id uuid.UUID, from Status, now time.Time) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, from Status, params CancelParams) (bool, error)
	ClaimPayout(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ReleasePayoutClaim(ctx context.Context, id uuid.UUID) (bool, error)
	CompletePayout(ctx context.Context, id uuid.UUID, transferID string, now time.Time) (bool, error)

	// Expired-reservation sweep
	FindExpiredUnpaid(ctx context.Context, now time.Time, limit int) ([]Booking, error)

	// Guest history aggregates for risk scoring
	GuestStats(ctx context.Context, guestID, spaceID uuid.UUID) (*GuestStats, error)
}

// CancelParams carries the cancellation bookkeeping fields.
type CancelParams struct {
	At     time.Time
	ByHost bool
	Reason string
	Fee    float64
}

// GuestStats is the booking-history slice of a guest profile snapshot.
type GuestStats struct {
	TotalBookings     int
	CompletedBookings int
	CancelledByGuest  int
	BookingsForSpace  int
}

// BookingListQuery mirrors the list endpoint's filters.
type BookingListQuery struct {
	Status string
	Page   int
	Limit  int
}

type repository struct {
	db *gorm.DB
}

// spaceRow is the minimal projection Reserve locks inside its transaction.
type spaceRow struct {
	ID     uuid.UUID `gorm:"column:id"`
	Status string    `gorm:"column:status"`
}

// lockSpaceQuery selects the space row under a FOR UPDATE lock so concurrent
// reservations against the same space serialize on it.
func lockSpaceQuery(tx *gorm.DB, spaceID uuid.UUID) *gorm.DB {
	return tx.Table("spaces").
		Select("id, status").
		Where("id = ?", spaceID).
		Clauses(clause.Locking{Strength: "UPDATE"})
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Reserve atomically validates availability and inserts the booking with its
// payment row. The space row is locked FOR UPDATE so concurrent attempts on
// the same space serialize; between lock and insert the overlap check sees
// every committed blocking booking. This is the sole gate for the
// no-double-booking invariant.
func (r *repository) Reserve(ctx context.Context, booking *Booking, payment *payments.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var space spaceRow

		err := lockSpaceQuery(tx, booking.SpaceID).First(&space).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpaceUnavailable
			}
			return fmt.Errorf("failed to lock space: %w", err)
		}

		if space.Status != string(spaces.StatusActive) {
			return ErrSpaceUnavailable
		}

		var overlapping int64
		err = tx.Model(&Booking{}).
			Where("space_id = ?", booking.SpaceID).
			Where("date = ?", booking.Date.Format("2006-01-02")).
			Where("status IN ?", ReservationBlockingStatuses).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check slot availability: %w", err)
		}
		if overlapping > 0 {
			return ErrSlotUnavailable
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		payment.BookingID = booking.ID
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Space").
		Preload("User").
		Preload("Payment").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Space").
		Preload("Payment").
		Order("date DESC, start_time DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

// TransitionStatus applies a validated lifecycle transition. The WHERE clause
// on the current status makes it a compare-and-swap: false is returned when
// another run already applied it.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, extra map[string]interface{}) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkServed(ctx context.Context, id uuid.UUID, completedAt time.Time) (bool, error) {
	return r.TransitionStatus(ctx, id, StatusConfirmed, StatusServed, map[string]interface{}{
		"service_completed_at": completedAt,
	})
}

func (r *repository) Freeze(ctx context.Context, id uuid.UUID, from Status, now time.Time) (bool, error) {
	return r.TransitionStatus(ctx, id, from, StatusFrozen, map[string]interface{}{
		"frozen_at": now,
	})
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, from Status, params CancelParams) (bool, error) {
	return r.TransitionStatus(ctx, id, from, StatusCancelled, map[string]interface{}{
		"cancelled_at":        params.At,
		"cancelled_by_host":   params.ByHost,
		"cancellation_reason": params.Reason,
		"cancellation_fee":    params.Fee,
	})
}

// ClaimPayout moves a served booking into PAYOUT_SCHEDULED before any money
// moves. The status guard plus the payout_scheduled_at IS NULL guard make the
// claim exclusive: a second overlapping sweep gets RowsAffected 0 and must not
// issue a transfer.
func (r *repository) ClaimPayout(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ? AND payout_scheduled_at IS NULL", id, StatusServed).
		Updates(map[string]interface{}{
			"status":              StatusPayoutScheduled,
			"payout_scheduled_at": now,
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleasePayoutClaim reverts a claim whose transfer failed so a later sweep
// can retry the booking.
func (r *repository) ReleasePayoutClaim(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPayoutScheduled).
		Updates(map[string]interface{}{
			"status":              StatusServed,
			"payout_scheduled_at": nil,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompletePayout stamps the transfer on a previously claimed booking.
func (r *repository) CompletePayout(ctx context.Context, id uuid.UUID, transferID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPayoutScheduled).
		Updates(map[string]interface{}{
			"status":              StatusPayoutCompleted,
			"payout_completed_at": now,
			"payout_transfer_id":  transferID,
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindExpiredUnpaid returns reservations whose hold window lapsed without a
// captured payment. Instant bookings are CONFIRMED from creation, so both
// pre-capture statuses are candidates; paid ones are excluded at the query so
// they cannot crowd the batch.
func (r *repository) FindExpiredUnpaid(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Joins("LEFT JOIN payments ON payments.booking_id = bookings.id").
		Where("bookings.status IN ? AND bookings.reserved_until < ?",
			[]Status{StatusPending, StatusConfirmed}, now).
		Where("payments.id IS NULL OR payments.status <> ?", payments.StatusCompleted).
		Order("bookings.reserved_until ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired reservations: %w", err)
	}
	return bookings, nil
}

func (r *repository) GuestStats(ctx context.Context, guestID, spaceID uuid.UUID) (*GuestStats, error) {
	stats := &GuestStats{}

	type countRow struct {
		Status Status
		N      int
	}
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("status, COUNT(*) as n").
		Where("user_id = ?", guestID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats.TotalBookings += row.N
		switch row.Status {
		case StatusServed, StatusPayoutScheduled, StatusPayoutCompleted:
			stats.CompletedBookings += row.N
		}
	}

	var cancelled int64
	err = r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ? AND status = ? AND cancelled_by_host = ?", guestID, StatusCancelled, false).
		Count(&cancelled).Error
	if err != nil {
		return nil, err
	}
	stats.CancelledByGuest = int(cancelled)

	var forSpace int64
	err = r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ? AND space_id = ? AND status IN ?", guestID, spaceID,
			[]Status{StatusServed, StatusPayoutScheduled, StatusPayoutCompleted}).
		Count(&forSpace).Error
	if err != nil {
		return nil, err
	}
	stats.BookingsForSpace = int(forSpace)

	return stats, nil
}

// Helper function to calculate total pages
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
