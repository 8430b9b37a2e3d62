package bookings

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"workhive/internal/payments"
	"workhive/internal/spaces"
	"workhive/internal/users"
)

type ConfirmationType string

const (
	ConfirmationInstant      ConfirmationType = "INSTANT"
	ConfirmationHostApproval ConfirmationType = "HOST_APPROVAL"
)

func (c ConfirmationType) IsValid() bool {
	return c == ConfirmationInstant || c == ConfirmationHostApproval
}

// timeOfDayLayout is the wire and storage format for slot boundaries.
// Zero-padded so lexicographic comparison matches chronological order.
const timeOfDayLayout = "15:04"

// Booking is the central entity: one reserved [date, start, end) interval on
// a space, advanced through its lifecycle by payment capture, the payout
// scheduler, and the disconnection guard.
type Booking struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SpaceID uuid.UUID `gorm:"type:uuid;index:idx_bookings_slot;not null" json:"space_id"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	Date      time.Time `gorm:"type:date;index:idx_bookings_slot;not null" json:"date"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`

	Status           Status           `gorm:"type:varchar(20);index;default:'PENDING'" json:"status"`
	ConfirmationType ConfirmationType `gorm:"type:varchar(20);default:'INSTANT'" json:"confirmation_type"`
	BookingRef       string           `gorm:"uniqueIndex;not null" json:"booking_ref"`

	// Reservation token handed back to the caller; the payment step quotes it.
	ReservationToken string     `gorm:"index" json:"reservation_token,omitempty"`
	ReservedUntil    *time.Time `json:"reserved_until,omitempty"`

	// Cancellation
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledByHost    bool       `json:"cancelled_by_host"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancellationFee    float64    `json:"cancellation_fee"`

	// Freeze / payout lifecycle stamps. Nullable timestamps double as the
	// idempotency guards for the scheduled jobs.
	FrozenAt           *time.Time `json:"frozen_at,omitempty"`
	ServiceCompletedAt *time.Time `gorm:"index" json:"service_completed_at,omitempty"`
	PayoutScheduledAt  *time.Time `json:"payout_scheduled_at,omitempty"`
	PayoutCompletedAt  *time.Time `json:"payout_completed_at,omitempty"`
	PayoutTransferID   string     `json:"payout_transfer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Space   *spaces.Space     `json:"space,omitempty" gorm:"foreignKey:SpaceID;constraint:OnDelete:RESTRICT;"`
	User    *users.User       `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT;"`
	Payment *payments.Payment `json:"payment,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingStart combines the date and start time into an absolute instant.
func (b *Booking) BookingStart() (time.Time, error) {
	return combineDateTime(b.Date, b.StartTime)
}

// BookingEnd combines the date and end time into an absolute instant.
func (b *Booking) BookingEnd() (time.Time, error) {
	return combineDateTime(b.Date, b.EndTime)
}

func combineDateTime(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse(timeOfDayLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad time of day %q", ErrMalformedRecord, hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// Overlaps reports whether two bookings on the same space and date have
// intersecting [start, end) intervals. Zero-padded HH:MM strings compare
// correctly as strings.
func (b *Booking) Overlaps(other *Booking) bool {
	if b.SpaceID != other.SpaceID || !sameDay(b.Date, other.Date) {
		return false
	}
	return b.StartTime < other.EndTime && other.StartTime < b.EndTime
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsFrozen() bool {
	return b.Status == StatusFrozen
}

// DurationHours returns the booked duration in hours, used for pricing.
func (b *Booking) DurationHours() (float64, error) {
	start, err := b.BookingStart()
	if err != nil {
		return 0, err
	}
	end, err := b.BookingEnd()
	if err != nil {
		return 0, err
	}
	return end.Sub(start).Hours(), nil
}

// ValidateSlotTimes checks a requested interval before it reaches the
// reservation transaction.
func ValidateSlotTimes(startTime, endTime string) error {
	start, err := time.Parse(timeOfDayLayout, startTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q: must be HH:MM", startTime)
	}
	end, err := time.Parse(timeOfDayLayout, endTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q: must be HH:MM", endTime)
	}
	if !end.After(start) {
		return fmt.Errorf("end time %s must be after start time %s", endTime, startTime)
	}
	return nil
}
