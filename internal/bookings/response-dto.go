package bookings

import (
	"time"

	"workhive/internal/payments"
)

// ReserveResponse is returned by a successful reservation.
type ReserveResponse struct {
	BookingID        string               `json:"booking_id"`
	BookingRef       string               `json:"booking_ref"`
	Status           string               `json:"status"`
	ConfirmationType string               `json:"confirmation_type"`
	ReservationToken string               `json:"reservation_token"`
	ReservedUntil    time.Time            `json:"reserved_until"`
	Payment          payments.PaymentInfo `json:"payment"`
}

// BookingListResponse wraps a paginated booking list.
type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
