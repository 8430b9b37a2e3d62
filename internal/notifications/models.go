package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBooking NotificationType = "BOOKING"
	NotificationTypePayout  NotificationType = "PAYOUT"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is the fire-and-forget payload handed to the delivery
// pipeline. Delivery internals (email, push, toast) live downstream of the
// topic; this core only publishes.
type Notification struct {
	ID     uuid.UUID        `json:"id"`
	Type   NotificationType `json:"type"`
	UserID uuid.UUID        `json:"user_id"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// Context bag: booking id, space title, amounts, deadlines.
	Data map[string]interface{} `json:"data,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func New(userID uuid.UUID, nType NotificationType, title, body string, data map[string]interface{}) *Notification {
	now := time.Now()
	return &Notification{
		ID:        uuid.New(),
		Type:      nType,
		UserID:    userID,
		Title:     title,
		Body:      body,
		Data:      data,
		Status:    NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all of one user's notifications to one partition so
// delivery order per recipient is stable.
func (n *Notification) GetPartitionKey() string {
	return n.UserID.String()
}
