package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleHost  Role = "HOST"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`

	// Denormalized mirror of the payment processor's connected-account state,
	// updated by the account webhook. A payee can only receive transfers while
	// both flags are true.
	StripeAccountID string `json:"stripe_account_id,omitempty" gorm:"index"`
	ChargesEnabled  bool   `json:"charges_enabled" gorm:"default:false"`
	PayoutsEnabled  bool   `json:"payouts_enabled" gorm:"default:false"`

	// Guest rating aggregates, denormalized by the review pipeline.
	GuestRatingAvg   float64 `json:"guest_rating_avg" gorm:"default:0"`
	GuestRatingCount int     `json:"guest_rating_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PaymentAccountUsable reports whether the user's connected account can
// currently accept charges and payouts.
func (u *User) PaymentAccountUsable() bool {
	return u.StripeAccountID != "" && u.ChargesEnabled && u.PayoutsEnabled
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleHost), string(RoleAdmin):
		return true
	default:
		return false
	}
}
