package spaces

import (
	"time"

	"github.com/google/uuid"

	"workhive/internal/users"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Space is a bookable coworking space listed by a host.
type Space struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HostID      uuid.UUID `gorm:"type:uuid;index;not null" json:"host_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	City        string    `gorm:"index" json:"city"`
	Capacity    int       `gorm:"default:1" json:"capacity"`
	HourlyRate  float64   `gorm:"not null" json:"hourly_rate"`
	Status      Status    `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Host *users.User `json:"host,omitempty" gorm:"foreignKey:HostID;constraint:OnDelete:RESTRICT;"`
}

func (Space) TableName() string {
	return "spaces"
}

// IsBookable reports whether the space accepts new reservations.
func (s *Space) IsBookable() bool {
	return s.Status == StatusActive
}
