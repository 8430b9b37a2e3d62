package database

import (
	"workhive/internal/bookings"
	"workhive/internal/payments"
	"workhive/internal/spaces"
	"workhive/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&spaces.Space{},
		&bookings.Booking{},
		&payments.Payment{},
	)
}
