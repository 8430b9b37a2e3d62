package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// Guard against two live bookings on the exact same interval. Partial
	// overlaps are caught by the reservation transaction; this backstops the
	// common identical-slot race at the storage layer.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_live_booking_slot
		ON bookings (space_id, date, start_time, end_time)
		WHERE status IN ('PENDING', 'CONFIRMED', 'SERVED', 'FROZEN');
	`).Error
	if err != nil {
		return err
	}

	// Index for the slot overlap check inside the reservation transaction
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_slot_overlap
		ON bookings (space_id, date, status, start_time, end_time);
	`).Error
	if err != nil {
		return err
	}

	// Index for the payout scheduler sweep
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_payout_candidates
		ON bookings (service_completed_at)
		WHERE status = 'SERVED' AND payout_scheduled_at IS NULL;
	`).Error
	if err != nil {
		return err
	}

	return nil
}
