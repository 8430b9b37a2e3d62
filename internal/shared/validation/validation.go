package validation

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the booking-specific binding rules on
// gin's validator engine. Call once before the router starts serving.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("bookingdate", validBookingDate); err != nil {
		return err
	}
	return v.RegisterValidation("slottime", validSlotTime)
}

// validBookingDate accepts calendar dates in YYYY-MM-DD form.
func validBookingDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validSlotTime accepts wall-clock times in 24h HH:MM form.
func validSlotTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}
