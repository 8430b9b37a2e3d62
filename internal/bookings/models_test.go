package bookings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotOn(spaceID uuid.UUID, date time.Time, start, end string) *Booking {
	return &Booking{SpaceID: spaceID, Date: date, StartTime: start, EndTime: end}
}

func TestOverlaps(t *testing.T) {
	spaceID := uuid.New()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	base := slotOn(spaceID, date, "09:00", "12:00")

	cases := []struct {
		name     string
		other    *Booking
		overlaps bool
	}{
		{"identical interval", slotOn(spaceID, date, "09:00", "12:00"), true},
		{"partial overlap at end", slotOn(spaceID, date, "11:00", "14:00"), true},
		{"partial overlap at start", slotOn(spaceID, date, "08:00", "10:00"), true},
		{"contained interval", slotOn(spaceID, date, "10:00", "11:00"), true},
		{"back to back after", slotOn(spaceID, date, "12:00", "14:00"), false},
		{"back to back before", slotOn(spaceID, date, "07:00", "09:00"), false},
		{"different day", slotOn(spaceID, date.AddDate(0, 0, 1), "09:00", "12:00"), false},
		{"different space", slotOn(uuid.New(), date, "09:00", "12:00"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlaps, base.Overlaps(tc.other))
			assert.Equal(t, tc.overlaps, tc.other.Overlaps(base))
		})
	}
}

func TestValidateSlotTimes(t *testing.T) {
	assert.NoError(t, ValidateSlotTimes("09:00", "12:00"))
	assert.NoError(t, ValidateSlotTimes("00:00", "23:59"))

	assert.Error(t, ValidateSlotTimes("12:00", "09:00"))
	assert.Error(t, ValidateSlotTimes("09:00", "09:00"))
	assert.Error(t, ValidateSlotTimes("9am", "12:00"))
	assert.Error(t, ValidateSlotTimes("09:00", ""))
}

func TestBookingStart_CombinesDateAndTime(t *testing.T) {
	booking := slotOn(uuid.New(), time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "09:30", "12:00")

	start, err := booking.BookingStart()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC), start)

	end, err := booking.BookingEnd()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC), end)
}

func TestBookingStart_MalformedTimeOfDay(t *testing.T) {
	booking := slotOn(uuid.New(), time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "25:99", "26:00")

	_, err := booking.BookingStart()
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDurationHours(t *testing.T) {
	booking := slotOn(uuid.New(), time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "09:00", "12:30")

	hours, err := booking.DurationHours()
	require.NoError(t, err)
	assert.InDelta(t, 3.5, hours, 1e-9)
}
