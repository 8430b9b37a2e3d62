package slotlock

import (
	"context"
	"time"

	"workhive/internal/shared/constants"
)

// Store is the key-value backend for advisory slot locks. Implementations
// must make Acquire atomic; everything above it is policy.
type Store interface {
	// Acquire grants the key to holder when it is free or already held by the
	// same holder (which refreshes the expiry). On refusal it reports the
	// current holder and the remaining TTL.
	Acquire(ctx context.Context, key, holder string, ttl time.Duration) (granted bool, currentHolder string, remaining time.Duration, err error)

	// Release removes the key only if held by holder.
	Release(ctx context.Context, key, holder string) (released bool, err error)

	// Get returns the current holder and remaining TTL; an expired or absent
	// lock yields an empty holder.
	Get(ctx context.Context, key string) (holder string, remaining time.Duration, err error)
}

// SlotKey identifies the advisory-locked interval.
type SlotKey struct {
	SpaceID   string `json:"space_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,bookingdate"`
	StartTime string `json:"start_time" binding:"required,slottime"`
	EndTime   string `json:"end_time" binding:"required,slottime"`
}

func (k SlotKey) storageKey() string {
	return constants.BuildSlotLockKey(k.SpaceID, k.Date, k.StartTime, k.EndTime)
}
