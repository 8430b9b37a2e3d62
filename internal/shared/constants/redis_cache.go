package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the WorkHive application
// Pattern: workhive:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_SHORT = 5 * time.Minute // risk snapshots, slot locks
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "workhive"
)

// ================== RISK MODULE ==================

const (
	CACHE_KEY_RISK_SNAPSHOT = CACHE_PREFIX + ":risk:snapshot" // + :guest-id:space-id
)

// BuildRiskSnapshotKey builds the cache key for one guest profile snapshot
// scoped to a space.
func BuildRiskSnapshotKey(guestID, spaceID string) string {
	return fmt.Sprintf("%s:%s:%s", CACHE_KEY_RISK_SNAPSHOT, guestID, spaceID)
}

// ================== SLOT LOCK MODULE ==================

const (
	CACHE_KEY_SLOT_LOCK = CACHE_PREFIX + ":slotlock" // + :space-id:date:start-end
)

// BuildSlotLockKey builds the advisory lock key for one slot interval.
func BuildSlotLockKey(spaceID, date, startTime, endTime string) string {
	return fmt.Sprintf("%s:%s:%s:%s-%s", CACHE_KEY_SLOT_LOCK, spaceID, date, startTime, endTime)
}
