package slotlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workhive/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New()
}

func testKey() SlotKey {
	return SlotKey{
		SpaceID:   "6f1c0e9a-2c5b-4a7d-9a61-3f5a2b1c8d70",
		Date:      "2026-09-15",
		StartTime: "09:00",
		EndTime:   "12:00",
	}
}

func newTestService(store Store) Service {
	return NewService(store, 5*time.Minute, testLogger())
}

func TestAcquire_FreeSlotIsGranted(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	status, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	assert.True(t, status.Locked)
	assert.True(t, status.OwnHold)
	assert.Equal(t, "user-a", status.HolderID)
	assert.Equal(t, 300, status.ExpiresInSeconds)
}

func TestAcquire_HeldSlotIsRefused(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	status, err := svc.Acquire(ctx, testKey(), "user-b")
	require.NoError(t, err)

	assert.True(t, status.Locked)
	assert.False(t, status.OwnHold)
	assert.Empty(t, status.HolderID)
	assert.Positive(t, status.ExpiresInSeconds)
}

func TestAcquire_SameHolderRefreshesExpiry(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	// 4 minutes later the re-acquire restarts the full TTL.
	now = now.Add(4 * time.Minute)
	status, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	assert.True(t, status.OwnHold)
	assert.Equal(t, 300, status.ExpiresInSeconds)
}

func TestAcquire_ExpiredLockIsReacquirable(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	status, err := svc.Acquire(ctx, testKey(), "user-b")
	require.NoError(t, err)

	assert.True(t, status.OwnHold)
	assert.Equal(t, "user-b", status.HolderID)
}

func TestRelease_OnlyHolderMayRelease(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	err = svc.Release(ctx, testKey(), "user-b")
	assert.ErrorIs(t, err, ErrNotHolder)

	err = svc.Release(ctx, testKey(), "user-a")
	require.NoError(t, err)

	status, err := svc.Status(ctx, testKey(), "user-a")
	require.NoError(t, err)
	assert.False(t, status.Locked)
}

func TestRefresh_RefusesNonHolder(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, testKey(), "user-a")
	assert.ErrorIs(t, err, ErrNotHolder)

	_, err = svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, testKey(), "user-b")
	assert.ErrorIs(t, err, ErrNotHolder)

	status, err := svc.Refresh(ctx, testKey(), "user-a")
	require.NoError(t, err)
	assert.True(t, status.OwnHold)
}

func TestStatus_HidesHolderFromOthers(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	mine, err := svc.Status(ctx, testKey(), "user-a")
	require.NoError(t, err)
	assert.True(t, mine.OwnHold)
	assert.Equal(t, "user-a", mine.HolderID)

	theirs, err := svc.Status(ctx, testKey(), "user-b")
	require.NoError(t, err)
	assert.True(t, theirs.Locked)
	assert.False(t, theirs.OwnHold)
	assert.Empty(t, theirs.HolderID)
}

func TestStatus_DistinctSlotsAreIndependent(t *testing.T) {
	svc := newTestService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Acquire(ctx, testKey(), "user-a")
	require.NoError(t, err)

	other := testKey()
	other.StartTime = "13:00"
	other.EndTime = "15:00"

	status, err := svc.Acquire(ctx, other, "user-b")
	require.NoError(t, err)
	assert.True(t, status.OwnHold)
}
