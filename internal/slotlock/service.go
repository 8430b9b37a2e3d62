package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workhive/pkg/logger"
)

var (
	ErrNotHolder = errors.New("slot lock is not held by this user")
	ErrNotLocked = errors.New("slot lock does not exist")
)

// LockStatus describes the advisory state of a slot. The lock never blocks
// a reservation; conflicts are settled by the booking repository.
type LockStatus struct {
	Locked           bool   `json:"locked"`
	OwnHold          bool   `json:"own_hold"`
	HolderID         string `json:"holder_id,omitempty"`
	ExpiresInSeconds int    `json:"expires_in_seconds,omitempty"`
}

type Service interface {
	Acquire(ctx context.Context, key SlotKey, holderID string) (*LockStatus, error)
	Refresh(ctx context.Context, key SlotKey, holderID string) (*LockStatus, error)
	Release(ctx context.Context, key SlotKey, holderID string) error
	Status(ctx context.Context, key SlotKey, requesterID string) (*LockStatus, error)
}

type service struct {
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

func NewService(store Store, ttl time.Duration, log *logger.Logger) Service {
	return &service{store: store, ttl: ttl, log: log}
}

// Acquire grants the slot to holderID when it is free, or refreshes an
// existing hold by the same user. A hold by someone else is reported back
// without error so the client can show the slot as contended.
func (s *service) Acquire(ctx context.Context, key SlotKey, holderID string) (*LockStatus, error) {
	granted, currentHolder, remaining, err := s.store.Acquire(ctx, key.storageKey(), holderID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	if granted {
		s.log.InfoWithContext(ctx, "Slot Lock Acquired", map[string]interface{}{
			"space_id":   key.SpaceID,
			"date":       key.Date,
			"start_time": key.StartTime,
			"end_time":   key.EndTime,
			"holder_id":  holderID,
		})
	}

	status := &LockStatus{
		Locked:           true,
		OwnHold:          granted,
		ExpiresInSeconds: int(remaining.Seconds()),
	}
	// Only the holder learns who owns the lock.
	if granted {
		status.HolderID = currentHolder
	}
	return status, nil
}

// Refresh extends an existing hold. Unlike Acquire it refuses to create a
// new hold, so a lapsed lock surfaces as ErrNotHolder instead of silently
// restarting the window.
func (s *service) Refresh(ctx context.Context, key SlotKey, holderID string) (*LockStatus, error) {
	holder, _, err := s.store.Get(ctx, key.storageKey())
	if err != nil {
		return nil, fmt.Errorf("failed to read slot lock: %w", err)
	}
	if holder != holderID {
		return nil, ErrNotHolder
	}

	return s.Acquire(ctx, key, holderID)
}

func (s *service) Release(ctx context.Context, key SlotKey, holderID string) error {
	released, err := s.store.Release(ctx, key.storageKey(), holderID)
	if err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	if !released {
		return ErrNotHolder
	}
	return nil
}

func (s *service) Status(ctx context.Context, key SlotKey, requesterID string) (*LockStatus, error) {
	holder, remaining, err := s.store.Get(ctx, key.storageKey())
	if err != nil {
		return nil, fmt.Errorf("failed to read slot lock: %w", err)
	}
	if holder == "" {
		return &LockStatus{Locked: false}, nil
	}

	status := &LockStatus{
		Locked:           true,
		OwnHold:          holder == requesterID,
		ExpiresInSeconds: int(remaining.Seconds()),
	}
	// Only the holder learns who owns the lock.
	if status.OwnHold {
		status.HolderID = holder
	}
	return status, nil
}
