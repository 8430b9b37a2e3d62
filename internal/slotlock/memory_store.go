package slotlock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	holder    string
	expiresAt time.Time
}

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Acquire(_ context.Context, key, holder string, ttl time.Duration) (bool, string, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.entries[key]
	if exists && now.Before(entry.expiresAt) && entry.holder != holder {
		return false, entry.holder, entry.expiresAt.Sub(now), nil
	}

	s.entries[key] = memoryEntry{holder: holder, expiresAt: now.Add(ttl)}
	return true, holder, ttl, nil
}

func (s *MemoryStore) Release(_ context.Context, key, holder string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists || entry.holder != holder {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists {
		return "", 0, nil
	}
	now := s.now()
	if !now.Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", 0, nil
	}
	return entry.holder, entry.expiresAt.Sub(now), nil
}
