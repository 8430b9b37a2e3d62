package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workhive/internal/shared/constants"
	"workhive/internal/users"
	"workhive/pkg/cache"
)

// HistoryStats is the booking-history slice of a snapshot, provided by the
// bookings repository.
type HistoryStats struct {
	TotalBookings     int
	CompletedBookings int
	CancelledByGuest  int
	BookingsForSpace  int
}

// HistoryReader supplies a guest's booking aggregates.
type HistoryReader interface {
	GuestHistory(ctx context.Context, guestID, spaceID uuid.UUID) (*HistoryStats, error)
}

// UserReader supplies the guest's profile (account age, rating aggregates).
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Service builds guest snapshots on demand and scores them. Snapshots are
// cached briefly; assessments are recomputed from the snapshot every time.
type Service interface {
	Assess(ctx context.Context, guestID, spaceID uuid.UUID) (*Assessment, error)
	BuildSnapshot(ctx context.Context, guestID, spaceID uuid.UUID) (*Snapshot, error)
}

type service struct {
	history  HistoryReader
	userRepo UserReader
	cache    cache.Service
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(history HistoryReader, userRepo UserReader, cacheSvc cache.Service, cacheTTL time.Duration) Service {
	return &service{
		history:  history,
		userRepo: userRepo,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (s *service) Assess(ctx context.Context, guestID, spaceID uuid.UUID) (*Assessment, error) {
	snapshot, err := s.BuildSnapshot(ctx, guestID, spaceID)
	if err != nil {
		return nil, err
	}
	assessment := Score(*snapshot)
	return &assessment, nil
}

func (s *service) BuildSnapshot(ctx context.Context, guestID, spaceID uuid.UUID) (*Snapshot, error) {
	key := snapshotCacheKey(guestID, spaceID)

	var snapshot Snapshot
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &snapshot); err == nil {
			return &snapshot, nil
		}
	}

	built, err := s.buildSnapshot(ctx, guestID, spaceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Best effort; a stale or missing cache entry only costs a rebuild.
		_ = s.cache.Set(ctx, key, built, s.cacheTTL)
	}

	return built, nil
}

func (s *service) buildSnapshot(ctx context.Context, guestID, spaceID uuid.UUID) (*Snapshot, error) {
	guest, err := s.userRepo.GetByID(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest profile: %w", err)
	}

	stats, err := s.history.GuestHistory(ctx, guestID, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest history: %w", err)
	}

	accountAge := int(s.now().Sub(guest.CreatedAt).Hours() / 24)

	return &Snapshot{
		GuestID:           guestID.String(),
		TotalBookings:     stats.TotalBookings,
		CompletedBookings: stats.CompletedBookings,
		CancelledByGuest:  stats.CancelledByGuest,
		AverageRating:     guest.GuestRatingAvg,
		RatingCount:       guest.GuestRatingCount,
		AccountAgeDays:    accountAge,
		RepeatGuest:       stats.BookingsForSpace > 0,
	}, nil
}

func snapshotCacheKey(guestID, spaceID uuid.UUID) string {
	return constants.BuildRiskSnapshotKey(guestID.String(), spaceID.String())
}
