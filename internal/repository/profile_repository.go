package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

type ProfileRepository interface {
	// Create fails with domain.ErrProfileAlreadyExists when the identity is taken.
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	GetByIdentity(ctx context.Context, identity int64) (*domain.Profile, error)
	// LockPair loads both profiles by internal id, row-locked for the
	// surrounding transaction in ascending id order.
	LockPair(ctx context.Context, id1, id2 int64) (*domain.Profile, *domain.Profile, error)
	// Update applies the non-nil fields and reports whether a row was changed.
	Update(ctx context.Context, identity int64, update *domain.ProfileUpdate) (bool, error)
	SetBanned(ctx context.Context, identity int64, banned bool) (bool, error)
	// ToggleBanned flips the ban flag in one statement and returns the new value.
	ToggleBanned(ctx context.Context, identity int64) (bool, error)
	Delete(ctx context.Context, identity int64) error
	TouchLastSeen(ctx context.Context, identity int64, at time.Time) error

	// Search matches identity exactly when term is numeric, otherwise name or
	// username as a case-insensitive substring.
	Search(ctx context.Context, term string, limit int) ([]*domain.Profile, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Profile, error)
	ListReachableIdentities(ctx context.Context) ([]int64, error)
	Counts(ctx context.Context, since time.Time) (*domain.ProfileCounts, error)

	CountCandidates(ctx context.Context, filter CandidateFilter) (int, error)
	// CandidateAt returns the eligible profile at offset in id order, or
	// domain.ErrNoCandidate when the offset is past the end.
	CandidateAt(ctx context.Context, filter CandidateFilter, offset int) (*domain.Profile, error)

	// ResetLikesIfStale zeroes likes_given_today when last_reset_date differs from today.
	ResetLikesIfStale(ctx context.Context, id int64, today time.Time) error
	// TryConsumeLike increments likes_given_today when it is below limit.
	// limit <= 0 always increments.
	TryConsumeLike(ctx context.Context, id int64, limit int) (bool, error)
	IncrementLikesReceived(ctx context.Context, id int64) error
}
