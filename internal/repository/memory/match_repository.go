package memory

import (
	"context"
	"sort"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/google/uuid"
)

type matchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) repository.MatchRepository {
	return &matchRepository{store: store}
}

// liveMatch returns the pair's active unexpired match, if any.
func (s *state) liveMatch(a, b int64, now time.Time) *domain.Match {
	a, b = domain.OrderedPair(a, b)
	for _, m := range s.matches {
		if m.User1ID == a && m.User2ID == b && m.IsLive(now) {
			return m
		}
	}
	return nil
}

// Create mirrors the partial unique index on active rows of a pair.
func (r *matchRepository) Create(ctx context.Context, match *domain.Match) (bool, error) {
	defer r.store.lock(ctx)()
	match.User1ID, match.User2ID = domain.OrderedPair(match.User1ID, match.User2ID)

	for _, m := range r.store.data.matches {
		if m.IsActive && m.User1ID == match.User1ID && m.User2ID == match.User2ID {
			return false, nil
		}
	}
	stored := *match
	r.store.data.matches[match.ID] = &stored
	return true, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	defer r.store.lock(ctx)()
	m, ok := r.store.data.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	out := *m
	return &out, nil
}

func (r *matchRepository) GetActiveByUsers(ctx context.Context, user1ID, user2ID int64, now time.Time) (*domain.Match, error) {
	defer r.store.lock(ctx)()
	m := r.store.data.liveMatch(user1ID, user2ID, now)
	if m == nil {
		return nil, domain.ErrMatchNotFound
	}
	out := *m
	return &out, nil
}

func (r *matchRepository) GetActiveMatches(ctx context.Context, profileID int64, now time.Time) ([]*domain.Match, error) {
	defer r.store.lock(ctx)()
	out := []*domain.Match{}
	for _, m := range r.store.data.matches {
		if m.HasUser(profileID) && m.IsLive(now) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *matchRepository) CountActive(ctx context.Context, profileID int64, now time.Time) (int, error) {
	matches, err := r.GetActiveMatches(ctx, profileID, now)
	return len(matches), err
}

func (r *matchRepository) DeactivateExpiredPair(ctx context.Context, user1ID, user2ID int64, now time.Time) error {
	defer r.store.lock(ctx)()
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)
	for _, m := range r.store.data.matches {
		if m.User1ID == user1ID && m.User2ID == user2ID && m.IsActive && !m.ExpiresAt.After(now) {
			m.IsActive = false
		}
	}
	return nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	defer r.store.lock(ctx)()
	m, ok := r.store.data.matches[id]
	if !ok {
		return domain.ErrMatchNotFound
	}
	m.IsActive = isActive
	return nil
}

func (r *matchRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, m := range r.store.data.matches {
		if m.IsActive && !m.ExpiresAt.After(now) {
			m.IsActive = false
			n++
		}
	}
	return n, nil
}
