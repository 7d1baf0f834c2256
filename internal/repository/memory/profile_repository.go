package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

type profileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) repository.ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if _, ok := d.identities[profile.Identity]; ok {
		return domain.ErrProfileAlreadyExists
	}

	d.nextProfileID++
	now := r.store.now()
	profile.ID = d.nextProfileID
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.LastSeenAt = now
	if profile.Photos == nil {
		profile.Photos = domain.StringList{}
	}
	if profile.Interests == nil {
		profile.Interests = domain.StringList{}
	}

	d.profiles[profile.ID] = cloneProfile(profile)
	d.identities[profile.Identity] = profile.ID
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	defer r.store.lock(ctx)()
	p, ok := r.store.data.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *profileRepository) GetByIdentity(ctx context.Context, identity int64) (*domain.Profile, error) {
	defer r.store.lock(ctx)()
	p := r.store.data.byIdentity(identity)
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (s *state) byIdentity(identity int64) *domain.Profile {
	id, ok := s.identities[identity]
	if !ok {
		return nil
	}
	return s.profiles[id]
}

// LockPair needs no row locks here: the transaction already holds the store.
func (r *profileRepository) LockPair(ctx context.Context, id1, id2 int64) (*domain.Profile, *domain.Profile, error) {
	defer r.store.lock(ctx)()
	a, ok1 := r.store.data.profiles[id1]
	b, ok2 := r.store.data.profiles[id2]
	if !ok1 || !ok2 {
		return nil, nil, domain.ErrProfileNotFound
	}
	return cloneProfile(a), cloneProfile(b), nil
}

func (r *profileRepository) Update(ctx context.Context, identity int64, update *domain.ProfileUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}
	defer r.store.lock(ctx)()

	p := r.store.data.byIdentity(identity)
	if p == nil {
		return false, nil
	}
	update.Apply(p)
	p.UpdatedAt = r.store.now()
	return true, nil
}

func (r *profileRepository) SetBanned(ctx context.Context, identity int64, banned bool) (bool, error) {
	defer r.store.lock(ctx)()

	p := r.store.data.byIdentity(identity)
	if p == nil {
		return false, nil
	}
	p.IsBanned = banned
	p.IsActive = !banned
	p.UpdatedAt = r.store.now()
	return true, nil
}

func (r *profileRepository) ToggleBanned(ctx context.Context, identity int64) (bool, error) {
	defer r.store.lock(ctx)()

	p := r.store.data.byIdentity(identity)
	if p == nil {
		return false, domain.ErrProfileNotFound
	}
	p.IsBanned = !p.IsBanned
	p.IsActive = !p.IsBanned
	p.UpdatedAt = r.store.now()
	return p.IsBanned, nil
}

func (r *profileRepository) Delete(ctx context.Context, identity int64) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	p := d.byIdentity(identity)
	if p == nil {
		return domain.ErrProfileNotFound
	}
	id := p.ID
	delete(d.profiles, id)
	delete(d.identities, identity)

	for k := range d.likes {
		if k.from == id || k.to == id {
			delete(d.likes, k)
		}
	}
	for k, m := range d.matches {
		if m.HasUser(id) {
			delete(d.matches, k)
		}
	}
	for k, rep := range d.reports {
		if rep.ReporterID == id || rep.ReportedID == id {
			delete(d.reports, k)
		}
	}
	views := d.views[:0]
	for _, v := range d.views {
		if v.ViewerID != id && v.ViewedID != id {
			views = append(views, v)
		}
	}
	d.views = views
	return nil
}

func (r *profileRepository) TouchLastSeen(ctx context.Context, identity int64, at time.Time) error {
	defer r.store.lock(ctx)()
	if p := r.store.data.byIdentity(identity); p != nil {
		p.LastSeenAt = at
	}
	return nil
}

func (r *profileRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Profile, error) {
	defer r.store.lock(ctx)()

	exact, err := strconv.ParseInt(term, 10, 64)
	numeric := err == nil
	needle := strings.ToLower(term)

	out := []*domain.Profile{}
	for _, p := range r.store.data.sortedProfiles(newestFirst) {
		match := numeric && p.Identity == exact
		if !match && strings.Contains(strings.ToLower(p.DisplayName), needle) {
			match = true
		}
		if !match && p.Username != nil && strings.Contains(strings.ToLower(*p.Username), needle) {
			match = true
		}
		if match {
			out = append(out, cloneProfile(p))
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *profileRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Profile, error) {
	defer r.store.lock(ctx)()
	out := []*domain.Profile{}
	for _, p := range r.store.data.sortedProfiles(newestFirst) {
		if len(out) == limit {
			break
		}
		out = append(out, cloneProfile(p))
	}
	return out, nil
}

func (r *profileRepository) ListReachableIdentities(ctx context.Context) ([]int64, error) {
	defer r.store.lock(ctx)()
	out := []int64{}
	for _, p := range r.store.data.sortedProfiles(byID) {
		if p.IsAvailable() {
			out = append(out, p.Identity)
		}
	}
	return out, nil
}

func (r *profileRepository) Counts(ctx context.Context, since time.Time) (*domain.ProfileCounts, error) {
	defer r.store.lock(ctx)()
	c := &domain.ProfileCounts{}
	for _, p := range r.store.data.profiles {
		c.Total++
		if p.IsAvailable() {
			c.Active++
		}
		if p.IsBanned {
			c.Banned++
		}
		if p.IsPremium {
			c.Premium++
		}
		if !p.CreatedAt.Before(since) {
			c.RegisteredToday++
		}
	}
	return c, nil
}

func (r *profileRepository) CountCandidates(ctx context.Context, filter repository.CandidateFilter) (int, error) {
	defer r.store.lock(ctx)()
	return len(r.store.data.candidates(filter)), nil
}

func (r *profileRepository) CandidateAt(ctx context.Context, filter repository.CandidateFilter, offset int) (*domain.Profile, error) {
	defer r.store.lock(ctx)()
	candidates := r.store.data.candidates(filter)
	if offset < 0 || offset >= len(candidates) {
		return nil, domain.ErrNoCandidate
	}
	return cloneProfile(candidates[offset]), nil
}

func (s *state) candidates(f repository.CandidateFilter) []*domain.Profile {
	out := []*domain.Profile{}
	for _, p := range s.sortedProfiles(byID) {
		if !f.Accepts(p) {
			continue
		}
		if _, liked := s.likes[likeKey{from: f.ViewerID, to: p.ID}]; liked {
			continue
		}
		if s.liveMatch(f.ViewerID, p.ID, f.Now) != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *profileRepository) ResetLikesIfStale(ctx context.Context, id int64, today time.Time) error {
	defer r.store.lock(ctx)()
	p, ok := r.store.data.profiles[id]
	if !ok {
		return nil
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if p.LastResetDate != nil && p.LastResetDate.Equal(day) {
		return nil
	}
	p.LikesGivenToday = 0
	p.LastResetDate = &day
	return nil
}

func (r *profileRepository) TryConsumeLike(ctx context.Context, id int64, limit int) (bool, error) {
	defer r.store.lock(ctx)()
	p, ok := r.store.data.profiles[id]
	if !ok {
		return false, nil
	}
	if limit > 0 && p.LikesGivenToday >= limit {
		return false, nil
	}
	p.LikesGivenToday++
	return true, nil
}

func (r *profileRepository) IncrementLikesReceived(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()
	if p, ok := r.store.data.profiles[id]; ok {
		p.LikesReceivedTotal++
	}
	return nil
}

type profileOrder int

const (
	byID profileOrder = iota
	newestFirst
)

func (s *state) sortedProfiles(order profileOrder) []*domain.Profile {
	out := make([]*domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == newestFirst && !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if order == newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}
