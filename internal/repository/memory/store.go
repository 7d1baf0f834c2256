// Package memory keeps every repository in process memory. It backs
// STORAGE_TYPE=memory and the use case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/google/uuid"
)

type likeKey struct {
	from, to int64
}

type state struct {
	profiles      map[int64]*domain.Profile
	identities    map[int64]int64
	likes         map[likeKey]*domain.LikeEdge
	matches       map[uuid.UUID]*domain.Match
	reports       map[int64]*domain.Report
	views         []domain.ProfileView
	adminMessages []domain.AdminMessage

	nextProfileID int64
	nextLikeID    int64
	nextReportID  int64
	nextViewID    int64
	nextMessageID int64
}

func newState() *state {
	return &state{
		profiles:   make(map[int64]*domain.Profile),
		identities: make(map[int64]int64),
		likes:      make(map[likeKey]*domain.LikeEdge),
		matches:    make(map[uuid.UUID]*domain.Match),
		reports:    make(map[int64]*domain.Report),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.profiles {
		c.profiles[id] = cloneProfile(p)
	}
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.likes {
		like := *v
		c.likes[k] = &like
	}
	for k, v := range s.matches {
		m := *v
		c.matches[k] = &m
	}
	for k, v := range s.reports {
		r := *v
		c.reports[k] = &r
	}
	c.views = append([]domain.ProfileView(nil), s.views...)
	c.adminMessages = append([]domain.AdminMessage(nil), s.adminMessages...)
	c.nextProfileID = s.nextProfileID
	c.nextLikeID = s.nextLikeID
	c.nextReportID = s.nextReportID
	c.nextViewID = s.nextViewID
	c.nextMessageID = s.nextMessageID
	return c
}

// Store is the shared state behind the memory repositories. One mutex guards
// everything; a transaction holds it from begin to commit.
type Store struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// WithClock sets the time source used for created/updated timestamps.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store unless ctx already runs inside one of its transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) now() time.Time {
	return s.clock()
}

type txManager struct {
	store *Store
}

func NewTxManager(store *Store) repository.TxManager {
	return &txManager{store: store}
}

// WithinTx runs fn holding the store lock and restores the previous state when fn fails.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.store.inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snapshot := m.store.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, m.store)); err != nil {
		m.store.data = snapshot
		return err
	}
	return nil
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Photos = p.Photos.Clone()
	c.Interests = p.Interests.Clone()
	if p.Username != nil {
		u := *p.Username
		c.Username = &u
	}
	if p.Latitude != nil {
		v := *p.Latitude
		c.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		c.Longitude = &v
	}
	if p.LastResetDate != nil {
		v := *p.LastResetDate
		c.LastResetDate = &v
	}
	return &c
}
