package flow

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

type State string

const (
	StateIdle            State = "idle"
	StateRegPhoto        State = "reg_photo"
	StateRegNameAge      State = "reg_name_age"
	StateRegGender       State = "reg_gender"
	StateRegCity         State = "reg_city"
	StateRegBio          State = "reg_bio"
	StateRegInterests    State = "reg_interests"
	StateRegGoal         State = "reg_goal"
	StateRegCommitFailed State = "reg_commit_failed"
	StateEditMenu        State = "edit_menu"
	StateEditNameAge     State = "edit_name_age"
	StateEditBio         State = "edit_bio"
	StateEditPhoto       State = "edit_photo"
	StateEditCity        State = "edit_city"
	StateBrowsing        State = "browsing"
	StateReportReason    State = "report_reason"
	StateDeleteConfirm   State = "delete_confirm"
	StateAdminMenu       State = "admin_menu"
	StateAdminSearch     State = "admin_search"
	StateAdminBan        State = "admin_ban"
	StateAdminBroadcast  State = "admin_broadcast"
)

// IsRegistration reports whether s belongs to the registration flow, whose
// input is buffered in the draft until commit.
func (s State) IsRegistration() bool {
	switch s {
	case StateRegPhoto, StateRegNameAge, StateRegGender, StateRegCity, StateRegBio,
		StateRegInterests, StateRegGoal, StateRegCommitFailed:
		return true
	}
	return false
}

// Draft buffers registration input until commit.
type Draft struct {
	Photos      []string      `json:"photos,omitempty"`
	DisplayName string        `json:"display_name,omitempty"`
	Age         int           `json:"age,omitempty"`
	Gender      domain.Gender `json:"gender,omitempty"`
	City        string        `json:"city,omitempty"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Bio         string        `json:"bio,omitempty"`
	Interests   []string      `json:"interests,omitempty"`
	Goal        domain.Goal   `json:"goal,omitempty"`
}

// Session is the per-identity conversation state.
type Session struct {
	Identity  int64     `json:"identity"`
	Username  *string   `json:"username,omitempty"`
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	Viewing   int64     `json:"viewing,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) clone() *Session {
	c := *s
	c.Draft.Photos = append([]string(nil), s.Draft.Photos...)
	c.Draft.Interests = append([]string(nil), s.Draft.Interests...)
	return &c
}

// SessionStore keeps sessions keyed by identity. Get returns nil, nil for
// an unknown or expired identity.
type SessionStore interface {
	Get(ctx context.Context, identity int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, identity int64) error
}

// MemorySessionStore is an in-process SessionStore with idle expiry.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (m *MemorySessionStore) WithClock(now func() time.Time) *MemorySessionStore {
	m.now = now
	return m
}

func (m *MemorySessionStore) Get(_ context.Context, identity int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[identity]
	if !ok {
		return nil, nil
	}
	if m.expired(s) {
		delete(m.sessions, identity)
		return nil, nil
	}
	return s.clone(), nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := s.clone()
	c.UpdatedAt = m.now()
	m.sessions[s.Identity] = c
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, identity int64) error {
	m.mu.Lock()
	delete(m.sessions, identity)
	m.mu.Unlock()
	return nil
}

// GC drops sessions idle for longer than the TTL and returns how many went.
func (m *MemorySessionStore) GC() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemorySessionStore) expired(s *Session) bool {
	return m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl
}
