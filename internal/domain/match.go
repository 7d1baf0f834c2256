package domain

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID        uuid.UUID `json:"id" db:"id"`
	User1ID   int64     `json:"user1_id" db:"user1_id"`
	User2ID   int64     `json:"user2_id" db:"user2_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// NewMatch builds an active match for the pair, normalising user1 < user2.
func NewMatch(a, b int64, now time.Time, lifetime time.Duration) *Match {
	if a > b {
		a, b = b, a
	}
	return &Match{
		ID:        uuid.New(),
		User1ID:   a,
		User2ID:   b,
		IsActive:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

// OrderedPair returns the pair as stored: smaller profile id first.
func OrderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (m *Match) HasUser(profileID int64) bool {
	return m.User1ID == profileID || m.User2ID == profileID
}

func (m *Match) GetOtherUserID(profileID int64) int64 {
	if m.User1ID == profileID {
		return m.User2ID
	}
	return m.User1ID
}

// IsLive reports whether the match is active and not yet expired at now.
// Expiry is evaluated lazily; IsActive may still be true on an expired row.
func (m *Match) IsLive(now time.Time) bool {
	return m.IsActive && m.ExpiresAt.After(now)
}

// MatchSummary is a live match joined with the partner's display identity.
type MatchSummary struct {
	Match    *Match        `json:"match"`
	Partner  *Card         `json:"partner"`
	TimeLeft time.Duration `json:"time_left"`
}
