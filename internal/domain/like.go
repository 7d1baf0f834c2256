package domain

import "time"

// LikeEdge is a directed like from one profile to another, unique per ordered pair.
type LikeEdge struct {
	ID         int64     `json:"id" db:"id"`
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type LikeOutcome string

const (
	LikeSent   LikeOutcome = "sent"
	LikeMutual LikeOutcome = "mutual"
)

// LikeResult is the answer to a submitted like.
type LikeResult struct {
	Outcome LikeOutcome `json:"outcome"`
	Target  *Card       `json:"target"`
	Match   *Match      `json:"match,omitempty"`
	// Duplicate is set when the edge already existed; no quota was charged.
	Duplicate bool `json:"duplicate,omitempty"`
	// AlreadyMatched is set when the pair already had a live match.
	AlreadyMatched bool   `json:"already_matched,omitempty"`
	Icebreaker     string `json:"icebreaker,omitempty"`
	LikesLeft      *int   `json:"likes_left,omitempty"`
}

func (r *LikeResult) IsMutual() bool {
	return r != nil && r.Outcome == LikeMutual
}

// ReceivedLike is a pending like someone sent to the caller.
type ReceivedLike struct {
	From      *Card     `json:"from"`
	CreatedAt time.Time `json:"created_at"`
}
