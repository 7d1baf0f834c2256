package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/google/uuid"
)

type MatchRepository interface {
	// Create inserts m. It returns false without error when a live match already
	// holds the pair; the caller then reads that row with GetActiveByUsers.
	Create(ctx context.Context, match *domain.Match) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	// GetActiveByUsers returns the pair's match that is active and unexpired at now.
	GetActiveByUsers(ctx context.Context, user1ID, user2ID int64, now time.Time) (*domain.Match, error)
	GetActiveMatches(ctx context.Context, profileID int64, now time.Time) ([]*domain.Match, error)
	CountActive(ctx context.Context, profileID int64, now time.Time) (int, error)
	// DeactivateExpiredPair flips expired-but-active rows of the pair to inactive.
	DeactivateExpiredPair(ctx context.Context, user1ID, user2ID int64, now time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	// ExpireBefore flips every active match with expires_at <= now and returns how many changed.
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}
