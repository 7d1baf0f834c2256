package repository

import (
	"context"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

type LikeRepository interface {
	// Create inserts the edge, ignoring a duplicate. It reports whether a row was added.
	Create(ctx context.Context, fromID, toID int64) (bool, error)
	Exists(ctx context.Context, fromID, toID int64) (bool, error)
	// DeletePair removes the edges in both directions.
	DeletePair(ctx context.Context, id1, id2 int64) error
	GetLikesReceived(ctx context.Context, toID int64, limit int) ([]*domain.LikeEdge, error)
	CountGiven(ctx context.Context, fromID int64) (int, error)
	CountReceived(ctx context.Context, toID int64) (int, error)
}
