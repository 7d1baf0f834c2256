package postgres

import (
	"context"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) repository.LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, fromID, toID int64) (bool, error) {
	query := `
		INSERT INTO likes (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, fromID, toID)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(result)
	return n == 1, err
}

func (r *likeRepository) Exists(ctx context.Context, fromID, toID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE from_user_id = $1 AND to_user_id = $2)`
	err := conn(ctx, r.db).GetContext(ctx, &exists, query, fromID, toID)
	return exists, err
}

func (r *likeRepository) DeletePair(ctx context.Context, id1, id2 int64) error {
	query := `
		DELETE FROM likes
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, id1, id2)
	return err
}

func (r *likeRepository) GetLikesReceived(ctx context.Context, toID int64, limit int) ([]*domain.LikeEdge, error) {
	likes := []*domain.LikeEdge{}
	query := `
		SELECT l.id, l.from_user_id, l.to_user_id, l.created_at
		FROM likes l
		JOIN profiles p ON p.id = l.from_user_id
		WHERE l.to_user_id = $1 AND p.is_active AND NOT p.is_banned
		ORDER BY l.created_at DESC
		LIMIT $2
	`
	err := conn(ctx, r.db).SelectContext(ctx, &likes, query, toID, limit)
	return likes, err
}

func (r *likeRepository) CountGiven(ctx context.Context, fromID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM likes WHERE from_user_id = $1`, fromID)
	return n, err
}

func (r *likeRepository) CountReceived(ctx context.Context, toID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM likes WHERE to_user_id = $1`, toID)
	return n, err
}
