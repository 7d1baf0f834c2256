package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) (bool, error) {
	// Ensure user1_id < user2_id for constraint
	match.User1ID, match.User2ID = domain.OrderedPair(match.User1ID, match.User2ID)

	query := `
		INSERT INTO matches (id, user1_id, user2_id, is_active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user1_id, user2_id) WHERE is_active DO NOTHING
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		match.ID, match.User1ID, match.User2ID, match.IsActive, match.CreatedAt, match.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	n, err := rowsAffected(result)
	return n == 1, err
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var match domain.Match
	query := `SELECT id, user1_id, user2_id, is_active, created_at, expires_at FROM matches WHERE id = $1`
	err := conn(ctx, r.db).GetContext(ctx, &match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetActiveByUsers(ctx context.Context, user1ID, user2ID int64, now time.Time) (*domain.Match, error) {
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)

	var match domain.Match
	query := `
		SELECT id, user1_id, user2_id, is_active, created_at, expires_at
		FROM matches
		WHERE user1_id = $1 AND user2_id = $2 AND is_active AND expires_at > $3
	`
	err := conn(ctx, r.db).GetContext(ctx, &match, query, user1ID, user2ID, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetActiveMatches(ctx context.Context, profileID int64, now time.Time) ([]*domain.Match, error) {
	matches := []*domain.Match{}
	query := `
		SELECT id, user1_id, user2_id, is_active, created_at, expires_at
		FROM matches
		WHERE (user1_id = $1 OR user2_id = $1) AND is_active AND expires_at > $2
		ORDER BY created_at DESC
	`
	err := conn(ctx, r.db).SelectContext(ctx, &matches, query, profileID, now)
	return matches, err
}

func (r *matchRepository) CountActive(ctx context.Context, profileID int64, now time.Time) (int, error) {
	var n int
	query := `
		SELECT COUNT(*) FROM matches
		WHERE (user1_id = $1 OR user2_id = $1) AND is_active AND expires_at > $2
	`
	err := conn(ctx, r.db).GetContext(ctx, &n, query, profileID, now)
	return n, err
}

func (r *matchRepository) DeactivateExpiredPair(ctx context.Context, user1ID, user2ID int64, now time.Time) error {
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)
	query := `
		UPDATE matches SET is_active = false
		WHERE user1_id = $1 AND user2_id = $2 AND is_active AND expires_at <= $3
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, user1ID, user2ID, now)
	return err
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE matches SET is_active = $1 WHERE id = $2`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, isActive, id)
	if err != nil {
		return err
	}
	rows, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (r *matchRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE matches SET is_active = false WHERE is_active AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return rowsAffected(result)
}
