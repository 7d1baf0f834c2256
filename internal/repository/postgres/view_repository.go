package postgres

import (
	"context"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type viewRepository struct {
	db *sqlx.DB
}

func NewViewRepository(db *sqlx.DB) repository.ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Create(ctx context.Context, viewerID, viewedID int64, at time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO profile_views (viewer_id, viewed_id, created_at) VALUES ($1, $2, $3)`,
		viewerID, viewedID, at)
	return err
}

func (r *viewRepository) CountViewsOf(ctx context.Context, viewedID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM profile_views WHERE viewed_id = $1`, viewedID)
	return n, err
}

type adminMessageRepository struct {
	db *sqlx.DB
}

func NewAdminMessageRepository(db *sqlx.DB) repository.AdminMessageRepository {
	return &adminMessageRepository{db: db}
}

func (r *adminMessageRepository) Create(ctx context.Context, msg *domain.AdminMessage) error {
	query := `
		INSERT INTO admin_messages (admin_identity, text, recipients)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return conn(ctx, r.db).QueryRowxContext(ctx, query, msg.AdminID, msg.Text, msg.Recipients).
		Scan(&msg.ID, &msg.CreatedAt)
}
