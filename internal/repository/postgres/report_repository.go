package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (reporter_id, reported_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		report.ReporterID, report.ReportedID, report.Reason, report.Status,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	var report domain.Report
	query := `
		SELECT id, reporter_id, reported_id, reason, status, admin_notes, created_at, resolved_at
		FROM reports WHERE id = $1
	`
	if err := conn(ctx, r.db).GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListPending(ctx context.Context, limit int) ([]*domain.ReportView, error) {
	reports := []*domain.ReportView{}
	query := `
		SELECT r.id, r.reporter_id, r.reported_id, r.reason, r.status, r.admin_notes,
		       r.created_at, r.resolved_at,
		       rp.identity AS reporter_identity, rp.display_name AS reporter_name,
		       rd.identity AS reported_identity, rd.display_name AS reported_name
		FROM reports r
		JOIN profiles rp ON rp.id = r.reporter_id
		JOIN profiles rd ON rd.id = r.reported_id
		WHERE r.status = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2
	`
	err := conn(ctx, r.db).SelectContext(ctx, &reports, query, domain.ReportPending, limit)
	return reports, err
}

func (r *reportRepository) Resolve(ctx context.Context, id int64, status domain.ReportStatus, note string, at time.Time) error {
	query := `
		UPDATE reports
		SET status = $1, admin_notes = NULLIF($2, ''), resolved_at = $3
		WHERE id = $4
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, status, note, at, id)
	if err != nil {
		return err
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}
