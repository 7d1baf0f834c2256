package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	ListPending(ctx context.Context, limit int) ([]*domain.ReportView, error)
	// Resolve sets status and notes; domain.ErrReportNotFound when id is unknown.
	Resolve(ctx context.Context, id int64, status domain.ReportStatus, note string, at time.Time) error
}

type ViewRepository interface {
	Create(ctx context.Context, viewerID, viewedID int64, at time.Time) error
	CountViewsOf(ctx context.Context, viewedID int64) (int, error)
}

type AdminMessageRepository interface {
	Create(ctx context.Context, msg *domain.AdminMessage) error
}
