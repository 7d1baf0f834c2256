// Package ledger records the interactions between profiles: views, likes and reports.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

const (
	DefaultPendingLimit = 50
	maxPendingLimit     = 200
)

type Ledger struct {
	profileRepo repository.ProfileRepository
	likeRepo    repository.LikeRepository
	viewRepo    repository.ViewRepository
	reportRepo  repository.ReportRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewLedger(
	profileRepo repository.ProfileRepository,
	likeRepo repository.LikeRepository,
	viewRepo repository.ViewRepository,
	reportRepo repository.ReportRepository,
	logger *slog.Logger,
) *Ledger {
	return &Ledger{
		profileRepo: profileRepo,
		likeRepo:    likeRepo,
		viewRepo:    viewRepo,
		reportRepo:  reportRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// RecordView stores a view event. Failures are logged and never returned.
func (l *Ledger) RecordView(ctx context.Context, viewerID, viewedID int64) {
	if err := l.viewRepo.Create(ctx, viewerID, viewedID, l.now()); err != nil {
		l.logger.Warn("record view failed", "viewer_id", viewerID, "viewed_id", viewedID, "error", err)
	}
}

// RecordLike inserts the edge; a duplicate is a no-op. It reports whether a new edge was written.
func (l *Ledger) RecordLike(ctx context.Context, fromID, toID int64) (bool, error) {
	created, err := l.likeRepo.Create(ctx, fromID, toID)
	if err != nil {
		return false, domain.WrapStorage("ledger.record_like", err)
	}
	return created, nil
}

func (l *Ledger) HasLike(ctx context.Context, fromID, toID int64) (bool, error) {
	ok, err := l.likeRepo.Exists(ctx, fromID, toID)
	if err != nil {
		return false, domain.WrapStorage("ledger.has_like", err)
	}
	return ok, nil
}

// ConsumePair drops both edges of a pair once they became a match.
func (l *Ledger) ConsumePair(ctx context.Context, id1, id2 int64) error {
	if err := l.likeRepo.DeletePair(ctx, id1, id2); err != nil {
		return domain.WrapStorage("ledger.consume_pair", err)
	}
	return nil
}

// LikesReceived lists pending likes sent to profileID by profiles still reachable.
func (l *Ledger) LikesReceived(ctx context.Context, profileID int64, limit int) ([]*domain.LikeEdge, error) {
	if limit <= 0 || limit > maxPendingLimit {
		limit = DefaultPendingLimit
	}
	likes, err := l.likeRepo.GetLikesReceived(ctx, profileID, limit)
	if err != nil {
		return nil, domain.WrapStorage("ledger.likes_received", err)
	}
	return likes, nil
}

// RecordReport files a pending report of reportedIdentity by reporterIdentity.
func (l *Ledger) RecordReport(ctx context.Context, reporterIdentity, reportedIdentity int64, reason string) (*domain.Report, error) {
	if reporterIdentity == reportedIdentity {
		return nil, domain.ErrCannotReportSelf
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "is required")
	}
	if utf8.RuneCountInString(reason) > domain.MaxReportReasonLength {
		reason = string([]rune(reason)[:domain.MaxReportReasonLength])
	}

	reporter, err := l.profileRepo.GetByIdentity(ctx, reporterIdentity)
	if err != nil {
		return nil, notFoundOrStorage("ledger.report", err)
	}
	reported, err := l.profileRepo.GetByIdentity(ctx, reportedIdentity)
	if err != nil {
		return nil, notFoundOrStorage("ledger.report", err)
	}

	report := &domain.Report{
		ReporterID: reporter.ID,
		ReportedID: reported.ID,
		Reason:     reason,
		Status:     domain.ReportPending,
	}
	if err := l.reportRepo.Create(ctx, report); err != nil {
		l.logger.Error("record report failed", "reporter", reporterIdentity, "reported", reportedIdentity, "error", err)
		return nil, domain.WrapStorage("ledger.report", err)
	}

	l.logger.Info("report filed", "report_id", report.ID, "reporter", reporterIdentity, "reported", reportedIdentity)
	return report, nil
}

func (l *Ledger) ListPendingReports(ctx context.Context, limit int) ([]*domain.ReportView, error) {
	if limit <= 0 || limit > maxPendingLimit {
		limit = DefaultPendingLimit
	}
	reports, err := l.reportRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, domain.WrapStorage("ledger.list_reports", err)
	}
	return reports, nil
}

// Resolve closes a report with a final status and an optional note.
func (l *Ledger) Resolve(ctx context.Context, reportID int64, status domain.ReportStatus, note string) error {
	if !status.IsFinal() {
		return domain.NewValidationError("status", "must be one of: reviewed resolved dismissed")
	}
	note = strings.TrimSpace(note)
	if err := l.reportRepo.Resolve(ctx, reportID, status, note, l.now()); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return err
		}
		return domain.WrapStorage("ledger.resolve", err)
	}
	l.logger.Info("report resolved", "report_id", reportID, "status", status)
	return nil
}

func notFoundOrStorage(op string, err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}
	return domain.WrapStorage(op, err)
}
