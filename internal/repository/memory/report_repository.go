package memory

import (
	"context"
	"sort"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

type reportRepository struct {
	store *Store
}

func NewReportRepository(store *Store) repository.ReportRepository {
	return &reportRepository{store: store}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	defer r.store.lock(ctx)()
	d := r.store.data
	if _, ok := d.profiles[report.ReporterID]; !ok {
		return domain.ErrProfileNotFound
	}
	if _, ok := d.profiles[report.ReportedID]; !ok {
		return domain.ErrProfileNotFound
	}
	d.nextReportID++
	report.ID = d.nextReportID
	report.CreatedAt = r.store.now()
	stored := *report
	d.reports[report.ID] = &stored
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	defer r.store.lock(ctx)()
	rep, ok := r.store.data.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	out := *rep
	return &out, nil
}

func (r *reportRepository) ListPending(ctx context.Context, limit int) ([]*domain.ReportView, error) {
	defer r.store.lock(ctx)()
	d := r.store.data
	out := []*domain.ReportView{}
	for _, rep := range d.reports {
		if rep.Status != domain.ReportPending {
			continue
		}
		reporter, ok1 := d.profiles[rep.ReporterID]
		reported, ok2 := d.profiles[rep.ReportedID]
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, &domain.ReportView{
			Report:           *rep,
			ReporterIdentity: reporter.Identity,
			ReporterName:     reporter.DisplayName,
			ReportedIdentity: reported.Identity,
			ReportedName:     reported.DisplayName,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reportRepository) Resolve(ctx context.Context, id int64, status domain.ReportStatus, note string, at time.Time) error {
	defer r.store.lock(ctx)()
	rep, ok := r.store.data.reports[id]
	if !ok {
		return domain.ErrReportNotFound
	}
	rep.Status = status
	if note != "" {
		rep.AdminNotes = &note
	} else {
		rep.AdminNotes = nil
	}
	rep.ResolvedAt = &at
	return nil
}

type viewRepository struct {
	store *Store
}

func NewViewRepository(store *Store) repository.ViewRepository {
	return &viewRepository{store: store}
}

func (r *viewRepository) Create(ctx context.Context, viewerID, viewedID int64, at time.Time) error {
	defer r.store.lock(ctx)()
	d := r.store.data
	d.nextViewID++
	d.views = append(d.views, domain.ProfileView{ID: d.nextViewID, ViewerID: viewerID, ViewedID: viewedID, CreatedAt: at})
	return nil
}

func (r *viewRepository) CountViewsOf(ctx context.Context, viewedID int64) (int, error) {
	defer r.store.lock(ctx)()
	n := 0
	for _, v := range r.store.data.views {
		if v.ViewedID == viewedID {
			n++
		}
	}
	return n, nil
}

type adminMessageRepository struct {
	store *Store
}

func NewAdminMessageRepository(store *Store) repository.AdminMessageRepository {
	return &adminMessageRepository{store: store}
}

func (r *adminMessageRepository) Create(ctx context.Context, msg *domain.AdminMessage) error {
	defer r.store.lock(ctx)()
	d := r.store.data
	d.nextMessageID++
	msg.ID = d.nextMessageID
	msg.CreatedAt = r.store.now()
	d.adminMessages = append(d.adminMessages, *msg)
	return nil
}
