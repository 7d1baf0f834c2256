package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository/memory"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
)

var testNow = time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*ModerationUseCase, *ledger.Ledger) {
	t.Helper()
	clock := func() time.Time { return testNow }
	store := memory.NewStore().WithClock(clock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	profiles := memory.NewProfileRepository(store)
	likes := memory.NewLikeRepository(store)
	views := memory.NewViewRepository(store)
	l := ledger.NewLedger(profiles, likes, views, memory.NewReportRepository(store), logger).WithClock(clock)
	pu := profile.NewProfileUseCase(profiles, likes, memory.NewMatchRepository(store), views,
		profile.Defaults{SearchAgeMin: 18, SearchAgeMax: 100, SearchRadiusKm: 50}, logger)

	for i, name := range []string{"Anna", "Boris", "Clara"} {
		p := &domain.Profile{Identity: int64(i + 1), DisplayName: name, Age: 25, Gender: domain.GenderFemale}
		if _, err := pu.CreateProfile(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}

	uc := NewModerationUseCase(pu, l, profiles, memory.NewAdminMessageRepository(store), time.UTC, logger).WithClock(clock)
	return uc, l
}

func TestReportResolution(t *testing.T) {
	uc, l := newUseCase(t)
	ctx := context.Background()

	report, err := l.RecordReport(ctx, 1, 2, "spam")
	if err != nil {
		t.Fatal(err)
	}
	pending, _ := uc.ListPendingReports(ctx, 10)
	if len(pending) != 1 || pending[0].ReporterName != "Anna" || pending[0].ReportedName != "Boris" {
		t.Fatalf("unexpected pending list %+v", pending)
	}

	if err := uc.Resolve(ctx, report.ID, domain.ReportResolved, "handled"); err != nil {
		t.Fatal(err)
	}
	if pending, _ := uc.ListPendingReports(ctx, 10); len(pending) != 0 {
		t.Errorf("expected empty pending list, got %d", len(pending))
	}
}

func TestBanUnbanToggle(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	banned, err := uc.ToggleBan(ctx, 2)
	if err != nil || !banned {
		t.Fatalf("expected toggle to ban, got (%v, %v)", banned, err)
	}
	p, _ := uc.profiles.GetProfile(ctx, 2)
	if !p.IsBanned || p.IsActive {
		t.Errorf("expected banned and inactive, got banned=%v active=%v", p.IsBanned, p.IsActive)
	}
	banned, err = uc.ToggleBan(ctx, 2)
	if err != nil || banned {
		t.Fatalf("expected toggle to unban, got (%v, %v)", banned, err)
	}
	p, _ = uc.profiles.GetProfile(ctx, 2)
	if p.IsBanned || !p.IsActive {
		t.Errorf("expected unbanned and active, got banned=%v active=%v", p.IsBanned, p.IsActive)
	}
	if _, err := uc.ToggleBan(ctx, 404); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}

	if err := uc.Ban(ctx, 404); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if err := uc.Unban(ctx, 404); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestPremiumGrantRevoke(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	if err := uc.GrantPremium(ctx, 3); err != nil {
		t.Fatal(err)
	}
	p, _ := uc.profiles.GetProfile(ctx, 3)
	if !p.IsPremium {
		t.Error("expected premium after grant")
	}
	if err := uc.RevokePremium(ctx, 3); err != nil {
		t.Fatal(err)
	}
	p, _ = uc.profiles.GetProfile(ctx, 3)
	if p.IsPremium {
		t.Error("expected premium revoked")
	}
	if err := uc.GrantPremium(ctx, 404); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	_ = uc.Ban(ctx, 3)

	counts, err := uc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Total != 3 || counts.Active != 2 || counts.Banned != 1 || counts.RegisteredToday != 3 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestBroadcast(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	_ = uc.Ban(ctx, 3)

	recipients, err := uc.Broadcast(ctx, 99, "  maintenance tonight ")
	if err != nil {
		t.Fatal(err)
	}
	if len(recipients) != 2 || recipients[0] != 1 || recipients[1] != 2 {
		t.Errorf("expected recipients [1 2], got %v", recipients)
	}
	if _, err := uc.Broadcast(ctx, 99, " "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	uc, _ := newUseCase(t)
	got, err := uc.Search(context.Background(), "cla")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DisplayName != "Clara" {
		t.Errorf("expected Clara, got %+v", got)
	}
}
