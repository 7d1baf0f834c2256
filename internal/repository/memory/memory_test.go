package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewStore().WithClock(func() time.Time { return testNow })
}

func mustCreate(t *testing.T, repo repository.ProfileRepository, identity int64, age int, gender domain.Gender) *domain.Profile {
	t.Helper()
	p := &domain.Profile{
		Identity:     identity,
		DisplayName:  "user",
		Age:          age,
		Gender:       gender,
		SearchGender: domain.GenderAny,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create profile %d: %v", identity, err)
	}
	return p
}

func TestProfileCreateDuplicateIdentity(t *testing.T) {
	repo := NewProfileRepository(newTestStore())
	mustCreate(t, repo, 100, 25, domain.GenderMale)

	err := repo.Create(context.Background(), &domain.Profile{Identity: 100, DisplayName: "again", Age: 30})
	if !errors.Is(err, domain.ErrProfileAlreadyExists) {
		t.Fatalf("expected ErrProfileAlreadyExists, got %v", err)
	}
}

func TestProfileUpdateUnknownIdentity(t *testing.T) {
	repo := NewProfileRepository(newTestStore())
	bio := "hello"

	ok, err := repo.Update(context.Background(), 404, &domain.ProfileUpdate{Bio: &bio})
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestReturnedProfilesAreCopies(t *testing.T) {
	repo := NewProfileRepository(newTestStore())
	mustCreate(t, repo, 1, 25, domain.GenderMale)

	p, _ := repo.GetByIdentity(context.Background(), 1)
	p.DisplayName = "changed"

	again, _ := repo.GetByIdentity(context.Background(), 1)
	if again.DisplayName != "user" {
		t.Errorf("expected stored profile untouched, got %q", again.DisplayName)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	store := newTestStore()
	profiles := NewProfileRepository(store)
	tx := NewTxManager(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		mustCreate(t, profiles, 1, 25, domain.GenderMale)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := profiles.GetByIdentity(ctx, 1); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected rollback to drop the profile, got %v", err)
	}

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		mustCreate(t, profiles, 2, 25, domain.GenderMale)
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			mustCreate(t, profiles, 3, 25, domain.GenderMale)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("expected commit, got %v", err)
	}
	if _, err := profiles.GetByIdentity(ctx, 3); err != nil {
		t.Fatalf("expected nested write to persist, got %v", err)
	}
}

func TestCandidatesExcludeLikedMatchedAndSelf(t *testing.T) {
	store := newTestStore()
	profiles := NewProfileRepository(store)
	likes := NewLikeRepository(store)
	matches := NewMatchRepository(store)
	ctx := context.Background()

	viewer := mustCreate(t, profiles, 1, 25, domain.GenderMale)
	liked := mustCreate(t, profiles, 2, 24, domain.GenderFemale)
	matched := mustCreate(t, profiles, 3, 24, domain.GenderFemale)
	expired := mustCreate(t, profiles, 4, 24, domain.GenderFemale)
	banned := mustCreate(t, profiles, 5, 24, domain.GenderFemale)
	old := mustCreate(t, profiles, 6, 60, domain.GenderFemale)
	open := mustCreate(t, profiles, 7, 26, domain.GenderFemale)

	if _, err := likes.Create(ctx, viewer.ID, liked.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := matches.Create(ctx, domain.NewMatch(viewer.ID, matched.ID, testNow, time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := matches.Create(ctx, domain.NewMatch(viewer.ID, expired.ID, testNow.Add(-2*time.Hour), time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := profiles.SetBanned(ctx, banned.Identity, true); err != nil {
		t.Fatal(err)
	}

	filter := repository.CandidateFilter{ViewerID: viewer.ID, AgeMin: 18, AgeMax: 40, Gender: domain.GenderFemale, Now: testNow}
	n, err := profiles.CountCandidates(ctx, filter)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 candidates (expired match and open), got %d", n)
	}

	seen := map[int64]bool{}
	for i := 0; i < n; i++ {
		p, err := profiles.CandidateAt(ctx, filter, i)
		if err != nil {
			t.Fatal(err)
		}
		seen[p.ID] = true
	}
	if !seen[expired.ID] || !seen[open.ID] || seen[old.ID] {
		t.Errorf("unexpected candidate set %v", seen)
	}
	if _, err := profiles.CandidateAt(ctx, filter, n); !errors.Is(err, domain.ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate past the end, got %v", err)
	}
}

func TestMatchCreateRejectsSecondActiveRow(t *testing.T) {
	store := newTestStore()
	matches := NewMatchRepository(store)
	ctx := context.Background()

	created, err := matches.Create(ctx, domain.NewMatch(1, 2, testNow, time.Hour))
	if err != nil || !created {
		t.Fatalf("expected first insert, got (%v, %v)", created, err)
	}
	created, err = matches.Create(ctx, domain.NewMatch(2, 1, testNow, time.Hour))
	if err != nil || created {
		t.Fatalf("expected conflict to be ignored, got (%v, %v)", created, err)
	}

	if err := matches.DeactivateExpiredPair(ctx, 1, 2, testNow.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	created, _ = matches.Create(ctx, domain.NewMatch(1, 2, testNow.Add(2*time.Hour), time.Hour))
	if !created {
		t.Errorf("expected insert after the stale row was deactivated")
	}
}

func TestExpireBefore(t *testing.T) {
	store := newTestStore()
	matches := NewMatchRepository(store)
	ctx := context.Background()

	_, _ = matches.Create(ctx, domain.NewMatch(1, 2, testNow.Add(-48*time.Hour), 24*time.Hour))
	_, _ = matches.Create(ctx, domain.NewMatch(1, 3, testNow, 24*time.Hour))

	n, err := matches.ExpireBefore(ctx, testNow)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 expired, got (%d, %v)", n, err)
	}
	if c, _ := matches.CountActive(ctx, 1, testNow); c != 1 {
		t.Errorf("expected 1 active match left, got %d", c)
	}
}

func TestDeleteCascades(t *testing.T) {
	store := newTestStore()
	profiles := NewProfileRepository(store)
	likes := NewLikeRepository(store)
	reports := NewReportRepository(store)
	views := NewViewRepository(store)
	ctx := context.Background()

	a := mustCreate(t, profiles, 1, 25, domain.GenderMale)
	b := mustCreate(t, profiles, 2, 25, domain.GenderFemale)
	_, _ = likes.Create(ctx, a.ID, b.ID)
	_ = reports.Create(ctx, &domain.Report{ReporterID: b.ID, ReportedID: a.ID, Reason: "spam", Status: domain.ReportPending})
	_ = views.Create(ctx, b.ID, a.ID, testNow)

	if err := profiles.Delete(ctx, a.Identity); err != nil {
		t.Fatal(err)
	}
	if n, _ := likes.CountReceived(ctx, b.ID); n != 0 {
		t.Errorf("expected likes removed, got %d", n)
	}
	if pending, _ := reports.ListPending(ctx, 10); len(pending) != 0 {
		t.Errorf("expected reports removed, got %d", len(pending))
	}
	if n, _ := views.CountViewsOf(ctx, a.ID); n != 0 {
		t.Errorf("expected views removed, got %d", n)
	}
	if err := profiles.Delete(ctx, a.Identity); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound on second delete, got %v", err)
	}
}

func TestLikeQuotaCounters(t *testing.T) {
	store := newTestStore()
	profiles := NewProfileRepository(store)
	ctx := context.Background()
	p := mustCreate(t, profiles, 1, 25, domain.GenderMale)

	for i := 0; i < 2; i++ {
		if ok, _ := profiles.TryConsumeLike(ctx, p.ID, 2); !ok {
			t.Fatalf("expected like %d to be allowed", i+1)
		}
	}
	if ok, _ := profiles.TryConsumeLike(ctx, p.ID, 2); ok {
		t.Fatalf("expected third like to be denied")
	}

	if err := profiles.ResetLikesIfStale(ctx, p.ID, testNow); err != nil {
		t.Fatal(err)
	}
	got, _ := profiles.GetByID(ctx, p.ID)
	if got.LikesGivenToday != 0 {
		t.Fatalf("expected counter reset, got %d", got.LikesGivenToday)
	}

	_, _ = profiles.TryConsumeLike(ctx, p.ID, 2)
	_ = profiles.ResetLikesIfStale(ctx, p.ID, testNow.Add(time.Hour))
	got, _ = profiles.GetByID(ctx, p.ID)
	if got.LikesGivenToday != 1 {
		t.Errorf("expected same-day reset to be a no-op, got %d", got.LikesGivenToday)
	}
}

func TestSearch(t *testing.T) {
	store := newTestStore()
	profiles := NewProfileRepository(store)
	ctx := context.Background()

	anna := &domain.Profile{Identity: 555, DisplayName: "Anna", Age: 22, Gender: domain.GenderFemale}
	username := "ivan_the_great"
	ivan := &domain.Profile{Identity: 777, DisplayName: "Ivan", Username: &username, Age: 30, Gender: domain.GenderMale}
	_ = profiles.Create(ctx, anna)
	_ = profiles.Create(ctx, ivan)

	tests := []struct {
		term string
		want int
	}{
		{"ann", 1},
		{"GREAT", 1},
		{"777", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		got, err := profiles.Search(ctx, tt.term, 20)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("search %q: expected %d results, got %d", tt.term, tt.want, len(got))
		}
	}
}
