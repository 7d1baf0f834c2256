package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/gdugdh24/nearby-backend/internal/repository/memory"
	"github.com/gdugdh24/nearby-backend/internal/usecase/feed"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/moderation"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ratelimit"
	"github.com/gdugdh24/nearby-backend/internal/usecase/swipe"
)

const adminIdentity = 99

var testNow = time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC)

// flakyProfiles fails Create while failCreate is set.
type flakyProfiles struct {
	repository.ProfileRepository
	failCreate bool
}

func (f *flakyProfiles) Create(ctx context.Context, p *domain.Profile) error {
	if f.failCreate {
		return errors.New("connection reset")
	}
	return f.ProfileRepository.Create(ctx, p)
}

type fixture struct {
	c          *Controller
	sessions   *MemorySessionStore
	profiles   *profile.ProfileUseCase
	moderation *moderation.ModerationUseCase
	repo       *flakyProfiles
}

func newFixture(t *testing.T, collectInterests bool) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore().WithClock(clock)
	repo := &flakyProfiles{ProfileRepository: memory.NewProfileRepository(store)}
	likes := memory.NewLikeRepository(store)
	matches := memory.NewMatchRepository(store)
	views := memory.NewViewRepository(store)

	l := ledger.NewLedger(repo, likes, views, memory.NewReportRepository(store), logger).WithClock(clock)
	pu := profile.NewProfileUseCase(repo, likes, matches, views,
		profile.Defaults{SearchAgeMin: 18, SearchAgeMax: 100, SearchRadiusKm: 50}, logger).WithClock(clock)
	fu := feed.NewFeedUseCase(repo, l, feed.RadiusInformational, logger).
		WithClock(clock).
		WithRand(func(int) int { return 0 })
	limiter := ratelimit.NewLimiter(repo, ratelimit.Policy{DailyLimit: 20}, time.UTC).WithClock(clock)
	su := swipe.NewSwipeUseCase(memory.NewTxManager(store), repo, matches, l, limiter, nil,
		swipe.Config{ConversationDuration: 24 * time.Hour, PremiumConversationDuration: 72 * time.Hour},
		logger).WithClock(clock)
	mu := moderation.NewModerationUseCase(pu, l, repo, memory.NewAdminMessageRepository(store), time.UTC, logger).
		WithClock(clock)

	sessions := NewMemorySessionStore(time.Hour).WithClock(clock)
	c := NewController(pu, fu, su, l, mu, sessions,
		Options{Admins: []int64{adminIdentity}, CollectInterests: collectInterests}, logger)
	return &fixture{c: c, sessions: sessions, profiles: pu, moderation: mu, repo: repo}
}

func (f *fixture) send(t *testing.T, ev Event) []Effect {
	t.Helper()
	effects, err := f.c.Handle(context.Background(), ev)
	if err != nil {
		t.Fatalf("handle %+v: %v", ev, err)
	}
	return effects
}

func (f *fixture) text(t *testing.T, identity int64, text string) []Effect {
	t.Helper()
	return f.send(t, Event{Identity: identity, Kind: EventText, Text: text})
}

func (f *fixture) choose(t *testing.T, identity int64, choice string) []Effect {
	t.Helper()
	return f.send(t, Event{Identity: identity, Kind: EventChoice, Choice: choice})
}

func (f *fixture) photo(t *testing.T, identity int64, ref string) []Effect {
	t.Helper()
	return f.send(t, Event{Identity: identity, Kind: EventPhoto, PhotoRef: ref})
}

func (f *fixture) state(t *testing.T, identity int64) State {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), identity)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil {
		return StateIdle
	}
	return s.State
}

func (f *fixture) register(t *testing.T, identity int64, name string, age int, gender domain.Gender) {
	t.Helper()
	p := &domain.Profile{Identity: identity, DisplayName: name, Age: age, Gender: gender, City: "Moscow"}
	if _, err := f.profiles.CreateProfile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
}

func has(effects []Effect, identity int64, substr string) bool {
	for _, e := range effects {
		if e.Identity == identity && strings.Contains(e.Text, substr) {
			return true
		}
	}
	return false
}

func expectState(t *testing.T, f *fixture, identity int64, want State) {
	t.Helper()
	if got := f.state(t, identity); got != want {
		t.Fatalf("expected state %s, got %s", want, got)
	}
}

func TestRegistrationFlow(t *testing.T) {
	f := newFixture(t, true)
	const id = 1

	f.text(t, id, "/start")
	expectState(t, f, id, StateRegPhoto)

	effects := f.text(t, id, "hello")
	if !has(effects, id, "not what I asked") {
		t.Errorf("expected re-prompt for wrong input shape, got %+v", effects)
	}
	expectState(t, f, id, StateRegPhoto)

	f.photo(t, id, "photo-1")
	expectState(t, f, id, StateRegNameAge)

	f.text(t, id, "Anna")
	expectState(t, f, id, StateRegNameAge)
	effects = f.text(t, id, "Anna 17")
	if !has(effects, id, "age must be between 18 and 100") {
		t.Errorf("expected age error, got %+v", effects)
	}
	expectState(t, f, id, StateRegNameAge)

	f.text(t, id, "Anna Maria 24")
	expectState(t, f, id, StateRegGender)

	f.choose(t, id, "gender:robot")
	expectState(t, f, id, StateRegGender)
	f.choose(t, id, "gender:female")
	expectState(t, f, id, StateRegCity)

	f.send(t, Event{Identity: id, Kind: EventLocation, Latitude: 55.75, Longitude: 37.62})
	expectState(t, f, id, StateRegBio)

	f.text(t, id, strings.Repeat("x", domain.MaxBioLength+1))
	expectState(t, f, id, StateRegBio)
	f.text(t, id, "Coffee and long walks")
	expectState(t, f, id, StateRegInterests)

	effects = f.choose(t, id, "tags:done")
	if !has(effects, id, "at least one interest") {
		t.Errorf("expected empty interest set to be rejected, got %+v", effects)
	}
	f.choose(t, id, "tag:coffee")
	f.choose(t, id, "tag:music")
	f.choose(t, id, "tag:coffee")
	f.choose(t, id, "tags:done")
	expectState(t, f, id, StateRegGoal)

	effects = f.choose(t, id, "goal:chat")
	if !has(effects, id, "Registration complete") {
		t.Fatalf("expected registration to complete, got %+v", effects)
	}
	expectState(t, f, id, StateIdle)

	p, err := f.profiles.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if p.DisplayName != "Anna Maria" || p.Age != 24 || p.Gender != domain.GenderFemale {
		t.Errorf("unexpected profile %+v", p)
	}
	if p.City != domain.GeolocationCity || p.Latitude == nil || *p.Latitude != 55.75 {
		t.Errorf("expected geolocation city with coordinates, got %q %v", p.City, p.Latitude)
	}
	if len(p.Interests) != 1 || p.Interests[0] != "music" || p.Goal != domain.GoalChat {
		t.Errorf("unexpected interests/goal %v %s", p.Interests, p.Goal)
	}
	if len(p.Photos) != 1 || p.Photos[0] != "photo-1" {
		t.Errorf("unexpected photos %v", p.Photos)
	}
}

func TestInterestCap(t *testing.T) {
	f := newFixture(t, true)
	const id = 1
	f.text(t, id, "/start")
	f.photo(t, id, "p")
	f.text(t, id, "Ann 30")
	f.choose(t, id, "gender:female")
	f.text(t, id, "Kazan")
	f.text(t, id, "bio")

	for _, tag := range domain.InterestVocabulary[:domain.MaxInterests] {
		f.choose(t, id, "tag:"+tag)
	}
	effects := f.choose(t, id, "tag:"+domain.InterestVocabulary[domain.MaxInterests])
	if !has(effects, id, "at most 5") {
		t.Errorf("expected cap message, got %+v", effects)
	}

	s, _ := f.sessions.Get(context.Background(), id)
	if len(s.Draft.Interests) != domain.MaxInterests {
		t.Errorf("expected %d interests, got %v", domain.MaxInterests, s.Draft.Interests)
	}
}

func TestInterestsSkippedWhenDisabled(t *testing.T) {
	f := newFixture(t, false)
	const id = 1
	f.text(t, id, "/start")
	f.photo(t, id, "p")
	f.text(t, id, "Ivan 25")
	f.choose(t, id, "gender:male")
	f.text(t, id, "Moscow")
	effects := f.text(t, id, "")
	if !has(effects, id, "Registration complete") {
		t.Fatalf("expected commit after bio, got %+v", effects)
	}
	p, err := f.profiles.GetProfile(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Goal != domain.GoalAny || len(p.Interests) != 0 || p.City != "Moscow" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestCancelClearsDraft(t *testing.T) {
	f := newFixture(t, true)
	const id = 1
	f.text(t, id, "/start")
	f.photo(t, id, "p")
	f.text(t, id, "Ivan 25")

	f.choose(t, id, "cancel")
	if f.sessions.Len() != 0 {
		t.Fatalf("expected session to be dropped, %d left", f.sessions.Len())
	}

	f.text(t, id, "/start")
	s, _ := f.sessions.Get(context.Background(), id)
	if s.State != StateRegPhoto || s.Draft.DisplayName != "" || len(s.Draft.Photos) != 0 {
		t.Errorf("expected a fresh registration, got %+v", s)
	}
}

func TestCommitFailureKeepsDraft(t *testing.T) {
	f := newFixture(t, false)
	const id = 1
	f.repo.failCreate = true

	f.text(t, id, "/start")
	f.photo(t, id, "p")
	f.text(t, id, "Ivan 25")
	f.choose(t, id, "gender:male")
	f.text(t, id, "Moscow")
	effects := f.text(t, id, "about me")
	if !has(effects, id, "Send /start to try again") {
		t.Fatalf("expected retry notice, got %+v", effects)
	}
	expectState(t, f, id, StateRegCommitFailed)

	f.text(t, id, "more text")
	expectState(t, f, id, StateRegCommitFailed)

	f.repo.failCreate = false
	effects = f.text(t, id, "/start")
	if !has(effects, id, "Registration complete") {
		t.Fatalf("expected retry to commit, got %+v", effects)
	}
	p, err := f.profiles.GetProfile(context.Background(), id)
	if err != nil || p.Bio != "about me" {
		t.Fatalf("expected buffered draft to be stored, got %+v, %v", p, err)
	}
}

func TestCommitFailureSurvivesOtherCommands(t *testing.T) {
	f := newFixture(t, false)
	const id = 1
	f.repo.failCreate = true

	f.text(t, id, "/start")
	f.photo(t, id, "p")
	f.text(t, id, "Ivan 25")
	f.choose(t, id, "gender:male")
	f.text(t, id, "Moscow")
	f.text(t, id, "about me")
	expectState(t, f, id, StateRegCommitFailed)

	effects := f.text(t, id, "/matches")
	if !has(effects, id, "finish your registration") {
		t.Errorf("expected a reminder to finish registration, got %+v", effects)
	}
	expectState(t, f, id, StateRegCommitFailed)

	f.repo.failCreate = false
	effects = f.text(t, id, "/start")
	if !has(effects, id, "Registration complete") {
		t.Fatalf("expected the buffered draft to be committed, got %+v", effects)
	}
	p, err := f.profiles.GetProfile(context.Background(), id)
	if err != nil || p.DisplayName != "Ivan" || p.Bio != "about me" {
		t.Fatalf("expected buffered draft to be stored, got %+v, %v", p, err)
	}
}

// TestRegistrationIgnoresOtherCommands sends every command except cancel at
// every registration step and expects the step and the draft to stay put.
func TestRegistrationIgnoresOtherCommands(t *testing.T) {
	steps := []struct {
		state State
		reach func(f *fixture, t *testing.T, id int64)
	}{
		{StateRegPhoto, func(f *fixture, t *testing.T, id int64) {}},
		{StateRegNameAge, func(f *fixture, t *testing.T, id int64) {
			f.photo(t, id, "p")
		}},
		{StateRegGender, func(f *fixture, t *testing.T, id int64) {
			f.text(t, id, "Ivan 25")
		}},
		{StateRegCity, func(f *fixture, t *testing.T, id int64) {
			f.choose(t, id, "gender:male")
		}},
		{StateRegBio, func(f *fixture, t *testing.T, id int64) {
			f.text(t, id, "Moscow")
		}},
		{StateRegInterests, func(f *fixture, t *testing.T, id int64) {
			f.text(t, id, "about me")
			f.choose(t, id, "tag:music")
		}},
		{StateRegGoal, func(f *fixture, t *testing.T, id int64) {
			f.choose(t, id, "tags:done")
		}},
		{StateRegCommitFailed, func(f *fixture, t *testing.T, id int64) {
			f.repo.failCreate = true
			f.choose(t, id, "goal:chat")
		}},
	}

	f := newFixture(t, true)
	f.register(t, 2, "Boris", 27, domain.GenderMale)
	names := make([]string, 0, len(f.c.commands))
	for name := range f.c.commands {
		if name != "cancel" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	const id = 1
	f.text(t, id, "/start")
	for _, step := range steps {
		step.reach(f, t, id)
		expectState(t, f, id, step.state)
		before, err := f.sessions.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}

		for _, name := range names {
			effects := f.text(t, id, "/"+name)
			if len(effects) == 0 {
				t.Errorf("%s /%s: expected a reply", step.state, name)
			}
			after, err := f.sessions.Get(context.Background(), id)
			if err != nil {
				t.Fatal(err)
			}
			if after == nil || after.State != step.state {
				t.Fatalf("%s /%s: expected state to stay, got %+v", step.state, name, after)
			}
			if !reflect.DeepEqual(after.Draft, before.Draft) {
				t.Fatalf("%s /%s: expected draft %+v, got %+v", step.state, name, before.Draft, after.Draft)
			}
		}
	}

	if _, err := f.profiles.GetProfile(context.Background(), id); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected no profile while the commit keeps failing, got %v", err)
	}
}

func TestStartWhenRegistered(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)

	effects := f.text(t, 1, "/start@nearbybot")
	if !has(effects, 1, "Welcome back, Anna") {
		t.Errorf("expected greeting, got %+v", effects)
	}
	expectState(t, f, 1, StateIdle)
}

func TestBrowseLikeAndMatch(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)
	f.register(t, 2, "Boris", 27, domain.GenderMale)

	effects := f.text(t, 1, "/browse")
	if len(effects) != 1 || effects[0].Kind != EffectShowProfile || effects[0].Card.Identity != 2 {
		t.Fatalf("expected Boris's card, got %+v", effects)
	}
	expectState(t, f, 1, StateBrowsing)

	effects = f.choose(t, 1, "like")
	if !has(effects, 1, "Like sent to Boris") || !has(effects, 2, "Someone liked you") {
		t.Errorf("expected like notices, got %+v", effects)
	}
	if !has(effects, 1, "No new people") {
		t.Errorf("expected empty feed after liking the only candidate, got %+v", effects)
	}
	expectState(t, f, 1, StateIdle)

	f.choose(t, 2, "browse")
	effects = f.choose(t, 2, "like")
	if !has(effects, 2, "It's a match with Anna") || !has(effects, 1, "It's a match with Boris") {
		t.Errorf("expected match notices for both, got %+v", effects)
	}
	if !has(effects, 2, "24h 00m") {
		t.Errorf("expected conversation window, got %+v", effects)
	}

	effects = f.text(t, 1, "/matches")
	if len(effects) != 2 || effects[1].Card == nil || effects[1].Card.Identity != 2 {
		t.Errorf("expected one match with Boris, got %+v", effects)
	}
}

func TestBrowseRequiresRegistration(t *testing.T) {
	f := newFixture(t, true)
	effects := f.text(t, 5, "/browse")
	if !has(effects, 5, "not registered") {
		t.Errorf("expected registration hint, got %+v", effects)
	}
	expectState(t, f, 5, StateIdle)
}

func TestReportFromBrowse(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)
	f.register(t, 2, "Boris", 27, domain.GenderMale)

	f.text(t, 1, "/browse")
	f.choose(t, 1, "report")
	expectState(t, f, 1, StateReportReason)

	f.text(t, 1, "   ")
	expectState(t, f, 1, StateReportReason)

	effects := f.text(t, 1, "spam")
	if !has(effects, 1, "Moderators will look into it") {
		t.Errorf("expected confirmation, got %+v", effects)
	}
	expectState(t, f, 1, StateBrowsing)

	pending, err := f.moderation.ListPendingReports(context.Background(), 10)
	if err != nil || len(pending) != 1 || pending[0].ReportedIdentity != 2 {
		t.Fatalf("expected one pending report, got %+v, %v", pending, err)
	}

	effects = f.text(t, 1, fmt.Sprintf("/resolve %d handled", pending[0].ID))
	if !has(effects, 1, "administrators only") {
		t.Errorf("expected non-admin to be refused, got %+v", effects)
	}
	effects = f.text(t, adminIdentity, fmt.Sprintf("/resolve %d handled", pending[0].ID))
	if !has(effects, adminIdentity, "marked resolved") {
		t.Errorf("expected report to be resolved, got %+v", effects)
	}
	if pending, _ := f.moderation.ListPendingReports(context.Background(), 10); len(pending) != 0 {
		t.Errorf("expected no pending reports, got %d", len(pending))
	}
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)
	ctx := context.Background()

	f.text(t, 1, "/edit")
	expectState(t, f, 1, StateEditMenu)

	f.choose(t, 1, "edit:bio")
	f.text(t, 1, "New bio")
	expectState(t, f, 1, StateEditMenu)

	for _, ref := range []string{"a", "b", "c", "d"} {
		f.choose(t, 1, "edit:photo")
		f.photo(t, 1, ref)
	}

	f.choose(t, 1, "edit:name_age")
	f.text(t, 1, "Anna K 26")

	f.choose(t, 1, "edit:done")
	expectState(t, f, 1, StateIdle)

	p, _ := f.profiles.GetProfile(ctx, 1)
	if p.Bio != "New bio" || p.DisplayName != "Anna K" || p.Age != 26 {
		t.Errorf("unexpected profile %+v", p)
	}
	if strings.Join(p.Photos, ",") != "d,c,b" {
		t.Errorf("expected photos d,c,b, got %v", p.Photos)
	}
}

func TestDeleteFlow(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)

	f.text(t, 1, "/delete")
	f.choose(t, 1, "confirm:no")
	if _, err := f.profiles.GetProfile(context.Background(), 1); err != nil {
		t.Fatalf("expected profile to survive, got %v", err)
	}

	f.text(t, 1, "/delete")
	f.choose(t, 1, "confirm:yes")
	if _, err := f.profiles.GetProfile(context.Background(), 1); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("expected profile to be deleted, got %v", err)
	}
}

func TestAdminFlow(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, 1, "Anna", 25, domain.GenderFemale)
	f.register(t, 2, "Boris", 27, domain.GenderMale)

	effects := f.text(t, 1, "/admin")
	if !has(effects, 1, "administrators only") {
		t.Errorf("expected refusal, got %+v", effects)
	}

	f.text(t, adminIdentity, "/admin")
	expectState(t, f, adminIdentity, StateAdminMenu)

	f.choose(t, adminIdentity, "admin:ban")
	f.text(t, adminIdentity, "abc")
	expectState(t, f, adminIdentity, StateAdminBan)
	effects = f.text(t, adminIdentity, "2")
	if !has(effects, adminIdentity, "2 is banned") || !has(effects, 2, "blocked") {
		t.Errorf("expected ban notices, got %+v", effects)
	}
	expectState(t, f, adminIdentity, StateAdminMenu)

	effects = f.choose(t, adminIdentity, "admin:stats")
	if !has(effects, adminIdentity, "Banned: 1") {
		t.Errorf("expected stats, got %+v", effects)
	}

	f.choose(t, adminIdentity, "admin:broadcast")
	effects = f.text(t, adminIdentity, "Maintenance at night")
	if !has(effects, 1, "Maintenance at night") || has(effects, 2, "Maintenance at night") {
		t.Errorf("expected broadcast to active users only, got %+v", effects)
	}
	if !has(effects, adminIdentity, "Sent to 1 users") {
		t.Errorf("expected summary, got %+v", effects)
	}

	f.choose(t, adminIdentity, "admin:search")
	effects = f.text(t, adminIdentity, "bor")
	if !has(effects, adminIdentity, "2 Boris, 27, Moscow [banned]") {
		t.Errorf("expected search result, got %+v", effects)
	}
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t, true)
	effects := f.text(t, 1, "/dance")
	if !has(effects, 1, "Unknown command") {
		t.Errorf("expected unknown command notice, got %+v", effects)
	}
}

type brokenSessions struct{}

func (brokenSessions) Get(context.Context, int64) (*Session, error) {
	return nil, errors.New("redis down")
}
func (brokenSessions) Save(context.Context, *Session) error { return nil }
func (brokenSessions) Delete(context.Context, int64) error  { return nil }

func TestSessionFailureIsGenericNotice(t *testing.T) {
	f := newFixture(t, true)
	f.c.sessions = brokenSessions{}

	effects, err := f.c.Handle(context.Background(), Event{Identity: 1, Kind: EventText, Text: "/start"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(effects) != 1 || effects[0].Text != genericFailure {
		t.Errorf("expected generic notice, got %+v", effects)
	}
}
