package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

func TestParseNameAge(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		age     int
		wantErr error
	}{
		{"Anna 24", "Anna", 24, nil},
		{"Ivan Petrov 30", "Ivan Petrov", 30, nil},
		{"  Maria   18 ", "Maria", 18, nil},
		{"Anna", "", 0, errNameAgeFormat},
		{"Anna twenty", "", 0, errNameAgeFormat},
		{"Anna 17", "", 0, domain.ErrValidation},
		{"Anna 101", "", 0, domain.ErrValidation},
	}
	for _, tt := range tests {
		name, age, err := parseNameAge(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%q: expected %v, got %v", tt.in, tt.wantErr, err)
			}
			continue
		}
		if err != nil || name != tt.name || age != tt.age {
			t.Errorf("%q: expected (%q, %d), got (%q, %d, %v)", tt.in, tt.name, tt.age, name, age, err)
		}
	}
}

func TestCommandToken(t *testing.T) {
	tests := []struct {
		in, name, args string
		ok             bool
	}{
		{"/start", "start", "", true},
		{"/Start@nearbybot", "start", "", true},
		{"/resolve 12 handled now", "resolve", "12 handled now", true},
		{"start", "", "", false},
		{"/", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := commandToken(tt.in)
		if name != tt.name || args != tt.args || ok != tt.ok {
			t.Errorf("%q: expected (%q, %q, %v), got (%q, %q, %v)", tt.in, tt.name, tt.args, tt.ok, name, args, ok)
		}
	}
}

func TestNormalizeComposesText(t *testing.T) {
	if got := normalize(" Ame\u0301lie 25 "); got != "Am\u00e9lie 25" {
		t.Errorf("expected composed form, got %q", got)
	}
}

func TestToggleAndPushPhoto(t *testing.T) {
	set, full := toggle([]string{"a", "b"}, "a", 2)
	if full || len(set) != 1 || set[0] != "b" {
		t.Errorf("expected removal, got %v %v", set, full)
	}
	set, full = toggle([]string{"a", "b"}, "c", 2)
	if !full || len(set) != 2 {
		t.Errorf("expected cap to refuse, got %v %v", set, full)
	}

	photos := pushPhoto([]string{"a", "b", "c"}, "b", 3)
	if len(photos) != 3 || photos[0] != "b" || photos[1] != "a" || photos[2] != "c" {
		t.Errorf("expected b,a,c, got %v", photos)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(time.Hour).WithClock(func() time.Time { return now })

	_ = store.Save(ctx, &Session{Identity: 1, State: StateRegBio, Draft: Draft{Photos: []string{"p"}}})
	_ = store.Save(ctx, &Session{Identity: 2, State: StateBrowsing})

	got, _ := store.Get(ctx, 1)
	got.Draft.Photos[0] = "changed"
	again, _ := store.Get(ctx, 1)
	if again.Draft.Photos[0] != "p" {
		t.Errorf("expected stored session to be isolated from callers")
	}

	now = now.Add(30 * time.Minute)
	_ = store.Save(ctx, &Session{Identity: 2, State: StateBrowsing})

	now = now.Add(45 * time.Minute)
	if removed := store.GC(); removed != 1 {
		t.Errorf("expected 1 session collected, got %d", removed)
	}
	if s, _ := store.Get(ctx, 1); s != nil {
		t.Errorf("expected session 1 to be gone")
	}
	if s, _ := store.Get(ctx, 2); s == nil {
		t.Errorf("expected session 2 to survive")
	}
}
