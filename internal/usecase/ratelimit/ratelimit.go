// Package ratelimit enforces the daily like quota stored on the profile row.
package ratelimit

import (
	"context"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

// Policy holds the daily like limits. A zero limit means unlimited.
type Policy struct {
	DailyLimit        int
	PremiumDailyLimit int
}

func (p Policy) LimitFor(profile *domain.Profile) int {
	if profile.IsPremium {
		return p.PremiumDailyLimit
	}
	return p.DailyLimit
}

type Limiter struct {
	profileRepo repository.ProfileRepository
	policy      Policy
	location    *time.Location
	now         func() time.Time
}

func NewLimiter(profileRepo repository.ProfileRepository, policy Policy, location *time.Location) *Limiter {
	if location == nil {
		location = time.UTC
	}
	return &Limiter{
		profileRepo: profileRepo,
		policy:      policy,
		location:    location,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Today is the quota day in the configured timezone.
func (l *Limiter) Today() time.Time {
	t := l.now().In(l.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResetIfStale zeroes the counter when it was last reset on another day.
func (l *Limiter) ResetIfStale(ctx context.Context, profile *domain.Profile) error {
	if err := l.profileRepo.ResetLikesIfStale(ctx, profile.ID, l.Today()); err != nil {
		return domain.WrapStorage("ratelimit.reset", err)
	}
	return nil
}

// TryConsume charges one like against the profile's quota. It must run in the
// same transaction as the like it pays for.
func (l *Limiter) TryConsume(ctx context.Context, profile *domain.Profile) (bool, error) {
	ok, err := l.profileRepo.TryConsumeLike(ctx, profile.ID, l.policy.LimitFor(profile))
	if err != nil {
		return false, domain.WrapStorage("ratelimit.consume", err)
	}
	return ok, nil
}

// Remaining returns the likes left today, or nil when the profile is unlimited.
// profile must have been read after ResetIfStale.
func (l *Limiter) Remaining(profile *domain.Profile) *int {
	limit := l.policy.LimitFor(profile)
	if limit <= 0 {
		return nil
	}
	used := profile.LikesGivenToday
	if profile.LastResetDate == nil || !sameDay(*profile.LastResetDate, l.Today()) {
		used = 0
	}
	left := limit - used
	if left < 0 {
		left = 0
	}
	return &left
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
