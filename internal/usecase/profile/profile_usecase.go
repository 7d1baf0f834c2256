package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/go-playground/validator/v10"
)

const SearchLimit = 20

// Defaults fill the search preferences a new profile does not set.
type Defaults struct {
	SearchAgeMin   int
	SearchAgeMax   int
	SearchRadiusKm int
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	likeRepo    repository.LikeRepository
	matchRepo   repository.MatchRepository
	viewRepo    repository.ViewRepository
	defaults    Defaults
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	likeRepo repository.LikeRepository,
	matchRepo repository.MatchRepository,
	viewRepo repository.ViewRepository,
	defaults Defaults,
	logger *slog.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		likeRepo:    likeRepo,
		matchRepo:   matchRepo,
		viewRepo:    viewRepo,
		defaults:    defaults,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (uc *ProfileUseCase) WithClock(now func() time.Time) *ProfileUseCase {
	uc.now = now
	return uc
}

// CreateProfile validates p, fills defaults and stores it as a new active profile.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.City = strings.TrimSpace(p.City)
	p.Bio = strings.TrimSpace(p.Bio)
	if p.SearchGender == "" {
		p.SearchGender = domain.GenderAny
	}
	if p.SearchAgeMin == 0 {
		p.SearchAgeMin = uc.defaults.SearchAgeMin
	}
	if p.SearchAgeMax == 0 {
		p.SearchAgeMax = uc.defaults.SearchAgeMax
	}
	if p.SearchRadiusKm == 0 {
		p.SearchRadiusKm = uc.defaults.SearchRadiusKm
	}
	if p.Goal == "" {
		p.Goal = domain.GoalAny
	}
	if p.Photos == nil {
		p.Photos = domain.StringList{}
	}
	if p.Interests == nil {
		p.Interests = domain.StringList{}
	}
	p.IsActive = true
	p.IsBanned = false

	if err := uc.Validate(p); err != nil {
		return nil, err
	}

	if err := uc.profileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrProfileAlreadyExists) {
			return nil, err
		}
		uc.logger.Error("create profile failed", "identity", p.Identity, "error", err)
		return nil, domain.WrapStorage("profile.create", err)
	}

	uc.logger.Info("profile created", "identity", p.Identity, "profile_id", p.ID)
	return p, nil
}

// Validate checks every field rule of a profile record.
func (uc *ProfileUseCase) Validate(p *domain.Profile) error {
	if p.Identity == 0 {
		return domain.NewValidationError("identity", "is required")
	}
	if err := uc.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return domain.NewValidationError("", err.Error())
	}
	for _, tag := range p.Interests {
		if !domain.IsKnownInterest(tag) {
			return domain.NewValidationError("interests", fmt.Sprintf("unknown interest %q", tag))
		}
	}
	seen := map[string]bool{}
	for _, tag := range p.Interests {
		if seen[tag] {
			return domain.NewValidationError("interests", fmt.Sprintf("duplicate interest %q", tag))
		}
		seen[tag] = true
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "min", "max":
		return domain.NewValidationError(field, fmt.Sprintf("violates %s=%s", fe.Tag(), fe.Param()))
	case "oneof":
		return domain.NewValidationError(field, fmt.Sprintf("must be one of: %s", fe.Param()))
	case "gtefield":
		return domain.NewValidationError(field, "must not be below "+toSnake(fe.Param()))
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GetProfile returns the profile for identity or domain.ErrProfileNotFound.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, identity int64) (*domain.Profile, error) {
	p, err := uc.profileRepo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return nil, domain.WrapStorage("profile.get", err)
	}
	return p, nil
}

// UpdateProfile applies a partial update. It returns false without error when the
// identity has no profile; callers must check.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, identity int64, update *domain.ProfileUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}

	current, err := uc.profileRepo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return false, nil
		}
		return false, domain.WrapStorage("profile.update", err)
	}

	candidate := *current
	update.Apply(&candidate)
	if err := uc.Validate(&candidate); err != nil {
		return false, err
	}

	ok, err := uc.profileRepo.Update(ctx, identity, update)
	if err != nil {
		uc.logger.Error("update profile failed", "identity", identity, "error", err)
		return false, domain.WrapStorage("profile.update", err)
	}
	return ok, nil
}

func (uc *ProfileUseCase) BanProfile(ctx context.Context, identity int64) (bool, error) {
	return uc.setBanned(ctx, identity, true)
}

func (uc *ProfileUseCase) UnbanProfile(ctx context.Context, identity int64) (bool, error) {
	return uc.setBanned(ctx, identity, false)
}

// ToggleBan flips the ban flag atomically and returns the new value.
func (uc *ProfileUseCase) ToggleBan(ctx context.Context, identity int64) (bool, error) {
	banned, err := uc.profileRepo.ToggleBanned(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return false, err
		}
		uc.logger.Error("toggle ban failed", "identity", identity, "error", err)
		return false, domain.WrapStorage("profile.ban", err)
	}
	uc.logger.Info("profile ban changed", "identity", identity, "banned", banned)
	return banned, nil
}

// SetPremium grants or revokes premium; domain.ErrProfileNotFound when absent.
func (uc *ProfileUseCase) SetPremium(ctx context.Context, identity int64, premium bool) error {
	ok, err := uc.UpdateProfile(ctx, identity, &domain.ProfileUpdate{IsPremium: &premium})
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProfileNotFound
	}
	uc.logger.Info("profile premium changed", "identity", identity, "premium", premium)
	return nil
}

func (uc *ProfileUseCase) setBanned(ctx context.Context, identity int64, banned bool) (bool, error) {
	ok, err := uc.profileRepo.SetBanned(ctx, identity, banned)
	if err != nil {
		uc.logger.Error("set banned failed", "identity", identity, "banned", banned, "error", err)
		return false, domain.WrapStorage("profile.ban", err)
	}
	if ok {
		uc.logger.Info("profile ban changed", "identity", identity, "banned", banned)
	}
	return ok, nil
}

// DeleteProfile removes the profile and everything referencing it.
func (uc *ProfileUseCase) DeleteProfile(ctx context.Context, identity int64) error {
	if err := uc.profileRepo.Delete(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}
		uc.logger.Error("delete profile failed", "identity", identity, "error", err)
		return domain.WrapStorage("profile.delete", err)
	}
	uc.logger.Info("profile deleted", "identity", identity)
	return nil
}

// SearchProfiles matches identity exactly or name/username as a substring, capped at 20.
func (uc *ProfileUseCase) SearchProfiles(ctx context.Context, term string) ([]*domain.Profile, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Profile{}, nil
	}
	profiles, err := uc.profileRepo.Search(ctx, term, SearchLimit)
	if err != nil {
		return nil, domain.WrapStorage("profile.search", err)
	}
	return profiles, nil
}

func (uc *ProfileUseCase) ListRecent(ctx context.Context, limit int) ([]*domain.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	profiles, err := uc.profileRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.WrapStorage("profile.list_recent", err)
	}
	return profiles, nil
}

// TouchLastSeen is best-effort: failures are logged only.
func (uc *ProfileUseCase) TouchLastSeen(ctx context.Context, identity int64) {
	if err := uc.profileRepo.TouchLastSeen(ctx, identity, uc.now()); err != nil {
		uc.logger.Warn("touch last seen failed", "identity", identity, "error", err)
	}
}

func (uc *ProfileUseCase) Stats(ctx context.Context, identity int64) (*domain.ProfileStats, error) {
	p, err := uc.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	stats := &domain.ProfileStats{
		LikesGivenToday:    p.LikesGivenToday,
		LikesReceivedTotal: p.LikesReceivedTotal,
	}
	if stats.LikesGiven, err = uc.likeRepo.CountGiven(ctx, p.ID); err != nil {
		return nil, domain.WrapStorage("profile.stats", err)
	}
	if stats.LikesReceived, err = uc.likeRepo.CountReceived(ctx, p.ID); err != nil {
		return nil, domain.WrapStorage("profile.stats", err)
	}
	if stats.ActiveMatches, err = uc.matchRepo.CountActive(ctx, p.ID, uc.now()); err != nil {
		return nil, domain.WrapStorage("profile.stats", err)
	}
	if stats.ProfileViews, err = uc.viewRepo.CountViewsOf(ctx, p.ID); err != nil {
		return nil, domain.WrapStorage("profile.stats", err)
	}
	return stats, nil
}

func (uc *ProfileUseCase) Completion(ctx context.Context, identity int64) (*domain.ProfileCompletion, error) {
	p, err := uc.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	c := p.Completion()
	return &c, nil
}
