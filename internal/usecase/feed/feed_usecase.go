package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
)

type RadiusPolicy string

const (
	// RadiusInformational only annotates distance.
	RadiusInformational RadiusPolicy = "informational"
	// RadiusStrict drops candidates with known coordinates outside the viewer's radius.
	RadiusStrict RadiusPolicy = "strict"
)

const selectAttempts = 2

type FeedUseCase struct {
	profileRepo  repository.ProfileRepository
	ledger       *ledger.Ledger
	radiusPolicy RadiusPolicy
	logger       *slog.Logger
	now          func() time.Time
	intN         func(n int) int
}

func NewFeedUseCase(
	profileRepo repository.ProfileRepository,
	ledger *ledger.Ledger,
	radiusPolicy RadiusPolicy,
	logger *slog.Logger,
) *FeedUseCase {
	return &FeedUseCase{
		profileRepo:  profileRepo,
		ledger:       ledger,
		radiusPolicy: radiusPolicy,
		logger:       logger,
		now:          time.Now,
		intN:         rand.IntN,
	}
}

// WithClock replaces the time source.
func (uc *FeedUseCase) WithClock(now func() time.Time) *FeedUseCase {
	uc.now = now
	return uc
}

// WithRand replaces the uniform offset source. intN must return a value in [0, n).
func (uc *FeedUseCase) WithRand(intN func(n int) int) *FeedUseCase {
	uc.intN = intN
	return uc
}

// Candidate is the next profile to show with its display card.
type Candidate struct {
	Profile *domain.Profile `json:"-"`
	Card    *domain.Card    `json:"card"`
}

// NextCandidate picks one eligible profile for the viewer uniformly at random
// and records the view.
func (uc *FeedUseCase) NextCandidate(ctx context.Context, viewerIdentity int64) (*Candidate, error) {
	viewer, err := uc.profileRepo.GetByIdentity(ctx, viewerIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, domain.WrapStorage("feed.viewer", err)
	}
	if viewer.IsBanned {
		return nil, domain.ErrProfileBanned
	}

	filter := uc.filterFor(viewer)

	var candidate *domain.Profile
	for attempt := 0; attempt < selectAttempts && candidate == nil; attempt++ {
		n, err := uc.profileRepo.CountCandidates(ctx, filter)
		if err != nil {
			uc.logger.Error("count candidates failed", "viewer", viewerIdentity, "error", err)
			return nil, domain.WrapStorage("feed.count", err)
		}
		if n == 0 {
			return nil, domain.ErrNoCandidate
		}

		candidate, err = uc.profileRepo.CandidateAt(ctx, filter, uc.intN(n))
		if err != nil && !errors.Is(err, domain.ErrNoCandidate) {
			uc.logger.Error("fetch candidate failed", "viewer", viewerIdentity, "error", err)
			return nil, domain.WrapStorage("feed.fetch", err)
		}
	}
	if candidate == nil {
		return nil, domain.ErrNoCandidate
	}

	uc.ledger.RecordView(ctx, viewer.ID, candidate.ID)

	return &Candidate{
		Profile: candidate,
		Card:    domain.NewCard(candidate, viewer),
	}, nil
}

func (uc *FeedUseCase) filterFor(viewer *domain.Profile) repository.CandidateFilter {
	filter := repository.CandidateFilter{
		ViewerID: viewer.ID,
		AgeMin:   viewer.SearchAgeMin,
		AgeMax:   viewer.SearchAgeMax,
		Gender:   viewer.SearchGender,
		Now:      uc.now(),
	}
	if uc.radiusPolicy == RadiusStrict && viewer.HasLocation() && viewer.SearchRadiusKm > 0 {
		filter.Radius = &repository.RadiusFilter{
			Latitude:  *viewer.Latitude,
			Longitude: *viewer.Longitude,
			Km:        float64(viewer.SearchRadiusKm),
		}
	}
	return filter
}
