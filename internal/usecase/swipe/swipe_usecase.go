package swipe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ratelimit"
	"github.com/google/uuid"
)

// IcebreakerSuggester proposes an opening line for a fresh match.
type IcebreakerSuggester interface {
	SuggestIcebreaker(ctx context.Context, from, to *domain.Profile) (string, error)
}

type Config struct {
	ConversationDuration        time.Duration
	PremiumConversationDuration time.Duration
	IcebreakerTimeout           time.Duration
}

type SwipeUseCase struct {
	txManager   repository.TxManager
	profileRepo repository.ProfileRepository
	matchRepo   repository.MatchRepository
	ledger      *ledger.Ledger
	limiter     *ratelimit.Limiter
	icebreaker  IcebreakerSuggester
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

func NewSwipeUseCase(
	txManager repository.TxManager,
	profileRepo repository.ProfileRepository,
	matchRepo repository.MatchRepository,
	ledger *ledger.Ledger,
	limiter *ratelimit.Limiter,
	icebreaker IcebreakerSuggester,
	cfg Config,
	logger *slog.Logger,
) *SwipeUseCase {
	if cfg.ConversationDuration <= 0 {
		cfg.ConversationDuration = 24 * time.Hour
	}
	if cfg.PremiumConversationDuration <= 0 {
		cfg.PremiumConversationDuration = cfg.ConversationDuration
	}
	if cfg.IcebreakerTimeout <= 0 {
		cfg.IcebreakerTimeout = 5 * time.Second
	}
	return &SwipeUseCase{
		txManager:   txManager,
		profileRepo: profileRepo,
		matchRepo:   matchRepo,
		ledger:      ledger,
		limiter:     limiter,
		icebreaker:  icebreaker,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (uc *SwipeUseCase) WithClock(now func() time.Time) *SwipeUseCase {
	uc.now = now
	return uc
}

func (uc *SwipeUseCase) conversationDuration(a, b *domain.Profile) time.Duration {
	if a.IsPremium || b.IsPremium {
		return uc.cfg.PremiumConversationDuration
	}
	return uc.cfg.ConversationDuration
}

// SubmitLike records a like from one identity to another and turns a
// reciprocated like into a match. Quota, edge, counters and match are written
// in one transaction.
func (uc *SwipeUseCase) SubmitLike(ctx context.Context, fromIdentity, toIdentity int64) (*domain.LikeResult, error) {
	if fromIdentity == toIdentity {
		return nil, domain.ErrCannotLikeSelf
	}

	from, err := uc.profileRepo.GetByIdentity(ctx, fromIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, domain.WrapStorage("swipe.liker", err)
	}
	if from.IsBanned {
		return nil, domain.ErrProfileBanned
	}
	to, err := uc.profileRepo.GetByIdentity(ctx, toIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		return nil, domain.WrapStorage("swipe.target", err)
	}
	if !to.IsAvailable() {
		return nil, domain.ErrProfileNotFound
	}

	var (
		result  *domain.LikeResult
		created bool
	)
	err = uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, created, err = uc.submitLikeTx(ctx, from.ID, to.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) || errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		uc.logger.Error("submit like failed", "from", fromIdentity, "to", toIdentity, "error", err)
		return nil, domain.WrapStorage("swipe.submit_like", err)
	}

	switch {
	case created:
		uc.logger.Info("match created", "match_id", result.Match.ID, "from", fromIdentity, "to", toIdentity)
		result.Icebreaker = uc.suggestIcebreaker(ctx, from, to)
	case result.Duplicate:
		uc.logger.Debug("duplicate like ignored", "from", fromIdentity, "to", toIdentity)
	}
	return result, nil
}

// submitLikeTx runs inside the transaction. created reports a new match row.
func (uc *SwipeUseCase) submitLikeTx(ctx context.Context, fromID, toID int64) (*domain.LikeResult, bool, error) {
	from, to, err := uc.profileRepo.LockPair(ctx, fromID, toID)
	if err != nil {
		return nil, false, err
	}
	now := uc.now()
	card := domain.NewCard(to, from)

	existing, err := uc.matchRepo.GetActiveByUsers(ctx, from.ID, to.ID, now)
	switch {
	case err == nil:
		return &domain.LikeResult{Outcome: domain.LikeMutual, Target: card, Match: existing, AlreadyMatched: true}, false, nil
	case !errors.Is(err, domain.ErrMatchNotFound):
		return nil, false, err
	}

	duplicate, err := uc.ledger.HasLike(ctx, from.ID, to.ID)
	if err != nil {
		return nil, false, err
	}
	if duplicate {
		return &domain.LikeResult{Outcome: domain.LikeSent, Target: card, Duplicate: true}, false, nil
	}

	if err := uc.limiter.ResetIfStale(ctx, from); err != nil {
		return nil, false, err
	}
	allowed, err := uc.limiter.TryConsume(ctx, from)
	if err != nil {
		return nil, false, err
	}
	if !allowed {
		return nil, false, domain.ErrQuotaExceeded
	}

	if _, err := uc.ledger.RecordLike(ctx, from.ID, to.ID); err != nil {
		return nil, false, err
	}
	if err := uc.profileRepo.IncrementLikesReceived(ctx, to.ID); err != nil {
		return nil, false, err
	}

	result := &domain.LikeResult{Outcome: domain.LikeSent, Target: card}
	charged, err := uc.profileRepo.GetByID(ctx, from.ID)
	if err != nil {
		uc.logger.Warn("likes left lookup failed", "profile_id", from.ID, "error", err)
	} else {
		result.LikesLeft = uc.limiter.Remaining(charged)
	}

	reciprocal, err := uc.ledger.HasLike(ctx, to.ID, from.ID)
	if err != nil {
		return nil, false, err
	}
	if !reciprocal {
		return result, false, nil
	}

	if err := uc.matchRepo.DeactivateExpiredPair(ctx, from.ID, to.ID, now); err != nil {
		return nil, false, err
	}
	match := domain.NewMatch(from.ID, to.ID, now, uc.conversationDuration(from, to))
	created, err := uc.matchRepo.Create(ctx, match)
	if err != nil {
		return nil, false, err
	}
	if !created {
		if match, err = uc.matchRepo.GetActiveByUsers(ctx, from.ID, to.ID, now); err != nil {
			return nil, false, err
		}
	}
	if err := uc.ledger.ConsumePair(ctx, from.ID, to.ID); err != nil {
		return nil, false, err
	}

	result.Outcome = domain.LikeMutual
	result.Match = match
	result.AlreadyMatched = !created
	return result, created, nil
}

func (uc *SwipeUseCase) suggestIcebreaker(ctx context.Context, from, to *domain.Profile) string {
	if uc.icebreaker == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.IcebreakerTimeout)
	defer cancel()

	line, err := uc.icebreaker.SuggestIcebreaker(ctx, from, to)
	if err != nil {
		uc.logger.Warn("icebreaker suggestion failed", "from", from.Identity, "to", to.Identity, "error", err)
		return ""
	}
	return line
}

// ActiveMatches lists the live matches of identity with each partner's card.
// Expired rows are filtered at read time even when still flagged active.
func (uc *SwipeUseCase) ActiveMatches(ctx context.Context, identity int64) ([]*domain.MatchSummary, error) {
	me, err := uc.viewer(ctx, identity)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	matches, err := uc.matchRepo.GetActiveMatches(ctx, me.ID, now)
	if err != nil {
		return nil, domain.WrapStorage("swipe.active_matches", err)
	}

	summaries := make([]*domain.MatchSummary, 0, len(matches))
	for _, m := range matches {
		partner, err := uc.profileRepo.GetByID(ctx, m.GetOtherUserID(me.ID))
		if err != nil {
			uc.logger.Warn("match partner lookup failed", "match_id", m.ID, "error", err)
			continue
		}
		summaries = append(summaries, &domain.MatchSummary{
			Match:    m,
			Partner:  domain.NewCard(partner, me),
			TimeLeft: m.ExpiresAt.Sub(now),
		})
	}
	return summaries, nil
}

// CloseMatch ends a match early. Only a participant may close it.
func (uc *SwipeUseCase) CloseMatch(ctx context.Context, identity int64, matchID uuid.UUID) error {
	me, err := uc.viewer(ctx, identity)
	if err != nil {
		return err
	}
	m, err := uc.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return err
		}
		return domain.WrapStorage("swipe.close_match", err)
	}
	if !m.HasUser(me.ID) {
		return domain.ErrMatchNotFound
	}
	if err := uc.matchRepo.UpdateStatus(ctx, m.ID, false); err != nil {
		return domain.WrapStorage("swipe.close_match", err)
	}
	uc.logger.Info("match closed", "match_id", m.ID, "by", identity)
	return nil
}

// SweepExpired flips expired matches to inactive. Reads never depend on it.
func (uc *SwipeUseCase) SweepExpired(ctx context.Context) (int64, error) {
	n, err := uc.matchRepo.ExpireBefore(ctx, uc.now())
	if err != nil {
		return 0, domain.WrapStorage("swipe.sweep", err)
	}
	return n, nil
}

// LikesReceived lists who liked identity and is still waiting for an answer.
func (uc *SwipeUseCase) LikesReceived(ctx context.Context, identity int64, limit int) ([]*domain.ReceivedLike, error) {
	me, err := uc.viewer(ctx, identity)
	if err != nil {
		return nil, err
	}
	likes, err := uc.ledger.LikesReceived(ctx, me.ID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ReceivedLike, 0, len(likes))
	for _, like := range likes {
		from, err := uc.profileRepo.GetByID(ctx, like.FromUserID)
		if err != nil {
			continue
		}
		out = append(out, &domain.ReceivedLike{From: domain.NewCard(from, me), CreatedAt: like.CreatedAt})
	}
	return out, nil
}

func (uc *SwipeUseCase) viewer(ctx context.Context, identity int64) (*domain.Profile, error) {
	p, err := uc.profileRepo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrNotRegistered
		}
		return nil, domain.WrapStorage("swipe.viewer", err)
	}
	return p, nil
}
