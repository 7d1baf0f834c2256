package moderation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
)

const maxBroadcastLength = 4000

type ModerationUseCase struct {
	profiles    *profile.ProfileUseCase
	ledger      *ledger.Ledger
	profileRepo repository.ProfileRepository
	messageRepo repository.AdminMessageRepository
	location    *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

func NewModerationUseCase(
	profiles *profile.ProfileUseCase,
	ledger *ledger.Ledger,
	profileRepo repository.ProfileRepository,
	messageRepo repository.AdminMessageRepository,
	location *time.Location,
	logger *slog.Logger,
) *ModerationUseCase {
	if location == nil {
		location = time.UTC
	}
	return &ModerationUseCase{
		profiles:    profiles,
		ledger:      ledger,
		profileRepo: profileRepo,
		messageRepo: messageRepo,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (uc *ModerationUseCase) WithClock(now func() time.Time) *ModerationUseCase {
	uc.now = now
	return uc
}

func (uc *ModerationUseCase) ListPendingReports(ctx context.Context, limit int) ([]*domain.ReportView, error) {
	return uc.ledger.ListPendingReports(ctx, limit)
}

func (uc *ModerationUseCase) Resolve(ctx context.Context, reportID int64, status domain.ReportStatus, note string) error {
	return uc.ledger.Resolve(ctx, reportID, status, note)
}

// Ban bans identity; domain.ErrProfileNotFound when it has no profile.
func (uc *ModerationUseCase) Ban(ctx context.Context, identity int64) error {
	ok, err := uc.profiles.BanProfile(ctx, identity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (uc *ModerationUseCase) Unban(ctx context.Context, identity int64) error {
	ok, err := uc.profiles.UnbanProfile(ctx, identity)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrProfileNotFound
	}
	return nil
}

// ToggleBan flips the ban flag and returns the new state.
func (uc *ModerationUseCase) ToggleBan(ctx context.Context, identity int64) (bool, error) {
	return uc.profiles.ToggleBan(ctx, identity)
}

func (uc *ModerationUseCase) GrantPremium(ctx context.Context, identity int64) error {
	return uc.profiles.SetPremium(ctx, identity, true)
}

func (uc *ModerationUseCase) RevokePremium(ctx context.Context, identity int64) error {
	return uc.profiles.SetPremium(ctx, identity, false)
}

func (uc *ModerationUseCase) Search(ctx context.Context, term string) ([]*domain.Profile, error) {
	return uc.profiles.SearchProfiles(ctx, term)
}

// Stats counts profiles; "registered today" starts at local midnight.
func (uc *ModerationUseCase) Stats(ctx context.Context) (*domain.ProfileCounts, error) {
	t := uc.now().In(uc.location)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, uc.location)

	counts, err := uc.profileRepo.Counts(ctx, midnight)
	if err != nil {
		return nil, domain.WrapStorage("moderation.stats", err)
	}
	return counts, nil
}

// Broadcast logs an admin message and returns who the transport should deliver it to.
func (uc *ModerationUseCase) Broadcast(ctx context.Context, adminIdentity int64, text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "is required")
	}
	if len([]rune(text)) > maxBroadcastLength {
		return nil, domain.NewValidationError("text", "is too long")
	}

	recipients, err := uc.profileRepo.ListReachableIdentities(ctx)
	if err != nil {
		return nil, domain.WrapStorage("moderation.broadcast", err)
	}

	msg := &domain.AdminMessage{AdminID: adminIdentity, Text: text, Recipients: len(recipients)}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		uc.logger.Error("log broadcast failed", "admin", adminIdentity, "error", err)
		return nil, domain.WrapStorage("moderation.broadcast", err)
	}

	uc.logger.Info("broadcast queued", "admin", adminIdentity, "message_id", msg.ID, "recipients", len(recipients))
	return recipients, nil
}
