package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/usecase/feed"
	"github.com/gdugdh24/nearby-backend/internal/usecase/ledger"
	"github.com/gdugdh24/nearby-backend/internal/usecase/moderation"
	"github.com/gdugdh24/nearby-backend/internal/usecase/profile"
	"github.com/gdugdh24/nearby-backend/internal/usecase/swipe"
)

const genericFailure = "Something went wrong on our side. Please try again later."

type stepFunc func(ctx context.Context, s *Session, ev Event) ([]Effect, error)

type commandFunc func(ctx context.Context, s *Session, args string) ([]Effect, error)

type Options struct {
	Admins           []int64
	CollectInterests bool
}

// Controller drives the conversational flows. Each event is looked up first in
// the command registry and then in the (state, input shape) transition table.
type Controller struct {
	profiles   *profile.ProfileUseCase
	feed       *feed.FeedUseCase
	swipe      *swipe.SwipeUseCase
	ledger     *ledger.Ledger
	moderation *moderation.ModerationUseCase
	sessions   SessionStore
	opts       Options
	logger     *slog.Logger

	table    map[State]map[InputShape]stepFunc
	commands map[string]commandFunc
}

func NewController(
	profiles *profile.ProfileUseCase,
	feed *feed.FeedUseCase,
	swipe *swipe.SwipeUseCase,
	ledger *ledger.Ledger,
	moderation *moderation.ModerationUseCase,
	sessions SessionStore,
	opts Options,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		profiles:   profiles,
		feed:       feed,
		swipe:      swipe,
		ledger:     ledger,
		moderation: moderation,
		sessions:   sessions,
		opts:       opts,
		logger:     logger,
	}

	c.table = map[State]map[InputShape]stepFunc{
		StateRegPhoto:       {ShapePhoto: c.regPhoto},
		StateRegNameAge:     {ShapeText: c.regNameAge},
		StateRegGender:      {ShapeChoice: c.regGender},
		StateRegCity:        {ShapeText: c.regCity, ShapeLocation: c.regCity},
		StateRegBio:         {ShapeText: c.regBio},
		StateRegInterests:   {ShapeChoice: c.regInterests},
		StateRegGoal:        {ShapeChoice: c.regGoal},
		StateEditMenu:       {ShapeChoice: c.editMenu},
		StateEditNameAge:    {ShapeText: c.editNameAge},
		StateEditBio:        {ShapeText: c.editBio},
		StateEditPhoto:      {ShapePhoto: c.editPhoto},
		StateEditCity:       {ShapeText: c.editCity, ShapeLocation: c.editCity},
		StateBrowsing:       {ShapeChoice: c.browseAction},
		StateReportReason:   {ShapeText: c.reportReason},
		StateDeleteConfirm:  {ShapeChoice: c.deleteConfirm},
		StateAdminMenu:      {ShapeChoice: c.adminMenu},
		StateAdminSearch:    {ShapeText: c.adminSearch},
		StateAdminBan:       {ShapeText: c.adminBan},
		StateAdminBroadcast: {ShapeText: c.adminBroadcast},
	}

	c.commands = map[string]commandFunc{
		"start":   c.cmdStart,
		"cancel":  c.cmdCancel,
		"help":    c.cmdHelp,
		"browse":  c.cmdBrowse,
		"profile": c.cmdProfile,
		"edit":    c.cmdEdit,
		"matches": c.cmdMatches,
		"likes":   c.cmdLikes,
		"stats":   c.cmdStats,
		"delete":  c.cmdDelete,
		"admin":   c.cmdAdmin,
		"resolve": c.cmdResolve,
		"dismiss": c.cmdDismiss,
	}
	return c
}

// Handle processes one inbound event and returns the effects to render.
// User mistakes become re-prompts; the only error returned is a storage
// failure, and the effects then already carry a generic notice.
func (c *Controller) Handle(ctx context.Context, ev Event) ([]Effect, error) {
	ev.Text = normalize(ev.Text)
	ev.Choice = strings.ToLower(normalize(ev.Choice))
	ev.PhotoRef = strings.TrimSpace(ev.PhotoRef)

	s, err := c.sessions.Get(ctx, ev.Identity)
	if err != nil {
		return c.fail(ev.Identity, "flow.session_get", err)
	}
	if s == nil {
		s = &Session{Identity: ev.Identity, State: StateIdle}
	}
	if ev.Username != nil {
		s.Username = ev.Username
	}

	effects, err := c.dispatch(ctx, s, ev)
	if err != nil {
		return c.fail(ev.Identity, "flow.handle", err)
	}

	if s.State == StateIdle {
		err = c.sessions.Delete(ctx, s.Identity)
	} else {
		err = c.sessions.Save(ctx, s)
	}
	if err != nil {
		return c.fail(ev.Identity, "flow.session_save", err)
	}
	return effects, nil
}

func (c *Controller) dispatch(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	if name, args, ok := c.command(ev); ok {
		cmd, found := c.commands[name]
		if !found {
			return []Effect{Notify(s.Identity, "Unknown command. Send /help to see what I can do.")}, nil
		}
		if s.State.IsRegistration() && !allowedDuringRegistration[name] {
			return []Effect{
				Notify(s.Identity, "Please finish your registration first, or send /cancel to stop."),
				c.prompt(s),
			}, nil
		}
		return cmd(ctx, s, args)
	}

	if step, ok := c.table[s.State][ev.Shape()]; ok {
		return step(ctx, s, ev)
	}
	return c.unexpected(s), nil
}

// allowedDuringRegistration lists the commands that leave a registration
// draft alone or end it explicitly.
var allowedDuringRegistration = map[string]bool{
	"start":  true,
	"cancel": true,
	"help":   true,
}

// command recognises "/name args" text and bare command names sent as choices.
func (c *Controller) command(ev Event) (string, string, bool) {
	switch ev.Kind {
	case EventText:
		return commandToken(ev.Text)
	case EventChoice:
		if _, ok := c.commands[ev.Choice]; ok {
			return ev.Choice, "", true
		}
	}
	return "", "", false
}

func (c *Controller) fail(identity int64, op string, err error) ([]Effect, error) {
	c.logger.Error("flow step failed", "op", op, "identity", identity, "error", err)
	return []Effect{Notify(identity, genericFailure)}, domain.WrapStorage(op, err)
}

func (c *Controller) isAdmin(identity int64) bool {
	for _, id := range c.opts.Admins {
		if id == identity {
			return true
		}
	}
	return false
}

// unexpected answers input of the wrong shape for the current state.
func (c *Controller) unexpected(s *Session) []Effect {
	if s.State == StateIdle {
		return []Effect{c.prompt(s)}
	}
	return []Effect{Notify(s.Identity, "That is not what I asked for."), c.prompt(s)}
}

// invalid re-enters the current state with an explanation.
func (c *Controller) invalid(s *Session, msg string) []Effect {
	return []Effect{Notify(s.Identity, msg), c.prompt(s)}
}

// userError turns the expected domain failures into messages. Anything else
// is returned as an error.
func (c *Controller) userError(s *Session, err error) ([]Effect, error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := verr.Message
		if verr.Field != "" {
			msg = strings.ReplaceAll(verr.Field, "_", " ") + " " + msg
		}
		return c.invalid(s, "Please check your answer: "+msg+"."), nil
	case errors.Is(err, domain.ErrNotRegistered):
		s.reset()
		return []Effect{Notify(s.Identity, "You are not registered yet. Send /start to create a profile.")}, nil
	case errors.Is(err, domain.ErrProfileBanned):
		s.reset()
		return []Effect{Notify(s.Identity, "Your profile is blocked.")}, nil
	}
	return nil, err
}

func (s *Session) reset() {
	s.State = StateIdle
	s.Draft = Draft{}
	s.Viewing = 0
}

func (c *Controller) toIdle(s *Session, effects ...Effect) []Effect {
	s.reset()
	return append(effects, c.prompt(s))
}
