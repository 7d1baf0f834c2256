package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

var browseChoices = []string{"like", "skip", "report", "menu"}

const receivedLikesShown = 10

func (c *Controller) cmdBrowse(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	s.reset()
	c.profiles.TouchLastSeen(ctx, s.Identity)
	return c.showNext(ctx, s)
}

func (c *Controller) showNext(ctx context.Context, s *Session, prefix ...Effect) ([]Effect, error) {
	candidate, err := c.feed.NextCandidate(ctx, s.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidate) {
			return c.toIdle(s, append(prefix, Notify(s.Identity, "No new people around right now. Try again later."))...), nil
		}
		effects, err := c.userError(s, err)
		return append(prefix, effects...), err
	}
	s.State = StateBrowsing
	s.Viewing = candidate.Card.Identity
	return append(prefix, ShowProfile(s.Identity, candidate.Card, caption(candidate.Card), browseChoices...)), nil
}

func (c *Controller) browseAction(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	switch ev.Choice {
	case "like":
		return c.like(ctx, s)
	case "skip":
		return c.showNext(ctx, s)
	case "report":
		s.State = StateReportReason
		return []Effect{c.prompt(s)}, nil
	case "menu":
		return c.toIdle(s), nil
	}
	return c.unexpected(s), nil
}

func (c *Controller) like(ctx context.Context, s *Session) ([]Effect, error) {
	res, err := c.swipe.SubmitLike(ctx, s.Identity, s.Viewing)
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return []Effect{Notify(s.Identity, "You have used all of today's likes. Come back tomorrow.")}, nil
	case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrCannotLikeSelf):
		return c.showNext(ctx, s, Notify(s.Identity, "This profile is no longer available."))
	case err != nil:
		return c.userError(s, err)
	}

	name := res.Target.DisplayName
	var effects []Effect
	switch {
	case res.AlreadyMatched:
		effects = append(effects, Notify(s.Identity, fmt.Sprintf("You already have a match with %s.", name)))
	case res.IsMutual():
		text := fmt.Sprintf("It's a match with %s! You have %s to start talking.",
			name, formatTimeLeft(res.Match.ExpiresAt.Sub(res.Match.CreatedAt)))
		if res.Icebreaker != "" {
			text += "\nIdea for a first message: " + res.Icebreaker
		}
		effects = append(effects,
			Notify(s.Identity, text),
			Notify(res.Target.Identity, c.matchNotice(ctx, s.Identity)),
		)
	case res.Duplicate:
		effects = append(effects, Notify(s.Identity, fmt.Sprintf("You already liked %s.", name)))
	default:
		text := fmt.Sprintf("Like sent to %s.", name)
		if res.LikesLeft != nil {
			text += fmt.Sprintf(" Likes left today: %d.", *res.LikesLeft)
		}
		effects = append(effects,
			Notify(s.Identity, text),
			Notify(res.Target.Identity, "Someone liked you. Send /likes to see who."),
		)
	}
	return c.showNext(ctx, s, effects...)
}

func (c *Controller) matchNotice(ctx context.Context, identity int64) string {
	p, err := c.profiles.GetProfile(ctx, identity)
	if err != nil {
		return "You have a new match! Send /matches to see it."
	}
	return fmt.Sprintf("It's a match with %s! Send /matches to see it.", p.DisplayName)
}

func (c *Controller) reportReason(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	_, err := c.ledger.RecordReport(ctx, s.Identity, s.Viewing, ev.Text)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrCannotReportSelf):
		return c.showNext(ctx, s, Notify(s.Identity, "This profile is no longer available."))
	case err != nil:
		return c.userError(s, err)
	}
	return c.showNext(ctx, s, Notify(s.Identity, "Thank you. Moderators will look into it."))
}

func (c *Controller) cmdMatches(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	matches, err := c.swipe.ActiveMatches(ctx, s.Identity)
	if err != nil {
		return c.userError(s, err)
	}
	if len(matches) == 0 {
		return []Effect{Notify(s.Identity, "No active matches yet. Send /browse to meet people.")}, nil
	}

	effects := []Effect{Notify(s.Identity, fmt.Sprintf("Active matches: %d", len(matches)))}
	for _, m := range matches {
		effects = append(effects, ShowProfile(s.Identity, m.Partner,
			fmt.Sprintf("%s. Time left: %s", caption(m.Partner), formatTimeLeft(m.TimeLeft))))
	}
	return effects, nil
}

func (c *Controller) cmdLikes(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	likes, err := c.swipe.LikesReceived(ctx, s.Identity, receivedLikesShown)
	if err != nil {
		return c.userError(s, err)
	}
	if len(likes) == 0 {
		return []Effect{Notify(s.Identity, "Nobody is waiting for your answer yet.")}, nil
	}

	effects := []Effect{Notify(s.Identity, fmt.Sprintf("People who liked you: %d", len(likes)))}
	for _, l := range likes {
		effects = append(effects, ShowProfile(s.Identity, l.From, caption(l.From)))
	}
	return effects, nil
}
