package flow

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

func (c *Controller) cmdStart(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	switch {
	case s.State == StateRegCommitFailed:
		return c.commit(ctx, s)
	case s.State.IsRegistration():
		return []Effect{Notify(s.Identity, "Let's continue where we stopped."), c.prompt(s)}, nil
	}

	p, err := c.profiles.GetProfile(ctx, s.Identity)
	switch {
	case err == nil:
		if p.IsBanned {
			s.reset()
			return []Effect{Notify(s.Identity, "Your profile is blocked.")}, nil
		}
		c.profiles.TouchLastSeen(ctx, s.Identity)
		return c.toIdle(s, Notify(s.Identity, fmt.Sprintf("Welcome back, %s!", p.DisplayName))), nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}

	s.reset()
	s.State = StateRegPhoto
	return []Effect{Notify(s.Identity, "Hi! Let's create your profile."), c.prompt(s)}, nil
}

func (c *Controller) cmdCancel(_ context.Context, s *Session, _ string) ([]Effect, error) {
	return c.toIdle(s, Notify(s.Identity, "Cancelled.")), nil
}

func (c *Controller) cmdHelp(_ context.Context, s *Session, _ string) ([]Effect, error) {
	text := helpText
	if c.isAdmin(s.Identity) {
		text += "\n/admin - admin panel\n/resolve <id> <note> - resolve a report\n/dismiss <id> <note> - dismiss a report"
	}
	return []Effect{Notify(s.Identity, text)}, nil
}

func (c *Controller) regPhoto(_ context.Context, s *Session, ev Event) ([]Effect, error) {
	if ev.PhotoRef == "" {
		return c.unexpected(s), nil
	}
	s.Draft.Photos = []string{ev.PhotoRef}
	s.State = StateRegNameAge
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) regNameAge(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	name, age, err := parseNameAge(ev.Text)
	if err != nil {
		return c.nameAgeError(s, err)
	}
	s.Draft.DisplayName = name
	s.Draft.Age = age
	s.State = StateRegGender
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) nameAgeError(s *Session, err error) ([]Effect, error) {
	if errors.Is(err, errNameAgeFormat) {
		return c.invalid(s, `Wrong format. Send your name and then your age, for example "Anna 24".`), nil
	}
	return c.userError(s, err)
}

func (c *Controller) regGender(_ context.Context, s *Session, ev Event) ([]Effect, error) {
	prefix, value := splitChoice(ev.Choice)
	g := domain.Gender(value)
	if prefix != "gender" || !g.IsValid() {
		return c.unexpected(s), nil
	}
	s.Draft.Gender = g
	s.State = StateRegCity
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) regCity(_ context.Context, s *Session, ev Event) ([]Effect, error) {
	if err := setCity(&s.Draft, ev); err != nil {
		return c.userError(s, err)
	}
	s.State = StateRegBio
	return []Effect{c.prompt(s)}, nil
}

// setCity stores a typed city name, or the geolocation sentinel plus coordinates.
func setCity(d *Draft, ev Event) error {
	if ev.Kind == EventLocation {
		if ev.Latitude < -90 || ev.Latitude > 90 || ev.Longitude < -180 || ev.Longitude > 180 {
			return domain.NewValidationError("location", "is out of range")
		}
		lat, lon := ev.Latitude, ev.Longitude
		d.City = domain.GeolocationCity
		d.Latitude, d.Longitude = &lat, &lon
		return nil
	}
	if ev.Text == "" {
		return domain.NewValidationError("city", "is required")
	}
	if utf8.RuneCountInString(ev.Text) > 100 {
		return domain.NewValidationError("city", "is too long")
	}
	d.City = ev.Text
	d.Latitude, d.Longitude = nil, nil
	return nil
}

func (c *Controller) regBio(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	if utf8.RuneCountInString(ev.Text) > domain.MaxBioLength {
		return c.invalid(s, fmt.Sprintf("Too long. The limit is %d characters.", domain.MaxBioLength)), nil
	}
	s.Draft.Bio = ev.Text

	if !c.opts.CollectInterests {
		s.Draft.Goal = domain.GoalAny
		return c.commit(ctx, s)
	}
	s.State = StateRegInterests
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) regInterests(_ context.Context, s *Session, ev Event) ([]Effect, error) {
	prefix, value := splitChoice(ev.Choice)
	switch {
	case prefix == "tags" && value == "done":
		if len(s.Draft.Interests) == 0 {
			return c.invalid(s, "Pick at least one interest."), nil
		}
		s.State = StateRegGoal
		return []Effect{c.prompt(s)}, nil
	case prefix == "tag" && domain.IsKnownInterest(value):
		var full bool
		s.Draft.Interests, full = toggle(s.Draft.Interests, value, domain.MaxInterests)
		if full {
			return c.invalid(s, fmt.Sprintf("You can pick at most %d interests.", domain.MaxInterests)), nil
		}
		return []Effect{c.prompt(s)}, nil
	}
	return c.unexpected(s), nil
}

func (c *Controller) regGoal(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	prefix, value := splitChoice(ev.Choice)
	g := domain.Goal(value)
	if prefix != "goal" || !g.IsValid() {
		return c.unexpected(s), nil
	}
	s.Draft.Goal = g
	return c.commit(ctx, s)
}

// commit performs the single createProfile call of a registration. On failure
// the draft stays in the session and /start retries it.
func (c *Controller) commit(ctx context.Context, s *Session) ([]Effect, error) {
	d := s.Draft
	p := &domain.Profile{
		Identity:    s.Identity,
		Username:    s.Username,
		DisplayName: d.DisplayName,
		Age:         d.Age,
		Gender:      d.Gender,
		City:        d.City,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Bio:         d.Bio,
		Photos:      domain.StringList(append([]string(nil), d.Photos...)),
		Interests:   domain.StringList(append([]string(nil), d.Interests...)),
		Goal:        d.Goal,
	}

	created, err := c.profiles.CreateProfile(ctx, p)
	switch {
	case err == nil:
		c.logger.Info("registration completed", "identity", s.Identity)
		return c.toIdle(s,
			Notify(s.Identity, fmt.Sprintf("Registration complete. Welcome, %s!", created.DisplayName)),
			ShowProfile(s.Identity, domain.NewCard(created, nil), "This is how others see you."),
		), nil
	case errors.Is(err, domain.ErrProfileAlreadyExists):
		return c.toIdle(s, Notify(s.Identity, "You are already registered.")), nil
	}

	c.logger.Error("registration commit failed", "identity", s.Identity, "error", err)
	s.State = StateRegCommitFailed
	return []Effect{Notify(s.Identity, "We could not save your profile. Send /start to try again.")}, nil
}
