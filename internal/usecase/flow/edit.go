package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

// registered loads the caller's profile. A nil profile with effects means the
// caller cannot continue.
func (c *Controller) registered(ctx context.Context, s *Session) (*domain.Profile, []Effect, error) {
	p, err := c.profiles.GetProfile(ctx, s.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			err = domain.ErrNotRegistered
		}
		effects, err := c.userError(s, err)
		return nil, effects, err
	}
	if p.IsBanned {
		effects, err := c.userError(s, domain.ErrProfileBanned)
		return nil, effects, err
	}
	return p, nil, nil
}

func (c *Controller) cmdEdit(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	p, effects, err := c.registered(ctx, s)
	if p == nil {
		return effects, err
	}
	s.reset()
	s.State = StateEditMenu
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) editMenu(_ context.Context, s *Session, ev Event) ([]Effect, error) {
	prefix, value := splitChoice(ev.Choice)
	if prefix != "edit" {
		return c.unexpected(s), nil
	}
	switch value {
	case "name_age":
		s.State = StateEditNameAge
	case "bio":
		s.State = StateEditBio
	case "photo":
		s.State = StateEditPhoto
	case "city":
		s.State = StateEditCity
	case "done":
		return c.toIdle(s, Notify(s.Identity, "Profile saved.")), nil
	default:
		return c.unexpected(s), nil
	}
	return []Effect{c.prompt(s)}, nil
}

// save performs one updateProfile call and returns to the edit menu.
func (c *Controller) save(ctx context.Context, s *Session, update *domain.ProfileUpdate) ([]Effect, error) {
	ok, err := c.profiles.UpdateProfile(ctx, s.Identity, update)
	if err != nil {
		return c.userError(s, err)
	}
	if !ok {
		return c.userError(s, domain.ErrNotRegistered)
	}
	s.State = StateEditMenu
	return []Effect{Notify(s.Identity, "Saved."), c.prompt(s)}, nil
}

func (c *Controller) editNameAge(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	name, age, err := parseNameAge(ev.Text)
	if err != nil {
		return c.nameAgeError(s, err)
	}
	return c.save(ctx, s, &domain.ProfileUpdate{DisplayName: &name, Age: &age})
}

func (c *Controller) editBio(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	if utf8.RuneCountInString(ev.Text) > domain.MaxBioLength {
		return c.invalid(s, fmt.Sprintf("Too long. The limit is %d characters.", domain.MaxBioLength)), nil
	}
	bio := ev.Text
	return c.save(ctx, s, &domain.ProfileUpdate{Bio: &bio})
}

func (c *Controller) editPhoto(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	if ev.PhotoRef == "" {
		return c.unexpected(s), nil
	}
	p, effects, err := c.registered(ctx, s)
	if p == nil {
		return effects, err
	}
	photos := domain.StringList(pushPhoto(p.Photos, ev.PhotoRef, domain.MaxPhotos))
	return c.save(ctx, s, &domain.ProfileUpdate{Photos: &photos})
}

func (c *Controller) editCity(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	var d Draft
	if err := setCity(&d, ev); err != nil {
		return c.userError(s, err)
	}
	update := &domain.ProfileUpdate{City: &d.City}
	if d.Latitude != nil {
		update.Latitude, update.Longitude = d.Latitude, d.Longitude
	}
	return c.save(ctx, s, update)
}

func (c *Controller) cmdProfile(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	p, effects, err := c.registered(ctx, s)
	if p == nil {
		return effects, err
	}
	done := p.Completion()
	text := fmt.Sprintf("Your profile is %d%% complete.", done.Percentage)
	if len(done.MissingFields) > 0 {
		text += " Missing: " + strings.Join(done.MissingFields, ", ") + ". Use /edit to fill it in."
	}
	return []Effect{ShowProfile(s.Identity, domain.NewCard(p, nil), text)}, nil
}

func (c *Controller) cmdStats(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	st, err := c.profiles.Stats(ctx, s.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			err = domain.ErrNotRegistered
		}
		return c.userError(s, err)
	}
	text := fmt.Sprintf("Likes sent: %d (today %d)\nLikes waiting for you: %d\nLikes received overall: %d\nActive matches: %d\nProfile views: %d",
		st.LikesGiven, st.LikesGivenToday, st.LikesReceived, st.LikesReceivedTotal, st.ActiveMatches, st.ProfileViews)
	return []Effect{Notify(s.Identity, text)}, nil
}

func (c *Controller) cmdDelete(ctx context.Context, s *Session, _ string) ([]Effect, error) {
	p, effects, err := c.registered(ctx, s)
	if p == nil {
		return effects, err
	}
	s.reset()
	s.State = StateDeleteConfirm
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) deleteConfirm(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	switch ev.Choice {
	case "confirm:yes":
		if err := c.profiles.DeleteProfile(ctx, s.Identity); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		s.reset()
		return []Effect{Notify(s.Identity, "Your profile has been deleted. Send /start to register again.")}, nil
	case "confirm:no":
		return c.toIdle(s, Notify(s.Identity, "Nothing was deleted.")), nil
	}
	return c.unexpected(s), nil
}
