package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

const pendingReportsShown = 10

func (c *Controller) cmdAdmin(_ context.Context, s *Session, _ string) ([]Effect, error) {
	if !c.isAdmin(s.Identity) {
		return []Effect{Notify(s.Identity, "This command is for administrators only.")}, nil
	}
	s.reset()
	s.State = StateAdminMenu
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) adminMenu(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	switch ev.Choice {
	case "admin:search":
		s.State = StateAdminSearch
	case "admin:ban":
		s.State = StateAdminBan
	case "admin:broadcast":
		s.State = StateAdminBroadcast
	case "admin:reports":
		return c.pendingReports(ctx, s)
	case "admin:stats":
		return c.adminStats(ctx, s)
	default:
		return c.unexpected(s), nil
	}
	return []Effect{c.prompt(s)}, nil
}

func (c *Controller) pendingReports(ctx context.Context, s *Session) ([]Effect, error) {
	reports, err := c.moderation.ListPendingReports(ctx, pendingReportsShown)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return []Effect{Notify(s.Identity, "No pending reports."), c.prompt(s)}, nil
	}

	var b strings.Builder
	b.WriteString("Pending reports:\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "#%d %s (%d) on %s (%d): %s\n",
			r.ID, r.ReporterName, r.ReporterIdentity, r.ReportedName, r.ReportedIdentity, r.Reason)
	}
	b.WriteString("Close one with /resolve <id> <note> or /dismiss <id> <note>.")
	return []Effect{Notify(s.Identity, b.String()), c.prompt(s)}, nil
}

func (c *Controller) adminStats(ctx context.Context, s *Session) ([]Effect, error) {
	counts, err := c.moderation.Stats(ctx)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Profiles: %d\nActive: %d\nBanned: %d\nPremium: %d\nRegistered today: %d",
		counts.Total, counts.Active, counts.Banned, counts.Premium, counts.RegisteredToday)
	return []Effect{Notify(s.Identity, text), c.prompt(s)}, nil
}

func (c *Controller) adminSearch(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	found, err := c.moderation.Search(ctx, ev.Text)
	if err != nil {
		return nil, err
	}
	s.State = StateAdminMenu
	if len(found) == 0 {
		return []Effect{Notify(s.Identity, "Nothing found."), c.prompt(s)}, nil
	}

	var b strings.Builder
	for _, p := range found {
		fmt.Fprintf(&b, "%d %s, %d, %s", p.Identity, p.DisplayName, p.Age, p.City)
		if p.IsBanned {
			b.WriteString(" [banned]")
		}
		b.WriteByte('\n')
	}
	return []Effect{Notify(s.Identity, strings.TrimSuffix(b.String(), "\n")), c.prompt(s)}, nil
}

func (c *Controller) adminBan(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	target, err := strconv.ParseInt(ev.Text, 10, 64)
	if err != nil {
		return c.invalid(s, "An identity is a number."), nil
	}

	banned, err := c.moderation.ToggleBan(ctx, target)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return c.invalid(s, fmt.Sprintf("No profile with identity %d.", target)), nil
	}
	if err != nil {
		return nil, err
	}

	s.State = StateAdminMenu
	if banned {
		return []Effect{
			Notify(s.Identity, fmt.Sprintf("%d is banned.", target)),
			Notify(target, "Your profile has been blocked by a moderator."),
			c.prompt(s),
		}, nil
	}
	return []Effect{
		Notify(s.Identity, fmt.Sprintf("%d is unbanned.", target)),
		Notify(target, "Your profile has been unblocked."),
		c.prompt(s),
	}, nil
}

func (c *Controller) adminBroadcast(ctx context.Context, s *Session, ev Event) ([]Effect, error) {
	recipients, err := c.moderation.Broadcast(ctx, s.Identity, ev.Text)
	if err != nil {
		return c.userError(s, err)
	}

	effects := make([]Effect, 0, len(recipients)+2)
	for _, id := range recipients {
		effects = append(effects, Notify(id, ev.Text))
	}
	s.State = StateAdminMenu
	return append(effects, Notify(s.Identity, fmt.Sprintf("Sent to %d users.", len(recipients))), c.prompt(s)), nil
}

func (c *Controller) cmdResolve(ctx context.Context, s *Session, args string) ([]Effect, error) {
	return c.closeReport(ctx, s, args, domain.ReportResolved)
}

func (c *Controller) cmdDismiss(ctx context.Context, s *Session, args string) ([]Effect, error) {
	return c.closeReport(ctx, s, args, domain.ReportDismissed)
}

func (c *Controller) closeReport(ctx context.Context, s *Session, args string, status domain.ReportStatus) ([]Effect, error) {
	if !c.isAdmin(s.Identity) {
		return []Effect{Notify(s.Identity, "This command is for administrators only.")}, nil
	}
	fields := strings.SplitN(args, " ", 2)
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return []Effect{Notify(s.Identity, fmt.Sprintf("Usage: /%s <report id> <note>", commandFor(status)))}, nil
	}
	note := ""
	if len(fields) == 2 {
		note = strings.TrimSpace(fields[1])
	}

	err = c.moderation.Resolve(ctx, id, status, note)
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		return []Effect{Notify(s.Identity, fmt.Sprintf("Report #%d not found.", id))}, nil
	case err != nil:
		return nil, err
	}
	return []Effect{Notify(s.Identity, fmt.Sprintf("Report #%d marked %s.", id, status))}, nil
}

func commandFor(status domain.ReportStatus) string {
	if status == domain.ReportDismissed {
		return "dismiss"
	}
	return "resolve"
}
