package flow

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

var mainMenu = []string{"browse", "profile", "edit", "matches", "likes", "stats", "help"}

const helpText = `Commands:
/start - register or open the menu
/browse - look at people nearby
/profile - your profile
/edit - change your profile
/matches - active conversations
/likes - who liked you
/stats - your numbers
/delete - delete your profile
/cancel - stop what you are doing`

func (c *Controller) prompt(s *Session) Effect {
	id := s.Identity
	switch s.State {
	case StateRegPhoto:
		return Prompt(id, "Step 1: send a photo of yourself.")
	case StateRegNameAge:
		return Prompt(id, `Step 2: send your name and age, for example "Anna 24".`)
	case StateRegGender:
		return Prompt(id, "Step 3: choose your gender.", "gender:male", "gender:female", "gender:other")
	case StateRegCity:
		return Prompt(id, "Step 4: send the name of your city or share your location.")
	case StateRegBio:
		return Prompt(id, fmt.Sprintf("Step 5: tell a little about yourself (up to %d characters).", domain.MaxBioLength))
	case StateRegInterests:
		choices := make([]string, 0, len(domain.InterestVocabulary)+1)
		for _, tag := range domain.InterestVocabulary {
			choices = append(choices, "tag:"+tag)
		}
		choices = append(choices, "tags:done")
		text := fmt.Sprintf("Step 6: pick up to %d interests. Selected %d/%d",
			domain.MaxInterests, len(s.Draft.Interests), domain.MaxInterests)
		if len(s.Draft.Interests) > 0 {
			text += ": " + strings.Join(s.Draft.Interests, ", ")
		}
		return Prompt(id, text+".", choices...)
	case StateRegGoal:
		return Prompt(id, "Last step: what are you looking for?",
			"goal:relationship", "goal:friendship", "goal:chat", "goal:any")
	case StateRegCommitFailed:
		return Prompt(id, "Your profile is not saved yet. Send /start to try again.")
	case StateEditMenu:
		return Prompt(id, "What do you want to change?",
			"edit:name_age", "edit:bio", "edit:photo", "edit:city", "edit:done")
	case StateEditNameAge:
		return Prompt(id, `Send your new name and age, for example "Anna 24".`)
	case StateEditBio:
		return Prompt(id, fmt.Sprintf("Send your new bio (up to %d characters).", domain.MaxBioLength))
	case StateEditPhoto:
		return Prompt(id, "Send a new photo. It becomes your main one.")
	case StateEditCity:
		return Prompt(id, "Send the name of your city or share your location.")
	case StateBrowsing:
		return Prompt(id, "Use the buttons under the profile.", browseChoices...)
	case StateReportReason:
		return Prompt(id, "Tell us what is wrong with this profile.")
	case StateDeleteConfirm:
		return Prompt(id, "Delete your profile for good? Your likes and matches go with it.", "confirm:yes", "confirm:no")
	case StateAdminMenu:
		return Prompt(id, "Admin panel.", "admin:search", "admin:ban", "admin:broadcast", "admin:reports", "admin:stats")
	case StateAdminSearch:
		return Prompt(id, "Send an identity, a name or a username.")
	case StateAdminBan:
		return Prompt(id, "Send the identity to ban or unban.")
	case StateAdminBroadcast:
		return Prompt(id, "Send the text to broadcast to every active user.")
	default:
		return Prompt(id, "What next?", mainMenu...)
	}
}

func caption(card *domain.Card) string {
	text := fmt.Sprintf("%s, %d", card.DisplayName, card.Age)
	if card.City != "" {
		text += ", " + card.City
	}
	if card.DistanceKm != nil {
		text += fmt.Sprintf(" (%.1f km away)", *card.DistanceKm)
	}
	return text
}

func formatTimeLeft(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}
