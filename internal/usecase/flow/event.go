package flow

import "github.com/gdugdh24/nearby-backend/internal/domain"

type EventKind string

const (
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventLocation EventKind = "location"
	EventChoice   EventKind = "choice"
)

// Event is one inbound message from the transport.
type Event struct {
	Identity    int64     `json:"identity" binding:"required"`
	Username    *string   `json:"username,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Kind        EventKind `json:"kind" binding:"required,oneof=text photo location choice"`
	Text        string    `json:"text,omitempty"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	Choice      string    `json:"choice,omitempty"`
}

type EffectKind string

const (
	EffectPrompt      EffectKind = "prompt"
	EffectShowProfile EffectKind = "show_profile"
	EffectNotify      EffectKind = "notify"
)

// Effect is an instruction for the transport to render. The controller never
// talks to the user directly.
type Effect struct {
	Kind     EffectKind   `json:"kind"`
	Identity int64        `json:"identity"`
	Text     string       `json:"text,omitempty"`
	Choices  []string     `json:"choices,omitempty"`
	Card     *domain.Card `json:"card,omitempty"`
}

func Prompt(identity int64, text string, choices ...string) Effect {
	return Effect{Kind: EffectPrompt, Identity: identity, Text: text, Choices: choices}
}

func ShowProfile(identity int64, card *domain.Card, text string, choices ...string) Effect {
	return Effect{Kind: EffectShowProfile, Identity: identity, Text: text, Card: card, Choices: choices}
}

func Notify(identity int64, text string) Effect {
	return Effect{Kind: EffectNotify, Identity: identity, Text: text}
}

// InputShape is what a state step is keyed on.
type InputShape string

const (
	ShapeText     InputShape = "text"
	ShapePhoto    InputShape = "photo"
	ShapeLocation InputShape = "location"
	ShapeChoice   InputShape = "choice"
)

func (e Event) Shape() InputShape {
	switch e.Kind {
	case EventPhoto:
		return ShapePhoto
	case EventLocation:
		return ShapeLocation
	case EventChoice:
		return ShapeChoice
	default:
		return ShapeText
	}
}
