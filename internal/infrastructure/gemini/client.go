package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const modelName = "gemini-1.5-flash"

// IcebreakerClient asks Gemini for an opening line for a new match.
type IcebreakerClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewIcebreakerClient(ctx context.Context, apiKey string, logger *slog.Logger) (*IcebreakerClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.8)
	model.SetMaxOutputTokens(80)

	return &IcebreakerClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *IcebreakerClient) Close() error {
	return c.client.Close()
}

// SuggestIcebreaker returns one opening message from "from" to "to". When the API is
// unavailable a line built from shared interests is returned instead.
func (c *IcebreakerClient) SuggestIcebreaker(ctx context.Context, from, to *domain.Profile) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(from, to)))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("gemini unavailable, using fallback icebreaker", "error", err)
		return Fallback(from, to), nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Fallback(from, to), nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	line := cleanLine(sb.String())
	if line == "" {
		return Fallback(from, to), nil
	}
	return line, nil
}

func buildPrompt(from, to *domain.Profile) string {
	return fmt.Sprintf(`Two people just matched in a dating app for people nearby.
Person A: %s, %d, %s. About: %q. Interests: %s.
Person B: %s, %d, %s. About: %q. Interests: %s.
Shared interests: %s.

Write one short, friendly opening message that A could send to B.
Prefer shared interests. No emojis, no quotes, no greeting formulas.
Output: only the message.`,
		from.DisplayName, from.Age, from.City, from.Bio, listOrNone(from.Interests),
		to.DisplayName, to.Age, to.City, to.Bio, listOrNone(to.Interests),
		listOrNone(shared(from.Interests, to.Interests)),
	)
}

// Fallback builds an icebreaker without the model.
func Fallback(from, to *domain.Profile) string {
	if common := shared(from.Interests, to.Interests); len(common) > 0 {
		return fmt.Sprintf("You both like %s. What got you into it?", common[0])
	}
	if len(to.Interests) > 0 {
		return fmt.Sprintf("I see you're into %s. What do you enjoy most about it?", to.Interests[0])
	}
	return fmt.Sprintf("Hi %s! What is your favourite spot around here?", to.DisplayName)
}

func shared(a, b domain.StringList) []string {
	out := []string{}
	for _, tag := range a {
		if b.Contains(tag) {
			out = append(out, tag)
		}
	}
	return out
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// cleanLine keeps the first non-empty line without wrapping quotes.
func cleanLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'«»`)
		if line != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
