package gemini

import (
	"strings"
	"testing"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

func TestFallback(t *testing.T) {
	anna := &domain.Profile{DisplayName: "Anna", Interests: domain.StringList{"music", "coffee"}}
	boris := &domain.Profile{DisplayName: "Boris", Interests: domain.StringList{"coffee", "cars"}}
	clara := &domain.Profile{DisplayName: "Clara"}

	tests := []struct {
		name     string
		from, to *domain.Profile
		want     string
	}{
		{"shared interest", anna, boris, "You both like coffee."},
		{"target interests only", clara, boris, "I see you're into coffee."},
		{"nothing known", anna, clara, "Hi Clara!"},
	}
	for _, tt := range tests {
		if got := Fallback(tt.from, tt.to); !strings.HasPrefix(got, tt.want) {
			t.Errorf("%s: expected prefix %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestBuildPromptMentionsSharedInterests(t *testing.T) {
	a := &domain.Profile{DisplayName: "Anna", Age: 25, Interests: domain.StringList{"music", "travel"}}
	b := &domain.Profile{DisplayName: "Boris", Age: 27, Interests: domain.StringList{"travel"}}
	if p := buildPrompt(a, b); !strings.Contains(p, "Shared interests: travel.") {
		t.Errorf("expected shared interests in prompt, got %q", p)
	}
}

func TestCleanLine(t *testing.T) {
	if got := cleanLine("\n  \"Coffee or tea?\"  \nSecond line"); got != "Coffee or tea?" {
		t.Errorf("expected first unquoted line, got %q", got)
	}
	if got := cleanLine("  \n "); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
