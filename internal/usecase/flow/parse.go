package flow

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

var errNameAgeFormat = errors.New("expected \"Name Age\"")

// normalize trims input and folds it to NFC so equal-looking text compares equal.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// commandToken extracts a command name and its arguments from "/name@bot args".
// ok is false when text is not a command.
func commandToken(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	fields := strings.SplitN(strings.TrimPrefix(text, "/"), " ", 2)
	name = strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if len(fields) == 2 {
		args = strings.TrimSpace(fields[1])
	}
	return name, args, name != ""
}

// parseNameAge reads "all tokens but the last are the name, the last is the age".
func parseNameAge(text string) (string, int, error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", 0, errNameAgeFormat
	}
	age, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", 0, errNameAgeFormat
	}
	name := strings.Join(parts[:len(parts)-1], " ")
	if utf8.RuneCountInString(name) > 100 {
		return "", 0, domain.NewValidationError("display_name", "is too long")
	}
	if age < domain.MinAge || age > domain.MaxAge {
		return "", 0, domain.NewValidationError("age", "must be between 18 and 100")
	}
	return name, age, nil
}

// splitChoice splits "prefix:value" tokens.
func splitChoice(choice string) (string, string) {
	prefix, value, found := strings.Cut(choice, ":")
	if !found {
		return choice, ""
	}
	return prefix, value
}

// toggle adds tag to set or removes it. full reports an add refused by the cap.
func toggle(set []string, tag string, max int) (out []string, full bool) {
	for i, t := range set {
		if t == tag {
			return append(set[:i:i], set[i+1:]...), false
		}
	}
	if len(set) >= max {
		return set, true
	}
	return append(set, tag), false
}

// pushPhoto puts ref first and keeps at most max photos.
func pushPhoto(photos []string, ref string, max int) []string {
	out := []string{ref}
	for _, p := range photos {
		if len(out) == max {
			break
		}
		if p != ref {
			out = append(out, p)
		}
	}
	return out
}
