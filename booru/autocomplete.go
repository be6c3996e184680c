package booru

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrorSuggestion is offered in place of suggestions when the lookup fails.
const ErrorSuggestion = "Error"

var defaultSuggestions = []struct {
	value, unless string
}{
	{"full_body", "full_body"},
	{"-excluded_tag", "-"},
	{"score:>10", "score"},
	{"score:>100", "score"},
}

// Suggest completes the last space separated tag of current.
// Earlier tags are kept in front of every suggestion.
func (c *TagCache) Suggest(ctx context.Context, current string) []string {
	var previous, last string
	if before, after, found := cutLast(current, " "); found {
		previous, last = strings.TrimSpace(before), strings.TrimSpace(after)
	} else {
		last = strings.TrimSpace(current)
	}

	excluded := strings.HasPrefix(last, "-")
	last = strings.TrimLeft(last, "-")

	var results []string
	if last == "" && !excluded {
		for _, s := range defaultSuggestions {
			if !strings.Contains(previous, s.unless) {
				results = append(results, s.value)
			}
		}
	} else {
		tags, err := c.Lookup(ctx, last)
		if err != nil {
			log.Error().Err(err).Str("query", last).Msg("Failed to load tags")
			return []string{ErrorSuggestion}
		}
		results = tags
	}

	for i, result := range results {
		if excluded {
			result = "-" + result
		}
		if previous != "" {
			result = previous + " " + result
		}
		results[i] = result
	}
	return results
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
