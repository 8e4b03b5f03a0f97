package prompt

import "strings"

// SuggestionSeparator delimits alternatives in raw autocomplete output
const SuggestionSeparator = "|||"

// MaxSuggestions caps how many alternatives are returned
const MaxSuggestions = 3

// SplitSuggestions splits raw model output on SuggestionSeparator, trims each
// part and drops empties. At most MaxSuggestions are returned, never nil.
func SplitSuggestions(raw string) []string {
	suggestions := []string{}
	for _, part := range strings.Split(raw, SuggestionSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		suggestions = append(suggestions, part)
		if len(suggestions) == MaxSuggestions {
			break
		}
	}
	return suggestions
}
