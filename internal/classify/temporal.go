package classify

import (
	"regexp"
	"strings"
)

// yearPattern matches explicit four-digit years (1900-2099)
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var pastMarkers = []string{
	"last year", "history", "historical", "past", "ago",
}

// HasTemporalMarker reports whether the phrase carries an explicit year,
// month name, or relative-past cue. A positive result overrides plain topic
// matching and forces the historical-capable key for the topic.
func HasTemporalMarker(text string) bool {
	lower := strings.ToLower(text)

	if yearPattern.MatchString(lower) {
		return true
	}

	for _, m := range monthNames {
		if containsWord(lower, m) {
			return true
		}
	}

	for _, m := range pastMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}

	return false
}

// containsWord checks for a whole-word match, so "may" does not fire
// inside "maybe" and "march" does not fire inside "marching"
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)

		before := start == 0 || !isLetter(text[start-1])
		after := end == len(text) || !isLetter(text[end])
		if before && after {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
