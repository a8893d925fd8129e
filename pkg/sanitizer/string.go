package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses
// internal whitespace runs to single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeNote normalizes a free-text note and clips it to maxLen runes.
func NormalizeNote(note string, maxLen int) string {
	normalized := TrimAndNormalize(note)
	if maxLen > 0 {
		runes := []rune(normalized)
		if len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return normalized
}

func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
