package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses runs of whitespace into one space.
// Control characters are dropped.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeNotes keeps line breaks in free-text fields such as special
// requests but collapses other whitespace on each line.
func NormalizeNotes(notes string) string {
	lines := strings.Split(strings.ReplaceAll(notes, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = TrimAndNormalize(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
