package validator

import (
	"strings"
	"unicode/utf8"
)

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// WithinLength reports whether s has at most max characters.
func WithinLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	return string(runes[:max])
}

// OneOf reports whether value is a non-blank member of allowed.
func OneOf[T ~string](value T, allowed []T) bool {
	if IsBlank(string(value)) {
		return false
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}
