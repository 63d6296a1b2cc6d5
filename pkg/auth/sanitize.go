package auth

import (
	"html"
	"strings"
	"unicode"
)

// maxNameRunes bounds stored display names.
const maxNameRunes = 100

// SanitizeName trims a display name, strips control characters, caps its
// length and HTML-escapes it.
func SanitizeName(name string) string {
	name = strings.TrimSpace(removeControlChars(name))

	if r := []rune(name); len(r) > maxNameRunes {
		name = strings.TrimSpace(string(r[:maxNameRunes]))
	}

	return html.EscapeString(name)
}

// removeControlChars removes every control character, including newlines.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
