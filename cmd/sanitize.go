package cmd

import (
	"strings"
	"unicode"
)

// maxNameRunes bounds an entity name echoed to the terminal.
const maxNameRunes = 120

// sanitizeText replaces control characters and bidirectional formatting
// characters with '?' in paths, ids and messages taken from documents
// before they reach a terminal.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.Is(unicode.Bidi_Control, r) {
			return '?'
		}
		return r
	}, s)
}

// sanitizeName is sanitizeText for entity display names, cut to
// maxNameRunes with a trailing ellipsis.
func sanitizeName(s string) string {
	s = sanitizeText(s)
	if r := []rune(s); len(r) > maxNameRunes {
		return string(r[:maxNameRunes-1]) + "…"
	}
	return s
}
