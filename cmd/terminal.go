package cmd

import (
	"strings"
	"unicode"
)

// sanitizeForTerminal strips control characters from server- or user-supplied
// text before it is printed.
func sanitizeForTerminal(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}
