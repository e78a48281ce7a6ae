package utils

import (
	"strings"
	"unicode"
)

// Slugify keeps letters, digits and '-' of s and collapses every other run
// of characters into a single '_'. Leading and trailing '_' are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
