package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, folds runs of whitespace into one space, drops
// control characters and caps the result at maxLen runes. maxLen <= 0 means
// no cap. Item names and seller labels are shown in receipts, so truncation
// never splits a multi-byte character.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	runes := 0
	pendingSpace := false
	for _, r := range strings.TrimSpace(input) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if pendingSpace {
			if maxLen > 0 && runes+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			runes++
			pendingSpace = false
		}
		if maxLen > 0 && runes >= maxLen {
			break
		}
		b.WriteRune(r)
		runes++
	}
	return b.String()
}
