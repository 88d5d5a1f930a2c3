package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parseEnum matches value against valid, ignoring case and surrounding
// space. label names the enum in the error.
func parseEnum[T ~string](value, label string, valid []T) (T, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range valid {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q", label, value)
}

func isKnown[T ~string](value T, valid []T) bool {
	return slices.Contains(valid, value)
}
