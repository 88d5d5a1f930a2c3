package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var uniqueViolationMarkers = []string{
	"duplicate key value",     // postgres
	"UNIQUE constraint failed", // sqlite
}

// IsUniqueViolation reports whether err is a unique constraint failure. A
// non-empty constraint narrows the match to that constraint's name.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraint != "" {
		return strings.Contains(msg, constraint)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
