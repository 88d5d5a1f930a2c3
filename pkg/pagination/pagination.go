package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page can return.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Page is one window over an ordered collection.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor pointing after the record with id.
func EncodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte("id|" + id))
}

// ParseCursor decodes a cursor produced by EncodeCursor. An empty value
// yields an empty id.
func ParseCursor(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decode cursor: %w", err)
	}
	id, ok := strings.CutPrefix(string(decoded), "id|")
	if !ok || id == "" {
		return "", fmt.Errorf("invalid cursor format")
	}
	return id, nil
}

// Paginate slices items, which must already be in a stable order, starting
// after the record named by params.Cursor.
func Paginate[T any](items []T, params Params, idOf func(T) string) (Page[T], error) {
	limit := NormalizeLimit(params.Limit)

	after, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	start := 0
	if after != "" {
		start = -1
		for i, item := range items {
			if idOf(item) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page[T]{}, pkgerrors.New(pkgerrors.CodeValidation, "cursor does not match any record")
		}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := Page[T]{Items: make([]T, 0, end-start)}
	page.Items = append(page.Items, items[start:end]...)
	if end < len(items) && end > start {
		page.NextCursor = EncodeCursor(idOf(items[end-1]))
	}
	return page, nil
}
