package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func self(s string) string { return s }

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestCursorRoundTrip(t *testing.T) {
	id, err := ParseCursor(EncodeCursor("sale-42"))
	require.NoError(t, err)
	assert.Equal(t, "sale-42", id)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseCursor("!!not-base64")
	assert.Error(t, err)
}

func TestPaginateWalksAllPages(t *testing.T) {
	items := ids(5)

	var seen []string
	cursor := ""
	for pages := 0; pages < 10; pages++ {
		page, err := Paginate(items, Params{Limit: 2, Cursor: cursor}, self)
		require.NoError(t, err)
		seen = append(seen, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, items, seen)
}

func TestPaginateLastPageHasNoCursor(t *testing.T) {
	page, err := Paginate(ids(2), Params{Limit: 2}, self)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)

	empty, err := Paginate([]string{}, Params{}, self)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestPaginateRejectsUnknownCursor(t *testing.T) {
	_, err := Paginate(ids(3), Params{Cursor: EncodeCursor("zz")}, self)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
