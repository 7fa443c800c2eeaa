package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+10))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{At: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), ID: uuid.New()}
	decoded, err := ParseCursor(EncodeCursor(cursor))
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, cursor.At.Equal(decoded.At))
	assert.Equal(t, cursor.ID, decoded.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("not-base64!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestParseCursorRejectsIncompletePosition(t *testing.T) {
	for _, raw := range []string{`{}`, `{"at":"2026-03-14T00:00:00Z"}`, `[1,2]`} {
		_, err := ParseCursor(base64.RawURLEncoding.EncodeToString([]byte(raw)))
		assert.ErrorIs(t, err, ErrInvalidCursor, raw)
	}
}

func TestEncodeCursorIsURLSafe(t *testing.T) {
	at := time.Date(2026, 3, 14, 5, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	token := EncodeCursor(Cursor{At: at, ID: uuid.New()})
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	decoded, err := ParseCursor(token)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, decoded.At.Location())
	assert.True(t, at.Equal(decoded.At))
}

func TestBuildPage(t *testing.T) {
	type row struct {
		at time.Time
		id uuid.UUID
	}
	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{at: base, id: uuid.New()},
		{at: base.AddDate(0, 0, -1), id: uuid.New()},
		{at: base.AddDate(0, 0, -2), id: uuid.New()},
	}
	cursorOf := func(r row) Cursor { return Cursor{At: r.at, ID: r.id} }

	page := BuildPage(rows, 2, cursorOf)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, next.ID)

	last := BuildPage(rows[:1], 2, cursorOf)
	assert.Len(t, last.Items, 1)
	assert.Empty(t, last.NextCursor)

	none := BuildPage[row](nil, 2, cursorOf)
	assert.NotNil(t, none.Items)
}
