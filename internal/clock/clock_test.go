package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)

	got, err := Parse("01/06/2025 10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 1, got.Day())
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, loc, got.Location())
}

func TestParseInvalid(t *testing.T) {
	loc := time.UTC
	_, err := Parse("2025-06-01T10:00:00Z", loc)
	assert.Error(t, err)

	_, err = Parse("", loc)
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)

	orig := time.Date(2025, 6, 1, 9, 31, 0, 0, loc)
	parsed, err := Parse(Format(orig), loc)
	require.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestNewFixedZone(t *testing.T) {
	c, err := NewFixedZone(DefaultTimezone)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, c.Location().String())
	assert.Equal(t, c.Location(), c.Now().Location())

	_, err = NewFixedZone("Not/AZone")
	assert.Error(t, err)
}
