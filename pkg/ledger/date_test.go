package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")

	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2025-02-29")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDate_Arithmetic(t *testing.T) {
	start := NewDate(2025, 1, 30)

	assert.Equal(t, NewDate(2025, 2, 1), start.AddDays(2))
	assert.Equal(t, NewDate(2025, 3, 2), NewDate(2025, 2, 30))
	assert.Equal(t, 30, start.DaysUntil(NewDate(2025, 3, 1)))
	assert.Equal(t, -29, start.DaysUntil(NewDate(2025, 1, 1)))
	assert.True(t, start.Before(start.AddDays(1)))
	assert.True(t, start.After(NewDate(2024, 12, 31)))
	assert.False(t, start.Before(start))
	assert.True(t, Date{}.IsZero())
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("EDT", -4*60*60)

	// 02:30 UTC is still the previous evening in New York
	instant := time.Date(2025, 8, 12, 2, 30, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2025, 8, 11), DateOf(instant.In(loc)))
	assert.Equal(t, NewDate(2025, 8, 12), DateOf(instant))
}
