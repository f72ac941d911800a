package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonth_ParseAndFormat(t *testing.T) {
	m, err := ParseMonth("2024-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year())
	assert.Equal(t, time.January, m.Month())
	assert.Equal(t, "2024-01", m.String())

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
	_, err = ParseMonth("not-a-month")
	assert.Error(t, err)
}

func TestMonth_Arithmetic(t *testing.T) {
	dec := NewMonth(2023, time.December)

	assert.Equal(t, NewMonth(2024, time.January), dec.NextMonth())
	assert.Equal(t, NewMonth(2023, time.June), dec.AddMonths(-6))
	assert.Equal(t, NewMonth(2025, time.February), dec.AddMonths(14))
}

func TestMonth_Ordering(t *testing.T) {
	jan := MustParseMonth("2024-01")
	feb := MustParseMonth("2024-02")

	assert.True(t, jan.Before(feb))
	assert.True(t, feb.After(jan))
	assert.False(t, jan.Before(jan))
	assert.Equal(t, 0, jan.Compare(jan))
	assert.Equal(t, -1, jan.Compare(feb))
	assert.Equal(t, 1, feb.Compare(jan))
}

func TestMonth_Bounds(t *testing.T) {
	jan := MustParseMonth("2024-01")

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), jan.FirstDay())
	assert.True(t, jan.Contains(time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, jan.Contains(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, jan.Contains(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)))
}

func TestMonth_JSONRoundTrip(t *testing.T) {
	m := MustParseMonth("2024-07")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07"`, string(data))

	var decoded Month
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)
}
