package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"24-hour", "23:05", "23:05"},
		{"24-hour single digit hour", "9:05", "09:05"},
		{"12-hour PM", "2:30 PM", "14:30"},
		{"12-hour AM", "9:15 AM", "09:15"},
		{"noon stays 12", "12:00 PM", "12:00"},
		{"midnight becomes 0", "12:30 AM", "00:30"},
		{"12-hour without minutes", "7 PM", "19:00"},
		{"lowercase meridiem", "3:45 pm", "15:45"},
		{"morning keyword", "morning", "09:00"},
		{"afternoon keyword", "Afternoon", "14:00"},
		{"evening keyword", "evening", "18:00"},
		{"night keyword", "night", "20:00"},
		{"garbage defaults", "whenever", "09:00"},
		{"empty defaults", "", "09:00"},
		{"out of range hour defaults", "25:00", "09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTime(tt.raw))
		})
	}
}

// Every output is canonical: 5 characters, zero-padded, and stable under a
// second pass through the normalizer.
func TestParseTimeCanonicalForm(t *testing.T) {
	inputs := []string{"23:05", "9:05", "2:30 PM", "12:00 AM", "morning", "nonsense"}

	for _, raw := range inputs {
		out := ParseTime(raw)
		require.Len(t, out, 5, "output for %q", raw)
		require.Equal(t, byte(':'), out[2], "output for %q", raw)
		assert.True(t, IsValidTime(out), "output for %q", raw)
		assert.Equal(t, out, ParseTime(out), "round-trip for %q", raw)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		refYear  int
		expected string
		ok       bool
	}{
		{"december keeps reference year", "Sun, 21 Dec", 2025, "2025-12-21", true},
		{"january rolls to next year", "Thu, 1 Jan", 2025, "2026-01-01", true},
		{"may rolls to next year", "Mon, 5 May", 2025, "2026-05-05", true},
		{"june keeps reference year", "Tue, 10 Jun", 2025, "2025-06-10", true},
		{"full month name", "Sunday, 21 December", 2025, "2025-12-21", true},
		{"case-insensitive", "sun, 21 dec", 2025, "2025-12-21", true},
		{"no comma", "Sun 21 Dec", 2025, "2025-12-21", true},
		{"unknown month", "Sun, 21 Foo", 2025, "", false},
		{"day out of range", "Sun, 40 Dec", 2025, "", false},
		{"day not in month", "Sat, 31 Feb", 2025, "", false},
		{"thirty-first of a short month", "Mon, 31 Apr", 2025, "", false},
		{"leap day in a leap year", "Thu, 29 Feb", 2023, "2024-02-29", true},
		{"leap day in a common year", "Sun, 29 Feb", 2025, "", false},
		{"not a date", "Lunch at noon", 2025, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := ParseDate(tt.raw, tt.refYear)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, date)
		})
	}
}

func TestDetectGMTOffset(t *testing.T) {
	offset, tz, found := DetectGMTOffset("Sun, 21 Dec 23:05 GMT+4 MRU Depart Air Mauritius")
	require.True(t, found)
	assert.Equal(t, "GMT+4", offset)
	assert.Equal(t, "Indian/Mauritius", tz)

	offset, tz, found = DetectGMTOffset("arrival 07:10 GMT+8 next morning")
	require.True(t, found)
	assert.Equal(t, "GMT+8", offset)
	assert.Equal(t, "Asia/Kuala_Lumpur", tz)

	// Unmapped offsets keep the raw marker with no timezone name
	offset, tz, found = DetectGMTOffset("meeting at GMT-11")
	require.True(t, found)
	assert.Equal(t, "GMT-11", offset)
	assert.Empty(t, tz)

	_, _, found = DetectGMTOffset("no marker here")
	assert.False(t, found)
}

func TestAddHours(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		hours    int
		expected string
	}{
		{"plain addition", "09:00", 2, "11:00"},
		{"keeps minutes", "10:30", 2, "12:30"},
		{"clamps at hour 23", "22:30", 2, "23:30"},
		{"late start never precedes itself", "23:05", 2, "23:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AddHours(tt.start, tt.hours)
			assert.Equal(t, tt.expected, out)
			assert.GreaterOrEqual(t, out, tt.start)
		})
	}
}
