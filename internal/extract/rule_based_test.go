package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave/internal/geocode"
	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/pkg/logger"
)

type fakeGeocoder struct {
	calls int
	found bool
	lat   float64
	lng   float64
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) (float64, float64, bool, error) {
	f.calls++
	return f.lat, f.lng, f.found, nil
}

func newRuleBased(t *testing.T, searcher geocode.Searcher) (*RuleBased, *logger.Logger) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	require.NoError(t, err)

	resolver := geocode.NewResolver(searcher, nil, geocode.Config{
		RequestDelayMs:       1,
		MaxLookupsPerRequest: 15,
		FallbackName:         "Kuala Lumpur city centre",
		FallbackLat:          3.1390,
		FallbackLng:          101.6869,
	}, log)

	return NewRuleBased(resolver, log), log
}

func TestRuleBasedParseFlightAndDictionary(t *testing.T) {
	geocoder := &fakeGeocoder{}
	strategy, _ := newRuleBased(t, geocoder)

	req := itinerary.Request{
		RawText: strings.Join([]string{
			"Sun, 21 Dec 23:05 MRU Depart Air Mauritius MK647",
			"Mon, 22 Dec 10:00 Batu Caves",
		}, "\n"),
		TripContext: &itinerary.TripContext{StartDate: "2025-12-21"},
	}

	result, err := strategy.Parse(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Days, 2)
	assert.Equal(t, "2025-12-21", result.Days[0].Date)
	assert.Equal(t, "2025-12-22", result.Days[1].Date)
	assert.Equal(t, "23:05", result.Days[0].Activities[0].StartTime)

	require.Len(t, result.Locations, 2)
	byName := make(map[string]itinerary.ParsedLocation)
	for _, loc := range result.Locations {
		byName[loc.Name] = loc
		assert.NotEmpty(t, loc.ID)
	}

	flight := byName["MRU Depart Air Mauritius MK647"]
	assert.Equal(t, itinerary.CategoryFlight, flight.Category)

	caves := byName["Batu Caves"]
	assert.Equal(t, itinerary.ConfidenceHigh, caves.Confidence)
	assert.Equal(t, itinerary.CategoryTemple, caves.Category)

	// Each activity references a real location from the same result
	ids := make(map[string]bool)
	for _, loc := range result.Locations {
		ids[loc.ID] = true
	}
	for _, day := range result.Days {
		for _, act := range day.Activities {
			if act.LocationID != "" {
				assert.True(t, ids[act.LocationID])
			}
		}
	}
}

func TestRuleBasedParseRestDay(t *testing.T) {
	strategy, _ := newRuleBased(t, &fakeGeocoder{})

	req := itinerary.Request{
		RawText:     "Wed, 24 Dec Rest Day\npadding so the text is long enough to be plausible",
		TripContext: &itinerary.TripContext{StartDate: "2025-12-21"},
	}

	result, err := strategy.Parse(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Days, 1)
	require.Len(t, result.Days[0].Activities, 1)
	act := result.Days[0].Activities[0]
	assert.Equal(t, "09:00", act.StartTime)
	assert.Equal(t, "20:00", act.EndTime)
	assert.True(t, act.IsFlexible)
	assert.Empty(t, act.LocationID, "rest days carry no location")
	assert.Empty(t, result.Locations)
}

func TestRuleBasedParseNoActivities(t *testing.T) {
	geocoder := &fakeGeocoder{}
	strategy, _ := newRuleBased(t, geocoder)

	_, err := strategy.Parse(context.Background(), itinerary.Request{
		RawText: "This paragraph describes a lovely holiday but contains no dated entries whatsoever.",
	})

	assert.ErrorIs(t, err, itinerary.ErrNoActivities)
	assert.Zero(t, geocoder.calls)
}

func TestRuleBasedParseDetectsTimezone(t *testing.T) {
	strategy, _ := newRuleBased(t, &fakeGeocoder{})

	result, err := strategy.Parse(context.Background(), itinerary.Request{
		RawText:     "Sun, 21 Dec 23:05 (GMT+8) Arrive KUL Malaysia Airlines",
		TripContext: &itinerary.TripContext{StartDate: "2025-12-21"},
	})
	require.NoError(t, err)

	assert.Equal(t, "GMT+8", result.DetectedGMTOffset)
	assert.Equal(t, "Asia/Kuala_Lumpur", result.DetectedTimezone)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "GMT+8")
}

func TestRuleBasedParseDeduplicatesLookups(t *testing.T) {
	geocoder := &fakeGeocoder{found: true, lat: 3.0, lng: 101.0}
	strategy, _ := newRuleBased(t, geocoder)

	req := itinerary.Request{
		RawText: strings.Join([]string{
			"Mon, 22 Dec 09:00 Quiet Corner Homestay",
			"Mon, 22 Dec 20:00 quiet corner homestay",
		}, "\n"),
		TripContext: &itinerary.TripContext{StartDate: "2025-12-22"},
	}

	result, err := strategy.Parse(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, result.Locations, 1)
	assert.Equal(t, 1, geocoder.calls)
	require.Len(t, result.Days, 1)
	assert.Len(t, result.Days[0].Activities, 2)
}

func TestRuleBasedParseUnresolvedGetsFallback(t *testing.T) {
	strategy, _ := newRuleBased(t, &fakeGeocoder{found: false})

	result, err := strategy.Parse(context.Background(), itinerary.Request{
		RawText:     "Mon, 22 Dec 09:00 Some Place Nobody Has Heard Of",
		TripContext: &itinerary.TripContext{StartDate: "2025-12-22"},
	})
	require.NoError(t, err)

	require.Len(t, result.Locations, 1)
	loc := result.Locations[0]
	assert.Equal(t, itinerary.ConfidenceLow, loc.Confidence)
	assert.InDelta(t, 3.1390, loc.Lat, 0.0001)

	var found bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "Some Place Nobody Has Heard Of") {
			found = true
		}
	}
	assert.True(t, found, "fallback resolution must warn")
}

func TestReferenceYear(t *testing.T) {
	assert.Equal(t, 2025, referenceYear(&itinerary.TripContext{StartDate: "2025-12-21"}))
	assert.Equal(t, 2031, referenceYear(&itinerary.TripContext{StartDate: "2031-01-02"}))

	// Missing or malformed context falls back to the current year
	assert.Greater(t, referenceYear(nil), 2020)
	assert.Greater(t, referenceYear(&itinerary.TripContext{StartDate: "soon"}), 2020)
}
