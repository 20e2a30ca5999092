package itinerary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PendingActivity is an extracted activity before assembly: it references
// its location by name rather than id, and carries the date it belongs to.
type PendingActivity struct {
	Date         string
	LocationName string
	StartTime    string
	EndTime      string
	Notes        string
	IsFlexible   bool
	OriginalText string
}

// Assemble finalizes a parse from either strategy: it deduplicates locations
// by case-insensitive name (first occurrence wins), mints ids, links
// activities to locations by name, groups activities into date-sorted days
// with start-time-sorted activities, and folds the detected timezone into
// the warning list.
//
// dayTitles optionally maps a date to a theme label for that day. Activities
// without a date are dropped with a warning; days end up non-empty by
// construction.
func Assemble(
	locations []ParsedLocation,
	activities []PendingActivity,
	dayTitles map[string]string,
	warnings, suggestions []string,
	tzOffset, tzName string,
) *ParseResult {
	result := &ParseResult{
		Locations:         []ParsedLocation{},
		Days:              []ParsedDay{},
		Warnings:          []string{},
		Suggestions:       []string{},
		DetectedGMTOffset: tzOffset,
		DetectedTimezone:  tzName,
	}

	// Deduplicate locations, first occurrence wins, and mint missing ids.
	idByName := make(map[string]string)
	for _, loc := range locations {
		key := strings.ToLower(strings.TrimSpace(loc.Name))
		if key == "" {
			continue
		}
		if _, seen := idByName[key]; seen {
			continue
		}
		if loc.ID == "" {
			loc.ID = uuid.NewString()
		}
		idByName[key] = loc.ID
		result.Locations = append(result.Locations, loc)
	}

	// Group activities by date, linking each to its location by name.
	byDate := make(map[string][]ScheduleItem)
	dropped := 0
	for _, pending := range activities {
		if pending.Date == "" {
			dropped++
			continue
		}

		item := ScheduleItem{
			ID:           uuid.NewString(),
			LocationID:   idByName[strings.ToLower(strings.TrimSpace(pending.LocationName))],
			StartTime:    pending.StartTime,
			EndTime:      pending.EndTime,
			Notes:        pending.Notes,
			IsFlexible:   pending.IsFlexible,
			OriginalText: pending.OriginalText,
		}
		byDate[pending.Date] = append(byDate[pending.Date], item)
	}
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d entries had no date and were skipped", dropped))
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		items := byDate[date]
		// Canonical HH:MM is zero-padded, so lexicographic order is
		// chronological order.
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].StartTime < items[j].StartTime
		})
		result.Days = append(result.Days, ParsedDay{
			Date:       date,
			Title:      dayTitles[date],
			Activities: items,
		})
	}

	// A detected timezone leads the warning list so users see it before any
	// per-entry notes.
	if tzOffset != "" {
		note := fmt.Sprintf("Detected timezone marker %s in the itinerary", tzOffset)
		if tzName != "" {
			note = fmt.Sprintf("Detected timezone marker %s (%s) in the itinerary", tzOffset, tzName)
		}
		result.Warnings = append(result.Warnings, note)
	}
	result.Warnings = append(result.Warnings, warnings...)
	result.Suggestions = append(result.Suggestions, suggestions...)

	return result
}

// DefaultSuggestions derives itinerary improvement hints from the assembled
// result and the trip context. The deterministic path uses these; the
// language-model path gets its suggestions from the model.
func DefaultSuggestions(result *ParseResult, trip *TripContext) []string {
	var suggestions []string

	busiest := 0
	for _, day := range result.Days {
		if len(day.Activities) > busiest {
			busiest = len(day.Activities)
		}
	}

	if busiest >= 3 {
		suggestions = append(suggestions,
			"Add buffer time between activities - back-to-back schedules rarely survive a family trip")
		suggestions = append(suggestions,
			"Check traffic conditions for days with several stops; city driving can take twice the estimate")
	}

	if trip != nil && hasToddler(trip.TravelerInfo) {
		suggestions = append(suggestions,
			"Plan outdoor activities before noon and keep afternoons light - toddler nap time is non-negotiable")
	}

	return suggestions
}

// hasToddler reports whether the traveler description mentions small children.
func hasToddler(travelerInfo string) bool {
	lower := strings.ToLower(travelerInfo)
	for _, keyword := range []string{"toddler", "baby", "infant", "kid", "child"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
