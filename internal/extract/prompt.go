package extract

import (
	"fmt"
	"strings"

	"github.com/tripweave/tripweave/internal/itinerary"
)

// extractToolName is the tool the model must invoke to return its answer.
const extractToolName = "extract_itinerary"

// buildSystemPrompt assembles the extraction instructions: the recognized
// activity archetypes, the duration inference table, time parsing rules, the
// coordinate confidence rubric, and the message templates warnings and
// suggestions must be drawn from.
func buildSystemPrompt(trip *itinerary.TripContext) string {
	var b strings.Builder

	b.WriteString("You are an itinerary extraction engine for a family trip-planning app. ")
	b.WriteString("You convert pasted travel text (itinerary exports, emails, assistant transcripts) into a normalized, geolocated, day-grouped schedule. ")
	b.WriteString("You MUST return your answer by invoking the " + extractToolName + " tool. Never answer in free text.\n\n")

	if trip != nil {
		b.WriteString("Trip context:\n")
		if trip.Name != "" {
			fmt.Fprintf(&b, "- Trip name: %s\n", trip.Name)
		}
		if trip.Destination != "" {
			fmt.Fprintf(&b, "- Destination: %s\n", trip.Destination)
		}
		if trip.StartDate != "" || trip.EndDate != "" {
			fmt.Fprintf(&b, "- Date range: %s to %s\n", trip.StartDate, trip.EndDate)
		}
		if trip.TravelerInfo != "" {
			fmt.Fprintf(&b, "- Travelers: %s\n", trip.TravelerInfo)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Activity archetypes you must recognize:
1. Flights: airline code + flight number (e.g. MK647), departure/arrival wording. Category "flight". Use the airport as the location.
2. Check-in/check-out logistics: hotel arrivals and departures. Category "logistics" for the act, "hotel" for the place.
3. Rest or flexible days: "Rest Day", free days. Category "flexible", no location, span 09:00-20:00, isFlexible true.
4. Multi-location split entries: one line naming several places becomes one activity per place, splitting the time window. Add a warning when you split.
5. Regular activities: everything else - attractions, meals, shopping, nature.

Duration inference when no end time is given:
- flight: use the stated arrival time, otherwise 4 hours
- logistics (check-in/check-out): 1 hour
- restaurant/meal: 1.5 hours
- playground/theme park: 3 hours
- everything else: 2 hours

Time rules:
- Output times as zero-padded 24-hour HH:MM and dates as YYYY-MM-DD.
- 12 PM is 12:00, 12 AM is 00:00.
- "morning" is 09:00, "afternoon" 14:00, "evening" 18:00, "night" 20:00.
- Never let endTime precede startTime within a day; flag overnight spans in warnings instead.
- If the text carries a GMT offset marker, set detectedGmtOffset (e.g. "GMT+8") and detectedTimezone when you know the IANA name.

Coordinate confidence rubric:
- "high": you are certain of the exact place and its coordinates.
- "medium": city-level approximation or a best guess among candidates.
- "low": you could not place it; use the trip destination's center and say so in a warning.

Categories (closed set): restaurant, attraction, shopping, nature, temple, hotel, transport, medical, playground, flight, logistics, flexible.

Warning templates (adapt the bracketed parts only):
- "Could not locate [name] - using approximate coordinates, please verify on the map"
- "Assumed a [n]-hour duration for [name]"
- "Split [line] into separate entries per location"
- "Rest day on [date]: flexible time from 09:00 to 20:00, adjust as needed"
- "Skipped [code] - looks like a booking reference, not a schedule entry"

Suggestion templates:
- "Add buffer time between activities - back-to-back schedules rarely survive a family trip"
- "Check traffic conditions for days with several stops; city driving can take twice the estimate"
- "Plan outdoor activities before noon and keep afternoons light - toddler nap time is non-negotiable"
`)

	return b.String()
}

// buildUserInput wraps the raw itinerary text for the model.
func buildUserInput(req itinerary.Request) string {
	return "Itinerary text to extract:\n\n" + req.RawText
}
