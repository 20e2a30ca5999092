package extract

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tripweave/tripweave/internal/geocode"
	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/pkg/logger"
)

// RuleBased is the deterministic extraction strategy: a single-pass line
// scanner over TripIt-style exports, followed by tiered location resolution
// and shared assembly. It is all-or-nothing at the activity level - zero
// recognized entries is a failure, anything more is a success regardless of
// resolution quality.
type RuleBased struct {
	resolver *geocode.Resolver
	logger   *logger.Logger
}

// NewRuleBased creates the deterministic extraction strategy
func NewRuleBased(resolver *geocode.Resolver, logger *logger.Logger) *RuleBased {
	return &RuleBased{
		resolver: resolver,
		logger:   logger.Named("rule-based"),
	}
}

// Ensure the strategy satisfies the shared contract
var _ itinerary.Strategy = (*RuleBased)(nil)

// Parse runs the deterministic pipeline over one request.
func (s *RuleBased) Parse(ctx context.Context, req itinerary.Request) (*itinerary.ParseResult, error) {
	refYear := referenceYear(req.TripContext)
	tzOffset, tzName, _ := itinerary.DetectGMTOffset(req.RawText)

	outcome := scanItinerary(req.RawText, refYear)
	if len(outcome.Activities) == 0 {
		return nil, itinerary.ErrNoActivities
	}

	s.logger.Debug("Scanned itinerary text",
		logger.Int("activities", len(outcome.Activities)),
		logger.Int("reference_year", refYear))

	// Resolve each unique location name once. Lookups are sequential; the
	// session enforces the external-lookup budget and collects warnings.
	session := s.resolver.NewSession()
	var locations []itinerary.ParsedLocation
	seen := make(map[string]bool)

	for _, act := range outcome.Activities {
		name := strings.TrimSpace(act.Name)
		if act.NoLocation || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		resolved := session.Resolve(ctx, name, act.Address)

		category := resolved.Category
		// A line-level verdict (flight legs) beats keyword inference, but
		// not a dictionary hit.
		if act.Category != "" && resolved.Confidence != itinerary.ConfidenceHigh {
			category = act.Category
		}

		locations = append(locations, itinerary.ParsedLocation{
			Name:         name,
			Lat:          resolved.Lat,
			Lng:          resolved.Lng,
			Category:     category,
			Confidence:   resolved.Confidence,
			OriginalText: act.OriginalText,
		})
	}

	pending := make([]itinerary.PendingActivity, 0, len(outcome.Activities))
	for _, act := range outcome.Activities {
		locationName := act.Name
		if act.NoLocation {
			locationName = ""
		}
		pending = append(pending, itinerary.PendingActivity{
			Date:         act.Date,
			LocationName: locationName,
			StartTime:    act.StartTime,
			EndTime:      act.EndTime,
			Notes:        act.Notes,
			IsFlexible:   act.Flexible,
			OriginalText: act.OriginalText,
		})
	}

	warnings := append(outcome.Warnings, session.Warnings()...)
	result := itinerary.Assemble(locations, pending, nil, warnings, nil, tzOffset, tzName)
	result.Suggestions = append(result.Suggestions, itinerary.DefaultSuggestions(result, req.TripContext)...)

	s.logger.Info("Parsed itinerary",
		logger.Int("days", len(result.Days)),
		logger.Int("locations", len(result.Locations)),
		logger.Int("external_lookups", session.ExternalLookups()),
		logger.Int("warnings", len(result.Warnings)))

	return result, nil
}

// referenceYear picks the year anchoring partial dates: the trip's start
// year when the caller supplied one, the current year otherwise.
func referenceYear(trip *itinerary.TripContext) int {
	if trip != nil && len(trip.StartDate) >= 4 {
		if year, err := strconv.Atoi(trip.StartDate[:4]); err == nil && year > 2000 {
			return year
		}
	}
	return time.Now().UTC().Year()
}
