package itinerary

import (
	"context"
	"errors"
)

// Category classifies what kind of place or activity an entry is.
type Category string

// The closed set of categories the pipeline emits. Anything the classifier
// cannot place lands on CategoryAttraction.
const (
	CategoryRestaurant Category = "restaurant"
	CategoryAttraction Category = "attraction"
	CategoryShopping   Category = "shopping"
	CategoryNature     Category = "nature"
	CategoryTemple     Category = "temple"
	CategoryHotel      Category = "hotel"
	CategoryTransport  Category = "transport"
	CategoryMedical    Category = "medical"
	CategoryPlayground Category = "playground"
	CategoryFlight     Category = "flight"
	CategoryLogistics  Category = "logistics"
	CategoryFlexible   Category = "flexible"
)

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryRestaurant, CategoryAttraction, CategoryShopping, CategoryNature,
		CategoryTemple, CategoryHotel, CategoryTransport, CategoryMedical,
		CategoryPlayground, CategoryFlight, CategoryLogistics, CategoryFlexible:
		return true
	}
	return false
}

// Confidence labels how trustworthy a resolved coordinate is.
type Confidence string

const (
	// ConfidenceHigh means the coordinates came from a verified dictionary
	// or authoritative lookup.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium means a city-level approximation (e.g. a geocoder's
	// best guess for the name).
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow means the default fallback coordinate was used.
	ConfidenceLow Confidence = "low"
)

// ParsedLocation is a geolocated place extracted from the source text.
type ParsedLocation struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Category     Category   `json:"category"`
	Confidence   Confidence `json:"confidence"`
	OriginalText string     `json:"originalText,omitempty"`
}

// ScheduleItem is a single timed activity within a day.
type ScheduleItem struct {
	ID           string `json:"id"`
	LocationID   string `json:"locationId,omitempty"`
	StartTime    string `json:"startTime"` // canonical HH:MM, 24-hour
	EndTime      string `json:"endTime"`   // canonical HH:MM, 24-hour
	Notes        string `json:"notes,omitempty"`
	IsFlexible   bool   `json:"isFlexible"`
	OriginalText string `json:"originalText,omitempty"`
}

// ParsedDay groups the activities of a single calendar day.
type ParsedDay struct {
	Date       string         `json:"date"` // canonical YYYY-MM-DD
	Title      string         `json:"title,omitempty"`
	Activities []ScheduleItem `json:"activities"`
}

// ParseResult is the normalized output shared by both extraction strategies.
type ParseResult struct {
	Locations         []ParsedLocation `json:"locations"`
	Days              []ParsedDay      `json:"days"`
	Warnings          []string         `json:"warnings"`
	Suggestions       []string         `json:"suggestions"`
	DetectedTimezone  string           `json:"detectedTimezone,omitempty"`
	DetectedGMTOffset string           `json:"detectedGmtOffset,omitempty"`
}

// TripContext carries optional trip metadata supplied by the caller. It
// steers geocoding scope, the reference year for date resolution and
// traveler-aware suggestions.
type TripContext struct {
	Name         string `json:"name,omitempty"`
	Destination  string `json:"destination,omitempty"`
	StartDate    string `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate      string `json:"endDate,omitempty"`   // YYYY-MM-DD
	TravelerInfo string `json:"travelerInfo,omitempty"`
}

// Request is the input to either extraction strategy.
type Request struct {
	RawText     string       `json:"rawText"`
	TripContext *TripContext `json:"tripContext,omitempty"`
}

// MinRawTextLen is the shortest input accepted as a plausible itinerary.
const MinRawTextLen = 50

// ErrNoActivities is returned when extraction produced zero activities.
// The pipeline is all-or-nothing at the activity-count level: there is no
// useful partial-success shape below one activity.
var ErrNoActivities = errors.New("no activities could be extracted from the input")

// Strategy is an extraction strategy turning raw itinerary text into a
// ParseResult. Both the deterministic parser and the language-model
// extractor implement it; the caller picks which one to invoke.
type Strategy interface {
	Parse(ctx context.Context, req Request) (*ParseResult, error)
}
