package geocode

import "github.com/tripweave/tripweave/internal/itinerary"

// Config represents configuration for the location resolver.
type Config struct {
	BaseURL              string
	CountryCode          string
	RequestDelayMs       int // minimum spacing between external lookups
	MaxLookupsPerRequest int // external lookup cap per parse request
	TimeoutSeconds       int
	FallbackName         string
	FallbackLat          float64
	FallbackLng          float64
}

// Result is a resolved location: coordinates, a category and a confidence
// label describing how trustworthy the coordinates are.
type Result struct {
	Lat        float64
	Lng        float64
	Category   itinerary.Category
	Confidence itinerary.Confidence
}

// Cache is a persistent name -> coordinate cache consulted before any
// external lookup. Implementations must make Put an idempotent
// upsert-by-key so concurrent requests need no extra locking.
type Cache interface {
	Get(name string) (lat, lng float64, ok bool, err error)
	Put(name string, lat, lng float64) error
}
