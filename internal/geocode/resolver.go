package geocode

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/pkg/logger"
)

// Matches "lat, lng" coordinate pairs embedded directly in address text.
var embeddedCoordsRe = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*,\s*(-?\d{1,3}\.\d+)`)

// Searcher is the external geocoding dependency of the resolver. *Client
// satisfies it; tests substitute a fake.
type Searcher interface {
	Search(ctx context.Context, query string) (lat, lng float64, found bool, err error)
}

// Resolver resolves place names to coordinates through a tiered strategy:
// known-location dictionary, embedded-coordinate extraction, cached external
// geocoding, and finally a fixed fallback coordinate. External lookups share
// one rate limiter across all requests so the service stays inside the
// geocoder's usage budget.
type Resolver struct {
	client  Searcher
	cache   Cache
	memory  sync.Map // process-local name -> [2]float64 layer in front of the cache
	limiter *rate.Limiter
	config  Config
	logger  *logger.Logger
}

// NewResolver creates a new location resolver
func NewResolver(client Searcher, cache Cache, config Config, logger *logger.Logger) *Resolver {
	delay := time.Duration(config.RequestDelayMs) * time.Millisecond
	if delay <= 0 {
		delay = 1100 * time.Millisecond
	}

	return &Resolver{
		client:  client,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		config:  config,
		logger:  logger.Named("geocode-resolver"),
	}
}

// Session tracks per-request resolution state: how many external lookups
// were spent against the cap, and the warnings accumulated along the way.
// Sessions are used from a single goroutine; lookups within one request are
// sequential by construction.
type Session struct {
	resolver *Resolver
	lookups  int
	skipped  int
	warnings []string
}

// NewSession starts a resolution session for one parse request.
func (r *Resolver) NewSession() *Session {
	return &Session{resolver: r}
}

// Resolve resolves a single place name, trying each tier only if the
// previous one yielded nothing. It never fails: an unresolvable name
// degrades to the fallback coordinate with low confidence plus a warning.
func (s *Session) Resolve(ctx context.Context, name, address string) Result {
	r := s.resolver

	// Tier 1: known-location dictionary
	if loc, ok := lookupKnown(name); ok {
		r.logger.Debug("Resolved from known-location dictionary",
			logger.String("name", name),
			logger.String("matched", loc.name))
		return Result{
			Lat:        loc.lat,
			Lng:        loc.lng,
			Category:   loc.category,
			Confidence: itinerary.ConfidenceHigh,
		}
	}

	// Tier 2: coordinates embedded in the address text itself
	if lat, lng, ok := extractEmbeddedCoords(address); ok {
		r.logger.Debug("Resolved from embedded coordinates",
			logger.String("name", name),
			logger.Float64("lat", lat),
			logger.Float64("lng", lng))
		return Result{
			Lat:        lat,
			Lng:        lng,
			Category:   itinerary.InferCategory(name),
			Confidence: itinerary.ConfidenceHigh,
		}
	}

	// Tier 3: external geocoding, behind the memory and persistent caches.
	// Cache hits do not consume the per-request lookup cap.
	if lat, lng, ok := r.cachedCoords(name); ok {
		return Result{
			Lat:        lat,
			Lng:        lng,
			Category:   itinerary.InferCategory(name),
			Confidence: itinerary.ConfidenceMedium,
		}
	}

	if lat, lng, ok := s.externalLookup(ctx, name); ok {
		return Result{
			Lat:        lat,
			Lng:        lng,
			Category:   itinerary.InferCategory(name),
			Confidence: itinerary.ConfidenceMedium,
		}
	}

	// Tier 4: fixed fallback coordinate
	s.warnings = append(s.warnings,
		fmt.Sprintf("Could not locate %q - using approximate %s coordinates, please verify on the map", name, r.config.FallbackName))
	return Result{
		Lat:        r.config.FallbackLat,
		Lng:        r.config.FallbackLng,
		Category:   itinerary.InferCategory(name),
		Confidence: itinerary.ConfidenceLow,
	}
}

// externalLookup performs one rate-limited external geocoding call, honoring
// the per-request cap. Transport failures degrade silently to the fallback
// tier; they are logged, never propagated.
func (s *Session) externalLookup(ctx context.Context, name string) (lat, lng float64, ok bool) {
	r := s.resolver

	if r.client == nil {
		return 0, 0, false
	}

	if s.lookups >= r.config.MaxLookupsPerRequest {
		s.skipped++
		return 0, 0, false
	}
	s.lookups++

	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("Rate limiter wait aborted", logger.Error(err))
		return 0, 0, false
	}

	lat, lng, found, err := r.client.Search(ctx, name)
	if err != nil {
		r.logger.Warn("Geocoding lookup failed",
			logger.String("name", name),
			logger.Error(err))
		return 0, 0, false
	}
	if !found {
		return 0, 0, false
	}

	r.storeCoords(name, lat, lng)
	return lat, lng, true
}

// Warnings returns the warnings collected during this session, including a
// single cap warning when external lookups were skipped.
func (s *Session) Warnings() []string {
	warnings := s.warnings
	if s.skipped > 0 {
		warnings = append(warnings,
			fmt.Sprintf("Geocoding lookup limit reached (%d per request) - %d locations were given approximate coordinates",
				s.resolver.config.MaxLookupsPerRequest, s.skipped))
	}
	return warnings
}

// ExternalLookups returns how many external geocoding calls this session spent.
func (s *Session) ExternalLookups() int {
	return s.lookups
}

// cachedCoords checks the memory layer, then the persistent cache.
func (r *Resolver) cachedCoords(name string) (lat, lng float64, ok bool) {
	key := cacheKey(name)

	if v, hit := r.memory.Load(key); hit {
		coords := v.([2]float64)
		return coords[0], coords[1], true
	}

	if r.cache == nil {
		return 0, 0, false
	}

	lat, lng, ok, err := r.cache.Get(key)
	if err != nil {
		r.logger.Warn("Geocode cache read failed", logger.String("name", name), logger.Error(err))
		return 0, 0, false
	}
	if ok {
		r.memory.Store(key, [2]float64{lat, lng})
	}
	return lat, lng, ok
}

// storeCoords upserts a resolved coordinate into both cache layers.
func (r *Resolver) storeCoords(name string, lat, lng float64) {
	key := cacheKey(name)
	r.memory.Store(key, [2]float64{lat, lng})

	if r.cache == nil {
		return
	}
	if err := r.cache.Put(key, lat, lng); err != nil {
		r.logger.Warn("Geocode cache write failed", logger.String("name", name), logger.Error(err))
	}
}

// Fallback exposes the configured fallback coordinate, used by tests and by
// callers that need to detect degraded resolutions.
func (r *Resolver) Fallback() (lat, lng float64) {
	return r.config.FallbackLat, r.config.FallbackLng
}

// extractEmbeddedCoords pulls a "lat, lng" pair out of address text.
func extractEmbeddedCoords(address string) (lat, lng float64, ok bool) {
	m := embeddedCoordsRe.FindStringSubmatch(address)
	if m == nil {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}

	// Reject pairs that cannot be coordinates
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}

	return lat, lng, true
}

// cacheKey lowercases and trims a place name for cache keying.
func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
