package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tripweave/tripweave/internal/config"
	"github.com/tripweave/tripweave/internal/extract"
	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/internal/storage/sqlite"
	"github.com/tripweave/tripweave/pkg/logger"
)

// User-visible error strings. Always short and actionable; upstream error
// bodies are logged, never returned.
const (
	msgMissingText   = "Please paste your itinerary text"
	msgTextTooShort  = "The pasted text doesn't look like a full itinerary. Please paste at least a few lines."
	msgCouldNotParse = "Could not parse the itinerary. Please check the format and try again."
	msgUpstreamDown  = "The itinerary assistant is temporarily unavailable. Please try again in a moment."
)

// Handler handles API requests
type Handler struct {
	ruleStrategy  itinerary.Strategy
	modelStrategy itinerary.Strategy
	geocache      *sqlite.GeocodeCache
	config        *config.Config
	logger        *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(ruleStrategy, modelStrategy itinerary.Strategy, geocache *sqlite.GeocodeCache, config *config.Config, logger *logger.Logger) *Handler {
	return &Handler{
		ruleStrategy:  ruleStrategy,
		modelStrategy: modelStrategy,
		geocache:      geocache,
		config:        config,
		logger:        logger.Named("api-handler"),
	}
}

// parseResponse is the envelope both parse endpoints answer with.
type parseResponse struct {
	Success bool                   `json:"success"`
	Parsed  *itinerary.ParseResult `json:"parsed,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ParseItinerary handles the deterministic parse endpoint
func (h *Handler) ParseItinerary(w http.ResponseWriter, r *http.Request) {
	h.parseWith(w, r, h.ruleStrategy)
}

// ParseItineraryAI handles the language-model parse endpoint
func (h *Handler) ParseItineraryAI(w http.ResponseWriter, r *http.Request) {
	h.parseWith(w, r, h.modelStrategy)
}

// parseWith decodes and validates the request, runs the chosen strategy and
// maps failures onto the two caller-visible error categories.
func (h *Handler) parseWith(w http.ResponseWriter, r *http.Request, strategy itinerary.Strategy) {
	var req itinerary.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeParseError(w, http.StatusBadRequest, msgMissingText)
		return
	}

	// Validation happens before any parsing logic executes
	if req.RawText == "" {
		h.writeParseError(w, http.StatusBadRequest, msgMissingText)
		return
	}
	if len(req.RawText) < itinerary.MinRawTextLen {
		h.writeParseError(w, http.StatusBadRequest, msgTextTooShort)
		return
	}

	start := time.Now()
	result, err := strategy.Parse(r.Context(), req)
	if err != nil {
		// Structural extraction failures are client-correctable: the input
		// format was not recognized. Everything else is an upstream fault.
		if errors.Is(err, itinerary.ErrNoActivities) || errors.Is(err, extract.ErrNoToolCall) {
			h.logger.Info("Itinerary not parseable",
				logger.Int("text_len", len(req.RawText)),
				logger.Error(err))
			h.writeParseError(w, http.StatusUnprocessableEntity, msgCouldNotParse)
			return
		}

		h.logger.Error("Itinerary parse failed", logger.Error(err))
		h.writeParseError(w, http.StatusBadGateway, msgUpstreamDown)
		return
	}

	h.logger.Info("Itinerary parsed",
		logger.Int("days", len(result.Days)),
		logger.Int("locations", len(result.Locations)),
		logger.Duration("duration", time.Since(start)))

	h.writeJSON(w, http.StatusOK, parseResponse{Success: true, Parsed: result})
}

// GetGeocacheStats returns row counts and recent entries of the geocode cache
func (h *Handler) GetGeocacheStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.geocache.Count()
	if err != nil {
		h.logger.Error("Failed to read geocode cache stats", logger.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache unavailable"})
		return
	}

	recent, err := h.geocache.Recent(10)
	if err != nil {
		h.logger.Error("Failed to read recent geocode cache entries", logger.Error(err))
		recent = nil
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": count,
		"recent":  recent,
	})
}

// GetHealth handles the health check endpoint
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// GetConfig returns the non-sensitive parts of the runtime configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"geocoding": map[string]interface{}{
			"country_code":            h.config.Geocoding.CountryCode,
			"max_lookups_per_request": h.config.Geocoding.MaxLookupsPerRequest,
			"fallback_name":           h.config.Geocoding.FallbackName,
		},
		"openai": map[string]interface{}{
			"model": h.config.OpenAI.Model,
		},
	})
}

func (h *Handler) writeParseError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, parseResponse{Success: false, Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}
