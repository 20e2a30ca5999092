package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripweave/tripweave/internal/config"
	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/internal/storage/sqlite"
	"github.com/tripweave/tripweave/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(ruleStrategy, modelStrategy itinerary.Strategy, geocache *sqlite.GeocodeCache, config *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(ruleStrategy, modelStrategy, geocache, config, logger),
		middleware: NewMiddleware(logger),
		config:     config,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Itinerary ingestion routes
		router.Post("/itinerary/parse", r.handler.ParseItinerary)
		router.Post("/itinerary/parse-ai", r.handler.ParseItineraryAI)

		// Geocode cache
		router.Get("/geocache/stats", r.handler.GetGeocacheStats)

		// Health check
		router.Get("/health", r.handler.GetHealth)

		// Configuration
		router.Get("/config", r.handler.GetConfig)
	})

	return router
}
