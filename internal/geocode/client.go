package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripweave/tripweave/pkg/logger"
)

// Client performs free-text searches against a Nominatim-style geocoding
// service, returning the single best-guess coordinate for a query.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	countryCode string
	logger      *logger.Logger
}

// NewClient creates a new geocoding client
func NewClient(baseURL, countryCode string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("geocode-cli"),
	}
}

// searchResult is one entry of the geocoding service's response. Nominatim
// encodes coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search queries the geocoding service for a place name, scoped to the
// configured country. It returns found=false when the service has no match;
// transport and decode problems are returned as errors.
func (c *Client) Search(ctx context.Context, query string) (lat, lng float64, found bool, err error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.countryCode != "" {
		params.Set("countrycodes", c.countryCode)
	}

	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	// Nominatim usage policy requires an identifying user agent
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "TripWeave/1.0")

	c.logger.Debug("Geocoding lookup",
		logger.String("query", query),
		logger.String("url", searchURL),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Check response status
	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, 0, false, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(results) == 0 {
		c.logger.Debug("Geocoding returned no results", logger.String("query", query))
		return 0, 0, false, nil
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to parse latitude %q: %w", results[0].Lat, err)
	}
	lng, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to parse longitude %q: %w", results[0].Lon, err)
	}

	c.logger.Debug("Geocoding match",
		logger.String("query", query),
		logger.String("display_name", results[0].DisplayName),
		logger.Float64("lat", lat),
		logger.Float64("lng", lng),
	)

	return lat, lng, true, nil
}
