package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave/internal/config"
	"github.com/tripweave/tripweave/internal/extract"
	"github.com/tripweave/tripweave/internal/itinerary"
	"github.com/tripweave/tripweave/internal/storage/sqlite"
	"github.com/tripweave/tripweave/pkg/logger"
)

// stubStrategy records whether it ran and answers with a fixed result/error.
type stubStrategy struct {
	called bool
	result *itinerary.ParseResult
	err    error
}

func (s *stubStrategy) Parse(ctx context.Context, req itinerary.Request) (*itinerary.ParseResult, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(t *testing.T, rule, model itinerary.Strategy) http.Handler {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Format: "json"})
	require.NoError(t, err)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	geocache := sqlite.NewGeocodeCache(db, log)

	cfg := config.Default()
	return NewRouter(rule, model, geocache, cfg, log).Routes()
}

func postParse(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeParse(t *testing.T, rec *httptest.ResponseRecorder) parseResponse {
	t.Helper()
	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// a raw text body comfortably over the minimum length check
const longEnough = `{"rawText": "Sun, 21 Dec 23:05 MRU Depart Air Mauritius MK647 and some more lines"}`

func TestParseItinerarySuccess(t *testing.T) {
	rule := &stubStrategy{result: &itinerary.ParseResult{
		Days: []itinerary.ParsedDay{{Date: "2025-12-21"}},
	}}
	router := newTestRouter(t, rule, &stubStrategy{})

	rec := postParse(t, router, "/api/v1/itinerary/parse", longEnough)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeParse(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Parsed)
	assert.Equal(t, "2025-12-21", resp.Parsed.Days[0].Date)
	assert.True(t, rule.called)
}

func TestParseItineraryMissingText(t *testing.T) {
	rule := &stubStrategy{}
	router := newTestRouter(t, rule, &stubStrategy{})

	for _, body := range []string{`{}`, `{"rawText": ""}`, `not json`} {
		rec := postParse(t, router, "/api/v1/itinerary/parse", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, msgMissingText, decodeParse(t, rec).Error)
	}
	assert.False(t, rule.called, "validation failures must not reach the strategy")
}

func TestParseItineraryTextTooShort(t *testing.T) {
	rule := &stubStrategy{}
	router := newTestRouter(t, rule, &stubStrategy{})

	rec := postParse(t, router, "/api/v1/itinerary/parse", `{"rawText": "too short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgTextTooShort, decodeParse(t, rec).Error)
	assert.False(t, rule.called)
}

func TestParseItineraryUnparseable(t *testing.T) {
	rule := &stubStrategy{err: itinerary.ErrNoActivities}
	router := newTestRouter(t, rule, &stubStrategy{})

	rec := postParse(t, router, "/api/v1/itinerary/parse", longEnough)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, msgCouldNotParse, decodeParse(t, rec).Error)
}

func TestParseItineraryAIRoutesToModelStrategy(t *testing.T) {
	rule := &stubStrategy{}
	model := &stubStrategy{err: extract.ErrNoToolCall}
	router := newTestRouter(t, rule, model)

	rec := postParse(t, router, "/api/v1/itinerary/parse-ai", longEnough)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, model.called)
	assert.False(t, rule.called)
}

func TestParseItineraryUpstreamFailure(t *testing.T) {
	model := &stubStrategy{err: errors.New("model request failed: 500")}
	router := newTestRouter(t, &stubStrategy{}, model)

	rec := postParse(t, router, "/api/v1/itinerary/parse-ai", longEnough)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, msgUpstreamDown, decodeParse(t, rec).Error)
}

func TestGetGeocacheStats(t *testing.T) {
	router := newTestRouter(t, &stubStrategy{}, &stubStrategy{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/geocache/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 0, stats["entries"])
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(t, &stubStrategy{}, &stubStrategy{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetConfigRedactsSecrets(t *testing.T) {
	router := newTestRouter(t, &stubStrategy{}, &stubStrategy{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/config", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "api_key")
	assert.NotContains(t, rec.Body.String(), "sk-")
}
