package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tripweave/tripweave/pkg/logger"
)

// GeocodeCacheRecord represents a cached geocoding result
type GeocodeCacheRecord struct {
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GeocodeCache handles storage of geocoding results so repeated lookups for
// the same place never hit the external service twice.
type GeocodeCache struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewGeocodeCache creates a new SQLite geocode cache
func NewGeocodeCache(db *sql.DB, logger *logger.Logger) *GeocodeCache {
	cache := &GeocodeCache{
		db:     db,
		logger: logger.Named("sqlite-geocache"),
	}

	// Initialize database
	if err := cache.initDB(); err != nil {
		logger.Error("Failed to initialize geocode cache", Error(err))
	}

	return cache
}

// initDB initializes the database tables
func (c *GeocodeCache) initDB() error {
	// The name column is the normalized (lowercased, trimmed) place name
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			name TEXT PRIMARY KEY,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create geocode_cache table: %w", err)
	}

	return nil
}

// Get returns the cached coordinates for a normalized place name.
func (c *GeocodeCache) Get(name string) (lat, lng float64, ok bool, err error) {
	row := c.db.QueryRow(
		`SELECT lat, lng FROM geocode_cache WHERE name = ?`,
		name,
	)

	if err := row.Scan(&lat, &lng); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("failed to query geocode cache: %w", err)
	}

	return lat, lng, true, nil
}

// Put upserts a geocoding result by name. Writes are idempotent, so
// concurrent requests caching the same place are harmless.
func (c *GeocodeCache) Put(name string, lat, lng float64) error {
	_, err := c.db.Exec(
		`INSERT INTO geocode_cache (name, lat, lng, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET lat = excluded.lat, lng = excluded.lng, updated_at = excluded.updated_at`,
		name,
		lat,
		lng,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert geocode cache entry: %w", err)
	}

	return nil
}

// Count returns the number of cached entries.
func (c *GeocodeCache) Count() (int64, error) {
	var count int64
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM geocode_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count geocode cache entries: %w", err)
	}
	return count, nil
}

// Recent returns the most recently updated cache entries, newest first.
func (c *GeocodeCache) Recent(limit int) ([]*GeocodeCacheRecord, error) {
	rows, err := c.db.Query(
		`SELECT name, lat, lng, updated_at
		FROM geocode_cache
		ORDER BY updated_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query geocode cache: %w", err)
	}
	defer rows.Close()

	var records []*GeocodeCacheRecord
	for rows.Next() {
		var record GeocodeCacheRecord
		var updatedAt string

		if err := rows.Scan(&record.Name, &record.Lat, &record.Lng, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan geocode cache entry: %w", err)
		}

		record.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		records = append(records, &record)
	}

	return records, nil
}
