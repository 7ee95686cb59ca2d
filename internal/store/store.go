package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no cached row matches a lookup.
var ErrNotFound = errors.New("no cached weather data")

// CachedRow is one append-only row of the cached_weather_data table.
// Rows are never updated or deleted; the most recent CachedAt per city is
// authoritative and stale rows are simply superseded.
type CachedRow struct {
	CityName          string    `json:"city_name"`
	Temperature       float64   `json:"temperature"`
	Humidity          float64   `json:"humidity"`
	Pressure          float64   `json:"pressure"`
	WindSpeed         float64   `json:"wind_speed"`
	Precipitation     float64   `json:"precipitation"`
	FeelsLike         float64   `json:"feels_like"`
	Visibility        float64   `json:"visibility"`
	UVIndex           float64   `json:"uv_index"`
	WeatherIndex      int       `json:"weather_index"`
	WeatherCondition  string    `json:"weather_condition"`
	HealthLevel       string    `json:"health_level"`
	DominantPollutant string    `json:"dominant_pollutant"`
	PM25              float64   `json:"pm25"`
	PM10              float64   `json:"pm10"`
	NO2               float64   `json:"no2"`
	SO2               float64   `json:"so2"`
	O3                float64   `json:"o3"`
	CO                float64   `json:"co"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	APISource         string    `json:"api_source"`
	Timestamp         time.Time `json:"timestamp"` // provider observation time
	CachedAt          time.Time `json:"cached_at"` // server-assigned
}

// RowStore is the durable cache contract. Implementations must be tolerant
// callees: the read-through layer treats every error as a cache miss, never
// as a request failure.
type RowStore interface {
	// Insert appends a row. CachedAt is assigned by the store.
	Insert(ctx context.Context, row CachedRow) error

	// FindLatestByCity returns the newest row whose city name matches the
	// given name case-insensitively as a substring, or ErrNotFound.
	FindLatestByCity(ctx context.Context, name string) (*CachedRow, error)

	// ListRecent returns rows ordered by CachedAt descending. The caller is
	// responsible for deduplicating by city before aggregating.
	ListRecent(ctx context.Context) ([]CachedRow, error)
}
