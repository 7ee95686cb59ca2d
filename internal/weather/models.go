package weather

import (
	"time"
)

// Health levels mirror the AQI-style buckets the dashboard colors by.
const (
	HealthGood          = "Good"
	HealthModerate      = "Moderate"
	HealthSensitive     = "Unhealthy for Sensitive Groups"
	HealthUnhealthy     = "Unhealthy"
	HealthVeryUnhealthy = "Very Unhealthy"
	HealthHazardous     = "Hazardous"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// City is a roster entry: a named place with known coordinates.
type City struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// CityObservation is the raw-normalized, provider-agnostic record produced by
// a single successful provider call. It is created fresh per fetch and never
// mutated; the next fetch for the same city supersedes it.
//
// WeatherIndex is a synthetic 0-500 severity scalar (lower is better)
// computed from temperature/humidity/wind when only weather data is
// available; a legacy air-quality source reports its true AQI here and
// populates the pollutant fields, which are otherwise zero.
type CityObservation struct {
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`

	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	Pressure    float64 `json:"pressure"`    // hPa
	WindSpeed   float64 `json:"windSpeed"`   // km/h

	WeatherIndex int    `json:"weatherIndex"` // 0-500, lower is better
	Condition    string `json:"weatherCondition"`
	HealthLevel  string `json:"healthLevel"`

	// Legacy pollutant fields, populated only by air-quality sources.
	PM25              float64 `json:"pm25"`
	PM10              float64 `json:"pm10"`
	NO2               float64 `json:"no2"`
	SO2               float64 `json:"so2"`
	O3                float64 `json:"o3"`
	CO                float64 `json:"co"`
	DominantPollutant string  `json:"dominantPollutant,omitempty"`

	Location  string    `json:"location"`  // "City, Country"
	Timestamp time.Time `json:"timestamp"` // provider observation time, not fetch time
	Source    string    `json:"apiSource"`
}

// ProcessedRecord is the canonical consumer-facing record: one observation
// plus derived meteorological fields the upstream API does not supply.
// Exactly one ProcessedRecord is created per CityObservation; it is
// immutable once built.
type ProcessedRecord struct {
	CityObservation

	Precipitation float64 `json:"precipitation"` // mm, estimated, >= 0
	FeelsLike     float64 `json:"feelsLike"`     // °C
	Visibility    float64 `json:"visibility"`    // km, clamped [1,15]
	UVIndex       float64 `json:"uvIndex"`       // clamped [0,11], stochastic estimate
}
