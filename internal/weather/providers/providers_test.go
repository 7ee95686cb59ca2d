package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

func TestWeatherIndex(t *testing.T) {
	tests := []struct {
		name                      string
		temp, humidity, windSpeed float64
		want                      int
	}{
		{"mild conditions", 20, 50, 5, 50},
		{"warm tier", 28, 50, 5, 75},
		{"hot tier", 32, 50, 5, 125},
		{"extreme heat", 40, 50, 5, 200},
		{"extreme cold", -15, 50, 5, 200},
		{"very humid", 20, 95, 5, 100},
		{"very dry", 20, 10, 5, 80},
		{"strong wind", 20, 50, 25, 150},
		{"moderate wind", 20, 50, 17, 100},
		{"compound extremes", 40, 95, 25, 350},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeatherIndex(tt.temp, tt.humidity, tt.windSpeed))
		})
	}
}

func TestHealthLevelFromWeather(t *testing.T) {
	assert.Equal(t, weather.HealthGood, healthLevelFromWeather("Clear", 20))
	assert.Equal(t, weather.HealthUnhealthy, healthLevelFromWeather("Thunderstorm", 20))

	// Extreme temperature overrides the condition mapping.
	assert.Equal(t, weather.HealthUnhealthy, healthLevelFromWeather("Clear", 38))
	assert.Equal(t, weather.HealthUnhealthy, healthLevelFromWeather("Clear", -12))

	// Hot but not extreme only bumps Good up to Moderate.
	assert.Equal(t, weather.HealthModerate, healthLevelFromWeather("Clear", 32))
	assert.Equal(t, weather.HealthSensitive, healthLevelFromWeather("Rain", 32))
}

func TestOpenWeatherFetchTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cod": 200,
			"coord": {"lat": 35.68, "lon": 139.65},
			"main": {"temp": 22.34, "humidity": 60, "pressure": 1012.6},
			"wind": {"speed": 5},
			"weather": [{"main": "Clouds", "description": "scattered clouds"}],
			"name": "Tokyo",
			"sys": {"country": "JP"},
			"dt": 1700000000
		}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL

	obs, err := p.FetchByName(context.Background(), "Tokyo", "JP")
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", obs.City)
	assert.Equal(t, "Tokyo, JP", obs.Location)
	assert.Equal(t, 22.3, obs.Temperature)
	assert.Equal(t, 1013.0, obs.Pressure)
	assert.Equal(t, 18.0, obs.WindSpeed, "wind is converted from m/s to km/h")
	assert.Equal(t, "Clouds", obs.Condition)
	assert.Equal(t, weather.HealthModerate, obs.HealthLevel)
	assert.Equal(t, SourceOpenWeatherMap, obs.Source)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), obs.Timestamp)
}

func TestOpenWeatherErrorCod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"cod": 404, "message": "city not found"}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL

	_, err := p.FetchByName(context.Background(), "Nowhere", "")
	assert.Error(t, err)
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	_, err := p.FetchByCoordinates(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestAQICNFetchTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"data": {
				"aqi": 162,
				"city": {"geo": [28.6139, 77.209], "name": "Delhi"},
				"dominentpol": "",
				"iaqi": {
					"t": {"v": 31},
					"h": {"v": 55},
					"p": {"v": 1005},
					"w": {"v": 8},
					"pm25": {"v": 162},
					"pm10": {"v": 120},
					"no2": {"v": 30},
					"o3": {"v": 12}
				},
				"time": {"iso": "2024-06-01T10:00:00Z"}
			}
		}`))
	}))
	defer srv.Close()

	p := NewAQICNProvider(srv.Client(), "demo")
	p.baseURL = srv.URL

	obs, err := p.FetchByCoordinates(context.Background(), 28.6139, 77.209)
	require.NoError(t, err)

	assert.Equal(t, "Delhi", obs.City)
	assert.Equal(t, 162, obs.WeatherIndex, "the true AQI is reported as the index")
	assert.Equal(t, weather.HealthUnhealthy, obs.HealthLevel)
	assert.Equal(t, 162.0, obs.PM25)
	assert.Equal(t, "pm25", obs.DominantPollutant)
	assert.Empty(t, obs.Condition, "the fallback source supplies no condition label")
	assert.Equal(t, SourceAQICN, obs.Source)
}

func TestAQICNRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error"}`))
	}))
	defer srv.Close()

	p := NewAQICNProvider(srv.Client(), "bad")
	p.baseURL = srv.URL

	_, err := p.FetchByName(context.Background(), "Delhi", "IN")
	assert.Error(t, err)
}

func TestHealthLevelFromAQI(t *testing.T) {
	assert.Equal(t, weather.HealthGood, healthLevelFromAQI(40))
	assert.Equal(t, weather.HealthModerate, healthLevelFromAQI(100))
	assert.Equal(t, weather.HealthSensitive, healthLevelFromAQI(150))
	assert.Equal(t, weather.HealthUnhealthy, healthLevelFromAQI(200))
	assert.Equal(t, weather.HealthVeryUnhealthy, healthLevelFromAQI(300))
	assert.Equal(t, weather.HealthHazardous, healthLevelFromAQI(400))
}

func TestDominantPollutant(t *testing.T) {
	obs := &weather.CityObservation{PM25: 10, NO2: 42, O3: 5}
	assert.Equal(t, "no2", dominantPollutant(obs))

	assert.Equal(t, "pm25", dominantPollutant(&weather.CityObservation{}))
}
