package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/urbanpulse/weather-monitor/internal/common"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// SourceOpenWeatherMap tags records produced by the primary provider.
const SourceOpenWeatherMap = "OPENWEATHERMAP"

// OpenWeatherProvider is the primary weather source. It fetches current
// conditions from OpenWeatherMap and maps the payload into a
// CityObservation, deriving the 0-500 weather index and the health level
// that the downstream alerting thresholds and display coloring depend on.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return SourceOpenWeatherMap
}

// openWeatherPayload is the subset of the current-weather response we use.
type openWeatherPayload struct {
	Cod   json.Number `json:"cod"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s with units=metric
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt int64 `json:"dt"`
}

func (p *OpenWeatherProvider) FetchByCoordinates(ctx context.Context, lat, lng float64) (*weather.CityObservation, error) {
	return p.fetch(ctx, func(values url.Values) {
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lng))
	})
}

func (p *OpenWeatherProvider) FetchByName(ctx context.Context, city, country string) (*weather.CityObservation, error) {
	return p.fetch(ctx, func(values url.Values) {
		q := city
		if country != "" {
			q = fmt.Sprintf("%s,%s", city, country)
		}
		values.Set("q", q)
	})
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, setQuery func(url.Values)) (*weather.CityObservation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		setQuery(values)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openWeatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	// The API reports errors with a 200-series body carrying a non-200 cod.
	if cod, err := payload.Cod.Int64(); err == nil && cod != 200 {
		return nil, fmt.Errorf("openweather responded with cod %d", cod)
	}

	return p.transform(payload), nil
}

func (p *OpenWeatherProvider) transform(payload openWeatherPayload) *weather.CityObservation {
	condition := "Clear"
	if len(payload.Weather) > 0 && payload.Weather[0].Main != "" {
		condition = payload.Weather[0].Main
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	windKmh := payload.Wind.Speed * 3.6

	return &weather.CityObservation{
		City:    payload.Name,
		Country: payload.Sys.Country,
		Coordinates: weather.Coordinates{
			Lat: payload.Coord.Lat,
			Lng: payload.Coord.Lon,
		},
		Temperature:  common.Round1(payload.Main.Temp),
		Humidity:     payload.Main.Humidity,
		Pressure:     float64(int(payload.Main.Pressure + 0.5)),
		WindSpeed:    common.Round1(windKmh),
		WeatherIndex: WeatherIndex(payload.Main.Temp, payload.Main.Humidity, payload.Wind.Speed),
		Condition:    condition,
		HealthLevel:  healthLevelFromWeather(condition, payload.Main.Temp),
		Location:     fmt.Sprintf("%s, %s", payload.Name, payload.Sys.Country),
		Timestamp:    ts,
		Source:       SourceOpenWeatherMap,
	}
}

// WeatherIndex computes the synthetic 0-500 severity scalar (lower is
// better) used in place of a true air-quality index when only weather data
// is available. The exact weights are load-bearing: alert thresholds and
// display coloring assume this scale.
func WeatherIndex(temp, humidity, windSpeed float64) int {
	index := 50.0

	switch {
	case temp > 35 || temp < -10:
		index += 150
	case temp > 30 || temp < -5:
		index += 75
	case temp > 25 || temp < 0:
		index += 25
	}

	if humidity > 90 {
		index += 50
	} else if humidity < 20 {
		index += 30
	}

	if windSpeed > 20 {
		index += 100
	} else if windSpeed > 15 {
		index += 50
	}

	return int(common.Clamp(index, 0, 500))
}

// healthLevelFromWeather maps a condition label to a health level, with
// overrides for extreme temperatures.
func healthLevelFromWeather(condition string, temperature float64) string {
	levels := map[string]string{
		"Clear":        weather.HealthGood,
		"Clouds":       weather.HealthModerate,
		"Rain":         weather.HealthSensitive,
		"Drizzle":      weather.HealthModerate,
		"Thunderstorm": weather.HealthUnhealthy,
		"Snow":         weather.HealthSensitive,
		"Mist":         weather.HealthModerate,
		"Fog":          weather.HealthModerate,
		"Haze":         weather.HealthSensitive,
	}

	level, ok := levels[condition]
	if !ok {
		level = weather.HealthModerate
	}

	if temperature > 35 || temperature < -10 {
		level = weather.HealthUnhealthy
	} else if temperature > 30 || temperature < -5 {
		if level == weather.HealthGood {
			level = weather.HealthModerate
		}
	}

	return level
}
