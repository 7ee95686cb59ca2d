package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// SourceAQICN tags records produced by the legacy air-quality fallback.
const SourceAQICN = "AQICN"

// AQICNProvider is the legacy air-quality feed, kept as a fallback source.
// Unlike the primary provider it reports a true AQI and per-pollutant
// readings, so records it produces carry populated pollutant fields and no
// condition label (the normalization layer invents one from the health
// level in that case).
type AQICNProvider struct {
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewAQICNProvider(client *http.Client, token string) *AQICNProvider {
	if token == "" {
		token = "demo"
	}
	return &AQICNProvider{
		token:   token,
		baseURL: "https://api.waqi.info",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuitBreaker("aqicn"),
	}
}

func (p *AQICNProvider) Name() string {
	return SourceAQICN
}

type aqicnMetric struct {
	V float64 `json:"v"`
}

type aqicnPayload struct {
	Status string `json:"status"`
	Data   struct {
		AQI  float64 `json:"aqi"`
		City struct {
			Geo  []float64 `json:"geo"`
			Name string    `json:"name"`
		} `json:"city"`
		DominentPol string `json:"dominentpol"`
		IAQI        struct {
			CO   *aqicnMetric `json:"co"`
			H    *aqicnMetric `json:"h"`
			NO2  *aqicnMetric `json:"no2"`
			O3   *aqicnMetric `json:"o3"`
			P    *aqicnMetric `json:"p"`
			PM10 *aqicnMetric `json:"pm10"`
			PM25 *aqicnMetric `json:"pm25"`
			SO2  *aqicnMetric `json:"so2"`
			T    *aqicnMetric `json:"t"`
			W    *aqicnMetric `json:"w"`
		} `json:"iaqi"`
		Time struct {
			ISO string `json:"iso"`
		} `json:"time"`
	} `json:"data"`
}

func (p *AQICNProvider) FetchByCoordinates(ctx context.Context, lat, lng float64) (*weather.CityObservation, error) {
	feed := fmt.Sprintf("geo:%f;%f", lat, lng)
	return p.fetch(ctx, feed)
}

func (p *AQICNProvider) FetchByName(ctx context.Context, city, country string) (*weather.CityObservation, error) {
	// AQICN addresses stations by slug, e.g. "new-york".
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(city), " ", "-"))
	return p.fetch(ctx, slug)
}

func (p *AQICNProvider) fetch(ctx context.Context, feed string) (*weather.CityObservation, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/feed/%s/?token=%s", p.baseURL, url.PathEscape(feed), url.QueryEscape(p.token))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload aqicnPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if payload.Status != "ok" {
		return nil, fmt.Errorf("aqicn responded with status %q", payload.Status)
	}

	return p.transform(payload), nil
}

func (p *AQICNProvider) transform(payload aqicnPayload) *weather.CityObservation {
	metric := func(m *aqicnMetric) float64 {
		if m == nil {
			return 0
		}
		return m.V
	}

	data := payload.Data
	obs := &weather.CityObservation{
		City:         data.City.Name,
		Temperature:  metric(data.IAQI.T),
		Humidity:     metric(data.IAQI.H),
		Pressure:     metric(data.IAQI.P),
		WindSpeed:    metric(data.IAQI.W),
		WeatherIndex: int(data.AQI),
		HealthLevel:  healthLevelFromAQI(data.AQI),
		PM25:         metric(data.IAQI.PM25),
		PM10:         metric(data.IAQI.PM10),
		NO2:          metric(data.IAQI.NO2),
		SO2:          metric(data.IAQI.SO2),
		O3:           metric(data.IAQI.O3),
		CO:           metric(data.IAQI.CO),
		Location:     data.City.Name,
		Source:       SourceAQICN,
	}

	if len(data.City.Geo) >= 2 {
		obs.Coordinates = weather.Coordinates{Lat: data.City.Geo[0], Lng: data.City.Geo[1]}
	}

	obs.DominantPollutant = data.DominentPol
	if obs.DominantPollutant == "" {
		obs.DominantPollutant = dominantPollutant(obs)
	}

	ts, err := time.Parse(time.RFC3339, data.Time.ISO)
	if err != nil {
		ts = time.Now().UTC()
	}
	obs.Timestamp = ts.UTC()

	return obs
}

// dominantPollutant picks the highest non-zero pollutant reading, defaulting
// to pm25 when none is reported.
func dominantPollutant(obs *weather.CityObservation) string {
	type reading struct {
		name  string
		value float64
	}
	readings := []reading{
		{"pm25", obs.PM25},
		{"pm10", obs.PM10},
		{"no2", obs.NO2},
		{"so2", obs.SO2},
		{"o3", obs.O3},
		{"co", obs.CO},
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].value > readings[j].value
	})
	if readings[0].value > 0 {
		return readings[0].name
	}
	return "pm25"
}

func healthLevelFromAQI(aqi float64) string {
	switch {
	case aqi <= 50:
		return weather.HealthGood
	case aqi <= 100:
		return weather.HealthModerate
	case aqi <= 150:
		return weather.HealthSensitive
	case aqi <= 200:
		return weather.HealthUnhealthy
	case aqi <= 300:
		return weather.HealthVeryUnhealthy
	default:
		return weather.HealthHazardous
	}
}
