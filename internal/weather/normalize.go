package weather

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/common"
)

// Normalizer converts raw observations into canonical ProcessedRecords,
// computing the derived fields the upstream API does not supply.
//
// Normalization is deterministic except for two heuristics: the UV estimate
// and the invented condition label (used only when the source supplies no
// condition string). Both draw from the injected random source so tests can
// pin outputs.
type Normalizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNormalizer(src rand.Source) *Normalizer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Normalizer{rng: rand.New(src)}
}

// Normalize derives one ProcessedRecord from one CityObservation.
func (n *Normalizer) Normalize(obs CityObservation) ProcessedRecord {
	rec := ProcessedRecord{CityObservation: obs}

	if rec.Condition == "" {
		rec.Condition = n.conditionFromHealthLevel(rec.HealthLevel)
	}

	rec.Precipitation = EstimatePrecipitation(obs.Humidity, obs.Pressure)
	rec.FeelsLike = FeelsLike(obs.Temperature, obs.Humidity, obs.WindSpeed)
	rec.Visibility = EstimateVisibility(obs.PM25, obs.PM10)
	rec.UVIndex = n.estimateUV(obs.O3)

	return rec
}

// NormalizeAll maps a batch one-to-one.
func (n *Normalizer) NormalizeAll(observations []CityObservation) []ProcessedRecord {
	records := make([]ProcessedRecord, 0, len(observations))
	for _, obs := range observations {
		records = append(records, n.Normalize(obs))
	}
	return records
}

// EstimatePrecipitation estimates precipitation in mm from humidity and
// pressure: higher humidity and lower pressure mean more precipitation.
func EstimatePrecipitation(humidity, pressure float64) float64 {
	basePrecip := math.Max(0, (humidity-50)*0.5)
	pressureFactor := 1.0
	if pressure < 1000 {
		pressureFactor = 1.5
	}
	return common.Round1(basePrecip * pressureFactor)
}

// FeelsLike applies a heat-index approximation above 27°C and a wind-chill
// approximation below 10°C; between the two it equals the temperature.
func FeelsLike(temp, humidity, windSpeed float64) float64 {
	if temp > 27 {
		return common.Round1(temp + (humidity/100)*5 - windSpeed*0.1)
	}
	if temp < 10 {
		return common.Round1(temp - windSpeed*0.5)
	}
	return temp
}

// EstimateVisibility estimates visibility in km from particulate readings,
// clamped to [1,15]. Without particulate data it defaults to 10 km.
func EstimateVisibility(pm25, pm10 float64) float64 {
	if pm25 == 0 && pm10 == 0 {
		return 10
	}
	avgPM := (pm25 + pm10) / 2
	return common.Round1(math.Max(1, 15-avgPM/10))
}

// estimateUV estimates a UV index from the ozone reading plus a bounded
// random term, clamped to [0,11]. Without ozone data it defaults to 5.
// Deliberately non-deterministic.
func (n *Normalizer) estimateUV(o3 float64) float64 {
	if o3 == 0 {
		return 5
	}
	n.mu.Lock()
	r := n.rng.Float64()
	n.mu.Unlock()
	return common.Clamp(math.Round(o3/10+r*3), 0, 11)
}

// conditionFromHealthLevel invents a condition label for sources that lack
// one, sampled from a small set keyed by health-level bucket.
func (n *Normalizer) conditionFromHealthLevel(healthLevel string) string {
	level := strings.ToLower(healthLevel)

	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case strings.Contains(level, "good") || strings.Contains(level, "moderate"):
		return []string{"Clear", "Sunny", "Partly Cloudy"}[n.rng.Intn(3)]
	case strings.Contains(level, "unhealthy for sensitive"):
		return []string{"Cloudy", "Partly Cloudy"}[n.rng.Intn(2)]
	case strings.Contains(level, "unhealthy"):
		return []string{"Rainy", "Cloudy"}[n.rng.Intn(2)]
	case strings.Contains(level, "very unhealthy"):
		return "Stormy"
	default:
		return "Foggy"
	}
}
