// Package insights layers statistical anomaly detection, global
// aggregation and model-generated narration over the processed records.
package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// AnomalyType classifies an alert for dashboard grouping.
type AnomalyType string

const (
	TypeWeatherAlert       AnomalyType = "WEATHER_ALERT"
	TypeTemperatureExtreme AnomalyType = "TEMPERATURE_EXTREME"
	TypeStormWarning       AnomalyType = "STORM_WARNING"
	TypeUnusualPattern     AnomalyType = "UNUSUAL_PATTERN"
	TypeHealthAlert        AnomalyType = "HEALTH_ALERT"
	TypeTrafficImpact      AnomalyType = "TRAFFIC_IMPACT"
	TypeEnergyDemand       AnomalyType = "ENERGY_DEMAND"
)

// Severity grades an anomaly.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Anomaly is one alert raised over a batch, either statistical or
// model-generated.
type Anomaly struct {
	ID         string      `json:"id"`
	Type       AnomalyType `json:"type"`
	City       string      `json:"city"`
	Severity   Severity    `json:"severity"`
	Confidence int         `json:"confidence"` // percent
	Prediction string      `json:"prediction"`
	DataSource string      `json:"dataSource"`
	Timeframe  string      `json:"timeframe"`
	Impact     string      `json:"impact"`
	DetectedAt time.Time   `json:"detectedAt"`
}

const (
	statisticalSource = "STATISTICAL_ANALYSIS"

	// zScoreThreshold is how many standard deviations a city's weather
	// index must sit from the batch mean to count as unusual.
	zScoreThreshold = 2.0
)

// DetectAnomalies runs three independent checks over a batch: a z-score
// outlier scan on the weather index, a severity check on the index itself,
// and a temperature-extreme check. A record can raise several alerts.
func DetectAnomalies(records []weather.ProcessedRecord) []Anomaly {
	var anomalies []Anomaly
	now := time.Now().UTC()

	mean, stdDev := indexStats(records)
	if stdDev == 0 {
		stdDev = 1
	}

	for _, rec := range records {
		deviation := float64(rec.WeatherIndex) - mean
		if z := math.Abs(deviation) / stdDev; z > zScoreThreshold {
			// Above the mean is a plain alert; below it the index is
			// suspiciously good, which reads as an unusual pattern.
			typ := TypeWeatherAlert
			if deviation < 0 {
				typ = TypeUnusualPattern
			}
			anomalies = append(anomalies, Anomaly{
				ID:         uuid.NewString(),
				Type:       typ,
				City:       rec.Location,
				Severity:   zSeverity(z),
				Confidence: zConfidence(z),
				Prediction: fmt.Sprintf("Weather index in %s deviates %.1f standard deviations from the current multi-city average. Conditions may change rapidly.", rec.Location, z),
				DataSource: statisticalSource,
				Timeframe:  "Current",
				Impact:     string(zSeverity(z)),
				DetectedAt: now,
			})
		}

		if rec.WeatherIndex > 150 {
			severity := SeverityMedium
			if rec.WeatherIndex > 300 {
				severity = SeverityCritical
			} else if rec.WeatherIndex > 200 {
				severity = SeverityHigh
			}
			anomalies = append(anomalies, Anomaly{
				ID:         uuid.NewString(),
				Type:       TypeHealthAlert,
				City:       rec.Location,
				Severity:   severity,
				Confidence: 95,
				Prediction: fmt.Sprintf("Weather severity index in %s reached %d (%s). Sensitive groups should limit outdoor exposure.", rec.Location, rec.WeatherIndex, rec.HealthLevel),
				DataSource: statisticalSource,
				Timeframe:  "Current",
				Impact:     string(severity),
				DetectedAt: now,
			})
		}

		if rec.Temperature > 35 || rec.Temperature < -10 {
			severity := SeverityHigh
			if rec.Temperature > 40 || rec.Temperature < -15 {
				severity = SeverityCritical
			}
			anomalies = append(anomalies, Anomaly{
				ID:         uuid.NewString(),
				Type:       TypeTemperatureExtreme,
				City:       rec.Location,
				Severity:   severity,
				Confidence: 85,
				Prediction: fmt.Sprintf("Extreme temperature of %.1f°C recorded in %s. Take appropriate precautions.", rec.Temperature, rec.Location),
				DataSource: statisticalSource,
				Timeframe:  "Current",
				Impact:     string(severity),
				DetectedAt: now,
			})
		}
	}

	return anomalies
}

func indexStats(records []weather.ProcessedRecord) (mean, stdDev float64) {
	if len(records) == 0 {
		return 0, 0
	}
	var sum float64
	for _, rec := range records {
		sum += float64(rec.WeatherIndex)
	}
	mean = sum / float64(len(records))

	var variance float64
	for _, rec := range records {
		d := float64(rec.WeatherIndex) - mean
		variance += d * d
	}
	variance /= float64(len(records))
	return mean, math.Sqrt(variance)
}

func zSeverity(z float64) Severity {
	switch {
	case z > 3:
		return SeverityCritical
	case z > 2.5:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func zConfidence(z float64) int {
	c := int(math.Round(z * 30))
	if c > 95 {
		return 95
	}
	return c
}
