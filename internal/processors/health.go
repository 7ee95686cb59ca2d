package processors

import (
	"math"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/common"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// HealthRiskProcessor interprets weather records for population health risk.
type HealthRiskProcessor struct {
	batchSize      int
	processingRate float64
}

func NewHealthRiskProcessor() *HealthRiskProcessor {
	return &HealthRiskProcessor{batchSize: 100}
}

func (p *HealthRiskProcessor) Type() ProcessorType { return TypeHealthRisk }

func (p *HealthRiskProcessor) Process(records []weather.ProcessedRecord) []ScoredRecord {
	p.processingRate = float64(len(records)) / 10

	out := make([]ScoredRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, ScoredRecord{
			ProcessedRecord: rec,
			ProcessorType:   TypeHealthRisk,
			ProcessedAt:     time.Now().UTC(),
			Health: &HealthScores{
				HealthRisk:       healthRisk(rec),
				RiskCategory:     riskCategory(effectiveWeatherIndex(rec)),
				Recommendations:  healthRecommendations(rec),
				VulnerableGroups: vulnerableGroups(rec),
			},
		})
	}
	return out
}

func healthRisk(rec weather.ProcessedRecord) int {
	risk := 0
	if rec.Temperature > 35 || rec.Temperature < -10 {
		risk += 50
	}
	if rec.Humidity > 90 || rec.Humidity < 20 {
		risk += 30
	}
	if rec.WindSpeed > 30 {
		risk += 40
	}
	if rec.Precipitation > 50 {
		risk += 30
	}
	if common.HasAny(rec.Condition, "storm") {
		risk += 60
	}
	// Legacy pollutant-weighted term, only when pollutant data is present.
	if rec.PM25 > 0 && rec.PM10 > 0 {
		risk += int(math.Round(
			(rec.PM25*0.3 + rec.PM10*0.25 + rec.NO2*0.2 + rec.O3*0.15 + rec.SO2*0.1) / 10,
		))
	}
	return clampScore(risk)
}

func riskCategory(weatherIndex int) RiskCategory {
	switch {
	case weatherIndex <= 50:
		return RiskLow
	case weatherIndex <= 100:
		return RiskModerate
	case weatherIndex <= 150:
		return RiskHigh
	case weatherIndex <= 200:
		return RiskVeryHigh
	default:
		return RiskExtreme
	}
}

func healthRecommendations(rec weather.ProcessedRecord) []string {
	var recommendations []string
	weatherIndex := effectiveWeatherIndex(rec)

	switch {
	case weatherIndex > 150 || rec.Temperature > 35 || rec.Temperature < -10:
		recommendations = append(recommendations,
			"Avoid outdoor activities",
			"Stay in air-conditioned or heated spaces",
			"Monitor weather alerts",
		)
	case weatherIndex > 100 || rec.WindSpeed > 25:
		recommendations = append(recommendations,
			"Limit prolonged outdoor activities",
			"Dress appropriately for weather conditions",
		)
	case weatherIndex > 50 || rec.Precipitation > 20:
		recommendations = append(recommendations,
			"Sensitive individuals should limit outdoor exposure",
			"Carry weather protection (umbrella, jacket)",
		)
	default:
		recommendations = append(recommendations,
			"Weather conditions are good for outdoor activities",
		)
	}

	if rec.Temperature > 30 {
		recommendations = append(recommendations, "Stay hydrated and seek shade")
	}
	if rec.Temperature < 0 {
		recommendations = append(recommendations, "Dress in layers and limit exposure")
	}
	if rec.Precipitation > 30 {
		recommendations = append(recommendations, "Avoid outdoor activities during heavy precipitation")
	}

	return recommendations
}

func vulnerableGroups(rec weather.ProcessedRecord) []string {
	var groups []string
	weatherIndex := effectiveWeatherIndex(rec)

	if weatherIndex > 100 || rec.Temperature > 30 || rec.Temperature < -5 {
		groups = append(groups, "Children", "Elderly", "Pregnant women")
	}
	if rec.Temperature > 35 || rec.Temperature < -10 {
		groups = append(groups, "People with respiratory conditions", "Heart disease patients")
	}
	if rec.WindSpeed > 25 || rec.Precipitation > 30 {
		groups = append(groups, "Outdoor workers", "Athletes")
	}

	return groups
}

func (p *HealthRiskProcessor) BatchSize() int          { return p.batchSize }
func (p *HealthRiskProcessor) SetBatchSize(size int)   { p.batchSize = size }
func (p *HealthRiskProcessor) ProcessingRate() float64 { return p.processingRate }
