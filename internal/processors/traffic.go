package processors

import (
	"math"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// TrafficOptimizationProcessor interprets weather records for road impact.
type TrafficOptimizationProcessor struct {
	batchSize      int
	processingRate float64
}

func NewTrafficOptimizationProcessor() *TrafficOptimizationProcessor {
	return &TrafficOptimizationProcessor{batchSize: 200}
}

func (p *TrafficOptimizationProcessor) Type() ProcessorType { return TypeTrafficOptimize }

func (p *TrafficOptimizationProcessor) Process(records []weather.ProcessedRecord) []ScoredRecord {
	p.processingRate = float64(len(records)) / 5

	out := make([]ScoredRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, ScoredRecord{
			ProcessedRecord: rec,
			ProcessorType:   TypeTrafficOptimize,
			ProcessedAt:     time.Now().UTC(),
			Traffic: &TrafficScores{
				TrafficImpact:        trafficImpact(rec),
				CongestionLevel:      congestionLevel(rec),
				RouteRecommendations: routeRecommendations(rec),
				AlternativeRoutes:    alternativeRoutes(rec),
			},
		})
	}
	return out
}

func trafficImpact(rec weather.ProcessedRecord) int {
	impact := 0
	if rec.Precipitation > 20 {
		impact += 40
	}
	if rec.WindSpeed > 25 {
		impact += 30
	}
	if rec.Visibility > 0 && rec.Visibility < 5 {
		impact += 50
	}
	if rec.Temperature < 0 {
		impact += 35
	}
	if rec.NO2 > 0 && rec.CO > 0 {
		impact += int(math.Round((rec.NO2*0.6 + rec.CO*0.4) / 10))
	}
	return clampScore(impact)
}

// congestionLevel buckets a congestion score computed separately from
// trafficImpact. The two formulas overlap but differ (wind contributes 20
// here vs 30 there, no temperature term, a different pollutant term);
// both are kept because consumers read both fields.
func congestionLevel(rec weather.ProcessedRecord) CongestionLevel {
	score := 0.0
	if rec.Precipitation > 20 {
		score += 40
	}
	if rec.WindSpeed > 25 {
		score += 20
	}
	if rec.Visibility > 0 && rec.Visibility < 5 {
		score += 50
	}
	if rec.NO2 > 0 && rec.CO > 0 {
		score += (rec.NO2 + rec.CO) / 2
	}

	switch {
	case score > 100:
		return CongestionSevere
	case score > 60:
		return CongestionHeavy
	case score > 30:
		return CongestionModerate
	default:
		return CongestionLight
	}
}

func routeRecommendations(rec weather.ProcessedRecord) []string {
	weatherIndex := effectiveWeatherIndex(rec)

	if weatherIndex > 150 || rec.Precipitation > 30 || rec.WindSpeed > 30 {
		return []string{
			"Avoid high-traffic routes",
			"Use highway/ring roads instead of city center",
			"Consider public transportation",
			"Allow extra travel time",
		}
	}
	if rec.Precipitation > 10 || rec.WindSpeed > 20 {
		return []string{
			"Drive carefully in adverse weather",
			"Reduce speed and increase following distance",
		}
	}
	return []string{"Normal traffic routes are acceptable"}
}

func alternativeRoutes(rec weather.ProcessedRecord) []string {
	weatherIndex := effectiveWeatherIndex(rec)

	if weatherIndex > 100 || rec.Precipitation > 20 || rec.WindSpeed > 25 {
		return []string{
			"Main highways with better drainage",
			"Routes with less exposure to wind",
			"Elevated routes away from flooding areas",
		}
	}
	return nil
}

func (p *TrafficOptimizationProcessor) BatchSize() int          { return p.batchSize }
func (p *TrafficOptimizationProcessor) SetBatchSize(size int)   { p.batchSize = size }
func (p *TrafficOptimizationProcessor) ProcessingRate() float64 { return p.processingRate }
