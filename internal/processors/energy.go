package processors

import (
	"math"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// EnergyEfficiencyProcessor interprets weather records for HVAC and building
// energy optimization.
type EnergyEfficiencyProcessor struct {
	batchSize      int
	processingRate float64
}

func NewEnergyEfficiencyProcessor() *EnergyEfficiencyProcessor {
	return &EnergyEfficiencyProcessor{batchSize: 150}
}

func (p *EnergyEfficiencyProcessor) Type() ProcessorType { return TypeEnergyEfficiency }

func (p *EnergyEfficiencyProcessor) Process(records []weather.ProcessedRecord) []ScoredRecord {
	p.processingRate = float64(len(records)) / 8

	out := make([]ScoredRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, ScoredRecord{
			ProcessedRecord: rec,
			ProcessorType:   TypeEnergyEfficiency,
			ProcessedAt:     time.Now().UTC(),
			Energy: &EnergyScores{
				EnergyEfficiencyScore: energyEfficiency(rec),
				VentilationStrategy:   ventilationStrategy(rec),
				HVACRecommendations:   hvacRecommendations(rec),
				IndoorWeatherIndex:    indoorWeatherIndex(rec),
			},
		})
	}
	return out
}

func energyEfficiency(rec weather.ProcessedRecord) int {
	weatherIndex := effectiveWeatherIndex(rec)
	efficiency := 100 - float64(weatherIndex)/3
	if math.Abs(rec.Temperature-22) < 3 {
		efficiency += 10
	}
	if rec.Humidity >= 40 && rec.Humidity <= 60 {
		efficiency += 5
	}
	return clampScore(int(math.Round(efficiency)))
}

func ventilationStrategy(rec weather.ProcessedRecord) VentilationStrategy {
	weatherIndex := effectiveWeatherIndex(rec)
	switch {
	case weatherIndex > 150 || rec.Temperature > 35 || rec.Temperature < -10:
		return VentilationRecirculation
	case weatherIndex > 100 || rec.Precipitation > 20 || rec.WindSpeed > 30:
		return VentilationMinimalFresh
	case weatherIndex > 50 || rec.Precipitation > 10:
		return VentilationBalanced
	default:
		return VentilationNatural
	}
}

func hvacRecommendations(rec weather.ProcessedRecord) []string {
	var recommendations []string
	weatherIndex := effectiveWeatherIndex(rec)

	if weatherIndex > 100 || rec.Temperature > 30 || rec.Temperature < 0 {
		recommendations = append(recommendations,
			"Increase HVAC efficiency settings",
			"Maintain comfortable indoor temperature",
			"Monitor energy consumption",
		)
	} else if weatherIndex < 50 && rec.Temperature >= 15 && rec.Temperature <= 25 {
		recommendations = append(recommendations,
			"Increase natural ventilation",
			"Reduce HVAC energy consumption",
			"Open windows for free cooling/heating",
		)
	}

	if rec.Temperature > 25 {
		recommendations = append(recommendations,
			"Optimize cooling efficiency",
			"Use energy-efficient cooling modes",
		)
	}
	if rec.Temperature < 5 {
		recommendations = append(recommendations,
			"Optimize heating efficiency",
			"Seal windows and doors",
		)
	}

	return recommendations
}

// indoorWeatherIndex predicts the indoor severity index assuming building
// filtration attenuates outdoor conditions.
func indoorWeatherIndex(rec weather.ProcessedRecord) int {
	weatherIndex := effectiveWeatherIndex(rec)
	reduction := 0.5
	if weatherIndex > 100 {
		reduction = 0.3
	}
	return int(math.Round(float64(weatherIndex) * (1 - reduction)))
}

func (p *EnergyEfficiencyProcessor) BatchSize() int          { return p.batchSize }
func (p *EnergyEfficiencyProcessor) SetBatchSize(size int)   { p.batchSize = size }
func (p *EnergyEfficiencyProcessor) ProcessingRate() float64 { return p.processingRate }
