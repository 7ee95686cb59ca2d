// Package processors contains the polymorphism core of the pipeline: one
// DataProcessor contract, three independent scoring bodies (health, traffic,
// energy) run concurrently over the same normalized records.
package processors

import (
	"time"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// ProcessorType identifies which scoring body produced a record.
type ProcessorType string

const (
	TypeHealthRisk       ProcessorType = "HEALTH_RISK"
	TypeTrafficOptimize  ProcessorType = "TRAFFIC_OPTIMIZATION"
	TypeEnergyEfficiency ProcessorType = "ENERGY_EFFICIENCY"
)

// RiskCategory buckets the weather index for health reporting.
type RiskCategory string

const (
	RiskLow      RiskCategory = "LOW"
	RiskModerate RiskCategory = "MODERATE"
	RiskHigh     RiskCategory = "HIGH"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
	RiskExtreme  RiskCategory = "EXTREME"
)

// CongestionLevel buckets the traffic congestion score.
type CongestionLevel string

const (
	CongestionLight    CongestionLevel = "LIGHT"
	CongestionModerate CongestionLevel = "MODERATE"
	CongestionHeavy    CongestionLevel = "HEAVY"
	CongestionSevere   CongestionLevel = "SEVERE"
)

// VentilationStrategy is the energy processor's 4-way HVAC recommendation.
type VentilationStrategy string

const (
	VentilationNatural       VentilationStrategy = "NATURAL_VENTILATION"
	VentilationBalanced      VentilationStrategy = "BALANCED_VENTILATION"
	VentilationMinimalFresh  VentilationStrategy = "MINIMAL_FRESH_WEATHER"
	VentilationRecirculation VentilationStrategy = "RECIRCULATION_ONLY"
)

// HealthScores is the health processor's enrichment.
type HealthScores struct {
	HealthRisk       int          `json:"healthRisk"` // 0-100
	RiskCategory     RiskCategory `json:"riskCategory"`
	Recommendations  []string     `json:"recommendations"`
	VulnerableGroups []string     `json:"vulnerableGroups"`
}

// TrafficScores is the traffic processor's enrichment.
type TrafficScores struct {
	TrafficImpact        int             `json:"trafficImpact"` // 0-100
	CongestionLevel      CongestionLevel `json:"congestionLevel"`
	RouteRecommendations []string        `json:"routeRecommendations"`
	AlternativeRoutes    []string        `json:"alternativeRoutes"`
}

// EnergyScores is the energy processor's enrichment.
type EnergyScores struct {
	EnergyEfficiencyScore int                 `json:"energyEfficiencyScore"` // 0-100
	VentilationStrategy   VentilationStrategy `json:"ventilationStrategy"`
	HVACRecommendations   []string            `json:"hvacRecommendations"`
	IndoorWeatherIndex    int                 `json:"indoorWeatherIndex"`
}

// ScoredRecord is a processed record enriched by exactly one processor;
// only the section matching ProcessorType is populated. Scored records are
// transient per pipeline run and never persisted.
type ScoredRecord struct {
	weather.ProcessedRecord

	ProcessorType ProcessorType `json:"processorType"`
	ProcessedAt   time.Time     `json:"processedAt"`

	Health  *HealthScores  `json:"health,omitempty"`
	Traffic *TrafficScores `json:"traffic,omitempty"`
	Energy  *EnergyScores  `json:"energy,omitempty"`
}

// DataProcessor is the shared contract. Process never fails: malformed or
// missing optional fields score as good weather, and an empty input yields
// an empty output. The batch-size and rate accessors exist for reporting
// only and do not influence behavior.
type DataProcessor interface {
	Type() ProcessorType
	Process(records []weather.ProcessedRecord) []ScoredRecord
	BatchSize() int
	SetBatchSize(size int)
	ProcessingRate() float64
}

// effectiveWeatherIndex returns the record's index, or a coarse fallback
// derived from temperature/wind/precipitation when the source reported none.
func effectiveWeatherIndex(rec weather.ProcessedRecord) int {
	if rec.WeatherIndex > 0 {
		return rec.WeatherIndex
	}
	index := 50
	if rec.Temperature > 35 || rec.Temperature < -10 {
		index += 100
	}
	if rec.WindSpeed > 30 {
		index += 80
	}
	if rec.Precipitation > 50 {
		index += 70
	}
	if index > 500 {
		index = 500
	}
	return index
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
