package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

func record(city string, temp float64) weather.ProcessedRecord {
	return weather.ProcessedRecord{
		CityObservation: weather.CityObservation{
			City:        city,
			Location:    city,
			Temperature: temp,
			Humidity:    50,
			Condition:   "Clear",
		},
	}
}

func TestHealthProcessorFlagsExtremeHeat(t *testing.T) {
	p := NewHealthRiskProcessor()

	rec := record("Phoenix", 42)
	rec.WeatherIndex = 180

	scored := p.Process([]weather.ProcessedRecord{rec})
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Health)

	assert.GreaterOrEqual(t, scored[0].Health.HealthRisk, 50)
	assert.Equal(t, RiskVeryHigh, scored[0].Health.RiskCategory)
	assert.Contains(t, scored[0].Health.Recommendations, "Avoid outdoor activities")
	assert.Contains(t, scored[0].Health.VulnerableGroups, "Elderly")
	assert.Equal(t, TypeHealthRisk, scored[0].ProcessorType)
}

func TestHealthRiskStormKeyword(t *testing.T) {
	rec := record("Miami", 25)
	rec.Condition = "Thunderstorm"

	assert.GreaterOrEqual(t, healthRisk(rec), 60)
}

func TestHealthRiskClampsAtHundred(t *testing.T) {
	rec := record("Extreme", 45)
	rec.Humidity = 95
	rec.WindSpeed = 50
	rec.Precipitation = 80
	rec.Condition = "Stormy"
	rec.PM25 = 200
	rec.PM10 = 180

	assert.Equal(t, 100, healthRisk(rec))
}

func TestRiskCategoryBuckets(t *testing.T) {
	assert.Equal(t, RiskLow, riskCategory(50))
	assert.Equal(t, RiskModerate, riskCategory(100))
	assert.Equal(t, RiskHigh, riskCategory(150))
	assert.Equal(t, RiskVeryHigh, riskCategory(200))
	assert.Equal(t, RiskExtreme, riskCategory(201))
}

func TestMildWeatherScoresLow(t *testing.T) {
	p := NewHealthRiskProcessor()

	rec := record("Vancouver", 18)
	rec.WeatherIndex = 35

	scored := p.Process([]weather.ProcessedRecord{rec})
	require.Len(t, scored, 1)
	assert.Equal(t, 0, scored[0].Health.HealthRisk)
	assert.Equal(t, RiskLow, scored[0].Health.RiskCategory)
	assert.Contains(t, scored[0].Health.Recommendations, "Weather conditions are good for outdoor activities")
	assert.Empty(t, scored[0].Health.VulnerableGroups)
}

func TestTrafficProcessorScoring(t *testing.T) {
	p := NewTrafficOptimizationProcessor()

	rec := record("Oslo", -5)
	rec.Precipitation = 25
	rec.WindSpeed = 28
	rec.Visibility = 3

	scored := p.Process([]weather.ProcessedRecord{rec})
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Traffic)

	// 40 (precip) + 30 (wind) + 50 (visibility) + 35 (freezing), clamped.
	assert.Equal(t, 100, scored[0].Traffic.TrafficImpact)
	// Congestion score: 40 + 20 + 50 = 110.
	assert.Equal(t, CongestionSevere, scored[0].Traffic.CongestionLevel)
	assert.NotEmpty(t, scored[0].Traffic.RouteRecommendations)
}

func TestTrafficCalmConditions(t *testing.T) {
	rec := record("Lisbon", 20)
	rec.Visibility = 10

	assert.Equal(t, 0, trafficImpact(rec))
	assert.Equal(t, CongestionLight, congestionLevel(rec))
	assert.Equal(t, []string{"Normal traffic routes are acceptable"}, routeRecommendations(rec))
	assert.Empty(t, alternativeRoutes(rec))
}

func TestEnergyProcessorScoring(t *testing.T) {
	p := NewEnergyEfficiencyProcessor()

	rec := record("Toronto", 22)
	rec.WeatherIndex = 30
	rec.Humidity = 50

	scored := p.Process([]weather.ProcessedRecord{rec})
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Energy)

	// 100 - 30/3 + 10 (near 22°C) + 5 (comfortable humidity) = 100 clamped.
	assert.Equal(t, 100, scored[0].Energy.EnergyEfficiencyScore)
	assert.Equal(t, VentilationNatural, scored[0].Energy.VentilationStrategy)
	assert.Equal(t, 15, scored[0].Energy.IndoorWeatherIndex)
}

func TestVentilationStrategyTiers(t *testing.T) {
	harsh := record("Harsh", 38)
	harsh.WeatherIndex = 200
	assert.Equal(t, VentilationRecirculation, ventilationStrategy(harsh))

	windy := record("Windy", 20)
	windy.WeatherIndex = 120
	assert.Equal(t, VentilationMinimalFresh, ventilationStrategy(windy))

	damp := record("Damp", 20)
	damp.WeatherIndex = 60
	assert.Equal(t, VentilationBalanced, ventilationStrategy(damp))
}

func TestEffectiveWeatherIndexFallback(t *testing.T) {
	rec := record("NoIndex", 40)
	rec.WindSpeed = 35
	rec.Precipitation = 60

	// 50 + 100 + 80 + 70 without a reported index.
	assert.Equal(t, 300, effectiveWeatherIndex(rec))

	rec.WeatherIndex = 42
	assert.Equal(t, 42, effectiveWeatherIndex(rec))
}

func TestProcessorReportingAccessors(t *testing.T) {
	p := NewHealthRiskProcessor()
	assert.Equal(t, 100, p.BatchSize())
	p.SetBatchSize(250)
	assert.Equal(t, 250, p.BatchSize())

	p.Process(make([]weather.ProcessedRecord, 20))
	assert.Equal(t, 2.0, p.ProcessingRate())
}
