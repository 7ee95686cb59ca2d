package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// panickingProcessor always panics, to exercise run isolation.
type panickingProcessor struct{}

func (panickingProcessor) Type() ProcessorType { return TypeHealthRisk }
func (panickingProcessor) Process([]weather.ProcessedRecord) []ScoredRecord {
	panic("boom")
}
func (panickingProcessor) BatchSize() int          { return 0 }
func (panickingProcessor) SetBatchSize(int)        {}
func (panickingProcessor) ProcessingRate() float64 { return 0 }

func TestPipelineRunsAllThreeProcessors(t *testing.T) {
	p := NewPipeline()

	records := []weather.ProcessedRecord{
		record("Tokyo", 22),
		record("Cairo", 38),
	}
	result := p.Run(records)

	require.Len(t, result.Health, 2)
	require.Len(t, result.Traffic, 2)
	require.Len(t, result.Energy, 2)

	assert.Equal(t, TypeHealthRisk, result.Health[0].ProcessorType)
	assert.Equal(t, TypeTrafficOptimize, result.Traffic[0].ProcessorType)
	assert.Equal(t, TypeEnergyEfficiency, result.Energy[0].ProcessorType)

	// Each scored record carries only its own processor's section.
	assert.NotNil(t, result.Health[0].Health)
	assert.Nil(t, result.Health[0].Traffic)
	assert.NotNil(t, result.Traffic[0].Traffic)
	assert.Nil(t, result.Traffic[0].Energy)

	assert.Equal(t, 3, result.Stats.TotalProcessors)
	assert.Equal(t, 2, result.Stats.TotalDataPoints)
}

func TestPipelineEmptyBatch(t *testing.T) {
	result := NewPipeline().Run(nil)

	assert.Empty(t, result.Health)
	assert.Empty(t, result.Traffic)
	assert.Empty(t, result.Energy)
	assert.Equal(t, 0, result.Stats.TotalDataPoints)
}

func TestPipelinePanicIsolation(t *testing.T) {
	p := &Pipeline{
		health:  panickingProcessor{},
		traffic: NewTrafficOptimizationProcessor(),
		energy:  NewEnergyEfficiencyProcessor(),
	}

	result := p.Run([]weather.ProcessedRecord{record("Tokyo", 22)})

	assert.Empty(t, result.Health, "the panicking processor yields an empty result")
	assert.Len(t, result.Traffic, 1, "siblings are unaffected")
	assert.Len(t, result.Energy, 1)
}

func TestSummarize(t *testing.T) {
	p := NewPipeline()

	hot := record("Phoenix", 42)
	hot.WeatherIndex = 180
	mild := record("Vancouver", 18)
	mild.WeatherIndex = 35

	summary := Summarize(p.Run([]weather.ProcessedRecord{hot, mild}))

	assert.Equal(t, 1, summary.Health.HighRiskLocations)
	assert.NotEmpty(t, summary.Health.Recommendations)
	assert.NotEmpty(t, summary.Recommendations)
	assert.LessOrEqual(t, len(summary.Recommendations), 6)
	assert.Equal(t, 0, summary.Traffic.CongestedAreas)
}

func TestSummarizeEmptyResult(t *testing.T) {
	summary := Summarize(Result{})

	assert.Equal(t, 0, summary.Health.AverageRiskScore)
	assert.Equal(t, 0, summary.Traffic.AverageTrafficImpact)
	assert.Equal(t, 0, summary.Energy.AverageEfficiencyScore)
	assert.Empty(t, summary.Recommendations)
}
