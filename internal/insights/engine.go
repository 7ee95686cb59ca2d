package insights

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urbanpulse/weather-monitor/internal/cache"
	"github.com/urbanpulse/weather-monitor/internal/common"
	"github.com/urbanpulse/weather-monitor/internal/narration"
	"github.com/urbanpulse/weather-monitor/internal/processors"
	"github.com/urbanpulse/weather-monitor/internal/store"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// MultiFetcher produces a fresh multi-city batch. Satisfied by
// *weather.Service.
type MultiFetcher interface {
	MultiCityWeather(ctx context.Context, limit int) ([]weather.ProcessedRecord, error)
}

// Narrator generates model-written insights. Satisfied by
// *narration.Client.
type Narrator interface {
	GenerateInsights(ctx context.Context, records []weather.ProcessedRecord) ([]narration.Insight, error)
	GenerateCityInsight(ctx context.Context, rec weather.ProcessedRecord) (*narration.Insight, error)
}

// RealtimeStats reports engine liveness for the dashboard.
type RealtimeStats struct {
	RefreshCount     int       `json:"refreshCount"`
	LastRefresh      time.Time `json:"lastRefresh"`
	LastNarration    time.Time `json:"lastNarration"`
	BufferedInsights int       `json:"bufferedInsights"`
	TrackedCities    int       `json:"trackedCities"`
}

// Dashboard is the composed snapshot served to clients.
type Dashboard struct {
	Global    GlobalSummary      `json:"globalSummary"`
	Anomalies []Anomaly          `json:"anomalies"`
	Insights  []Anomaly          `json:"aiInsights"`
	Scores    processors.Summary `json:"scores"`
	Realtime  RealtimeStats      `json:"realtime"`
}

// Engine owns the periodic refresh state: it pulls fresh batches, feeds the
// cache and rolling anomaly buffer, runs the processor pipeline and keeps
// the latest narration. All snapshots are copies; callers never share
// engine-internal slices.
type Engine struct {
	fetcher   MultiFetcher
	cache     *cache.ReadThrough // may be nil
	rows      store.RowStore     // may be nil when no durable store is configured
	pipeline  *processors.Pipeline
	narrator  Narrator // may be nil when no model credential is configured
	cityLimit int
	buffer    *Buffer

	mu            sync.RWMutex
	records       []weather.ProcessedRecord
	aiInsights    []Anomaly
	summary       GlobalSummary
	scores        processors.Result
	scoreSummary  processors.Summary
	refreshCount  int
	lastRefresh   time.Time
	lastNarration time.Time
}

func NewEngine(fetcher MultiFetcher, readThrough *cache.ReadThrough, rows store.RowStore, pipeline *processors.Pipeline, narrator Narrator, cityLimit int) *Engine {
	return &Engine{
		fetcher:   fetcher,
		cache:     readThrough,
		rows:      rows,
		pipeline:  pipeline,
		narrator:  narrator,
		cityLimit: cityLimit,
		buffer:    NewBuffer(),
	}
}

// RefreshCities performs one monitoring cycle: fetch, cache, score,
// aggregate. Detected anomalies are appended to the rolling buffer, not
// swapped in, so earlier cycles' alerts stay visible until trimmed. An
// empty batch (every source down) keeps the previous state so the
// dashboard degrades to stale data rather than blanking out.
func (e *Engine) RefreshCities(ctx context.Context) error {
	batch, err := e.fetcher.MultiCityWeather(ctx, e.cityLimit)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		log.Println("insights: refresh produced no records, keeping previous state")
		return nil
	}

	if e.cache != nil {
		for _, rec := range batch {
			e.cache.Put(rec)
			if rec.Source != cache.SourceCached {
				e.cache.WriteBack(rec)
			}
		}
	}

	result := e.pipeline.Run(batch)
	scoreSummary := processors.Summarize(result)
	anomalies := DetectAnomalies(batch)
	e.buffer.Add(anomalies...)
	summary := BuildGlobalSummary(batch)

	e.mu.Lock()
	e.records = batch
	e.summary = summary
	e.scores = result
	e.scoreSummary = scoreSummary
	e.refreshCount++
	e.lastRefresh = time.Now().UTC()
	e.mu.Unlock()

	log.Printf("insights: refreshed %d cities, %d anomalies detected", len(batch), len(anomalies))
	return nil
}

// RefreshNarration replaces the model-generated insights. Any failure keeps
// the previous set; narration is an enhancement, never a dependency.
func (e *Engine) RefreshNarration(ctx context.Context) error {
	if e.narrator == nil {
		return nil
	}

	e.mu.RLock()
	batch := make([]weather.ProcessedRecord, len(e.records))
	copy(batch, e.records)
	e.mu.RUnlock()

	if len(batch) == 0 {
		return nil
	}

	generated, err := e.narrator.GenerateInsights(ctx, batch)
	if err != nil {
		log.Printf("insights: narration refresh failed, keeping previous insights: %v", err)
		return err
	}

	converted := make([]Anomaly, 0, len(generated))
	for _, in := range generated {
		converted = append(converted, anomalyFromInsight(in))
	}

	e.mu.Lock()
	e.aiInsights = converted
	e.lastNarration = time.Now().UTC()
	e.mu.Unlock()

	log.Printf("insights: narration refreshed with %d insights", len(converted))
	return nil
}

// CityInsight asks the model for one insight about a single record. A nil
// insight with nil error means narration is not configured.
func (e *Engine) CityInsight(ctx context.Context, rec weather.ProcessedRecord) (*Anomaly, error) {
	if e.narrator == nil {
		return nil, nil
	}
	in, err := e.narrator.GenerateCityInsight(ctx, rec)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, nil
	}
	a := anomalyFromInsight(*in)
	return &a, nil
}

// Records returns the latest fetched batch.
func (e *Engine) Records() []weather.ProcessedRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]weather.ProcessedRecord, len(e.records))
	copy(out, e.records)
	return out
}

// Anomalies returns the rolling anomaly window, oldest first.
func (e *Engine) Anomalies() []Anomaly {
	return e.buffer.Snapshot()
}

// Insights returns the latest model-generated insights.
func (e *Engine) Insights() []Anomaly {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Anomaly, len(e.aiInsights))
	copy(out, e.aiInsights)
	return out
}

// Global aggregates the durable store when one is configured, so a freshly
// restarted instance answers from warm cached rows before its first cycle
// completes. Store errors and an empty store fall back to the summary of
// the latest fetched batch.
func (e *Engine) Global(ctx context.Context) GlobalSummary {
	if e.rows != nil {
		rows, err := e.rows.ListRecent(ctx)
		if err != nil {
			log.Printf("insights: store aggregation failed, serving in-memory summary: %v", err)
		} else if len(rows) > 0 {
			return BuildGlobalSummaryFromRows(rows)
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.summary
}

// Scores returns the full three-way pipeline result of the latest cycle.
func (e *Engine) Scores() processors.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scores
}

// Snapshot composes the full dashboard view.
func (e *Engine) Snapshot(ctx context.Context) Dashboard {
	global := e.Global(ctx)
	anomalies := e.buffer.Snapshot()

	e.mu.RLock()
	defer e.mu.RUnlock()

	aiInsights := make([]Anomaly, len(e.aiInsights))
	copy(aiInsights, e.aiInsights)

	return Dashboard{
		Global:    global,
		Anomalies: anomalies,
		Insights:  aiInsights,
		Scores:    e.scoreSummary,
		Realtime: RealtimeStats{
			RefreshCount:     e.refreshCount,
			LastRefresh:      e.lastRefresh,
			LastNarration:    e.lastNarration,
			BufferedInsights: len(anomalies),
			TrackedCities:    global.TotalCities,
		},
	}
}

// anomalyFromInsight maps a narration insight into the anomaly model the
// dashboard serves, classifying free-form model types into known buckets.
func anomalyFromInsight(in narration.Insight) Anomaly {
	return Anomaly{
		ID:         uuid.NewString(),
		Type:       mapInsightType(in.Type),
		City:       in.City,
		Severity:   Severity(in.Severity),
		Confidence: in.Confidence,
		Prediction: in.Prediction,
		DataSource: in.DataSource,
		Timeframe:  in.Timeframe,
		Impact:     in.Impact,
		DetectedAt: in.DetectedAt,
	}
}

func mapInsightType(t string) AnomalyType {
	switch {
	case common.HasAny(t, "storm"):
		return TypeStormWarning
	case common.HasAny(t, "temperature"):
		return TypeTemperatureExtreme
	case common.HasAny(t, "anomaly", "pattern"):
		return TypeUnusualPattern
	case common.HasAny(t, "health"):
		return TypeHealthAlert
	case common.HasAny(t, "traffic"):
		return TypeTrafficImpact
	case common.HasAny(t, "energy"):
		return TypeEnergyDemand
	default:
		return TypeWeatherAlert
	}
}
