package narration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

func sampleRecords() []weather.ProcessedRecord {
	return []weather.ProcessedRecord{
		{
			CityObservation: weather.CityObservation{
				City:        "Tokyo",
				Location:    "Tokyo, JP",
				Temperature: 22,
				Humidity:    60,
				Condition:   "Clear",
				Timestamp:   time.Now().UTC(),
			},
		},
	}
}

func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	out, _ := json.Marshal(reply)
	return string(out)
}

func TestGenerateInsightsParsesModelReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.Equal(t, 0.3, req.Temperature)

		content := `Here is my analysis:
[
  {"type": "STORM_WARNING", "city": "Tokyo", "severity": "HIGH", "confidence": 120, "prediction": "Storm approaching", "impact": "HIGH", "timeframe": "Next 2 hours"}
]`
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatReply(content)))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key").WithBaseURL(srv.URL)

	insights, err := c.GenerateInsights(context.Background(), sampleRecords())
	require.NoError(t, err)
	require.Len(t, insights, 1)

	assert.Equal(t, "STORM_WARNING", insights[0].Type)
	assert.Equal(t, "Tokyo", insights[0].City)
	assert.Equal(t, 99, insights[0].Confidence, "confidence clamps to [70,99]")
	assert.Equal(t, "DEEPSEEK_AI_ANALYSIS", insights[0].DataSource)
	assert.False(t, insights[0].DetectedAt.IsZero())
}

func TestGenerateInsightsFallsBackOnUnparseableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(chatReply("I could not produce JSON this time, sorry.")))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key").WithBaseURL(srv.URL)

	records := sampleRecords()
	records[0].Temperature = 41 // severe conditions so the fallback has something to say

	insights, err := c.GenerateInsights(context.Background(), records)
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, "WEATHER_ALERT", insights[0].Type)
}

func TestGenerateInsightsMissingKey(t *testing.T) {
	c := NewClient(http.DefaultClient, "")
	_, err := c.GenerateInsights(context.Background(), sampleRecords())
	assert.Error(t, err)
}

func TestGenerateInsightsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key").WithBaseURL(srv.URL)
	_, err := c.GenerateInsights(context.Background(), sampleRecords())
	assert.Error(t, err)
}

func TestGenerateCityInsight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		content := `[{"type": "WEATHER_ALERT", "city": "Tokyo", "severity": "MEDIUM", "confidence": 80, "prediction": "Stable conditions", "impact": "LOW", "timeframe": "Today"}]`
		_, _ = w.Write([]byte(chatReply(content)))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), "test-key").WithBaseURL(srv.URL)

	insight, err := c.GenerateCityInsight(context.Background(), sampleRecords()[0])
	require.NoError(t, err)
	require.NotNil(t, insight)
	assert.Equal(t, "Tokyo", insight.City)
	assert.Equal(t, 80, insight.Confidence)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 70, clampConfidence(10))
	assert.Equal(t, 80, clampConfidence(0), "missing confidence gets a default")
	assert.Equal(t, 85, clampConfidence(85))
	assert.Equal(t, 99, clampConfidence(150))
}

func TestFallbackInsights(t *testing.T) {
	severe := weather.ProcessedRecord{CityObservation: weather.CityObservation{
		Location: "Delhi, IN", Temperature: 43, Condition: "Clear",
	}}
	elevated := weather.ProcessedRecord{CityObservation: weather.CityObservation{
		Location: "Cairo, EG", Temperature: 32, Condition: "Clear",
	}}
	calm := weather.ProcessedRecord{CityObservation: weather.CityObservation{
		Location: "Lisbon, PT", Temperature: 20, Condition: "Clear",
	}}

	insights := FallbackInsights([]weather.ProcessedRecord{calm, severe, elevated})
	require.Len(t, insights, 2)
	assert.Equal(t, "WEATHER_ALERT", insights[0].Type)
	assert.Equal(t, "Delhi, IN", insights[0].City)
	assert.Equal(t, "WEATHER_WARNING", insights[1].Type)

	assert.Empty(t, FallbackInsights([]weather.ProcessedRecord{calm}))
}
