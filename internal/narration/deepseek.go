// Package narration turns processed weather records into free-text insight
// via a hosted LLM. The model is a black-box text generator: the caller
// builds a prompt from the records and must treat every failure (missing
// credential, network error, non-JSON reply) as "no narration available",
// falling back to deterministic aggregates.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/weather"
)

const (
	defaultBaseURL = "https://api.deepseek.com"
	defaultModel   = "deepseek-chat"

	// dataSourceTag marks insights produced by the model, as opposed to the
	// statistical anomaly pass.
	dataSourceTag = "DEEPSEEK_AI_ANALYSIS"
)

// Insight is one model-generated (or fallback) observation about a city.
type Insight struct {
	Type       string    `json:"type"`
	City       string    `json:"city"`
	Severity   string    `json:"severity"`
	Confidence int       `json:"confidence"`
	Prediction string    `json:"prediction"`
	DataSource string    `json:"dataSource"`
	Timeframe  string    `json:"timeframe"`
	Impact     string    `json:"impact"`
	DetectedAt time.Time `json:"detectedAt"`
}

// Client calls the DeepSeek chat-completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: httpClient,
	}
}

// WithBaseURL points the client at a different endpoint. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateInsights asks the model for 3-4 actionable insights over the
// batch. A reply that cannot be parsed degrades to FallbackInsights; a
// transport or credential failure returns an error and the caller keeps
// whatever insights it already has.
func (c *Client) GenerateInsights(ctx context.Context, records []weather.ProcessedRecord) ([]Insight, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("deepseek api key is not configured")
	}

	text, err := c.complete(ctx, buildAnalysisPrompt(records), 0.3)
	if err != nil {
		return nil, err
	}
	return parseInsights(text, records), nil
}

// GenerateCityInsight asks for a single insight about one city.
func (c *Client) GenerateCityInsight(ctx context.Context, rec weather.ProcessedRecord) (*Insight, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("deepseek api key is not configured")
	}

	prompt := fmt.Sprintf(`Analyze this weather data for %s and provide one specific insight:

City: %s
Temperature: %.1f°C
Humidity: %.0f%%
Precipitation: %.1fmm
Wind Speed: %.1f km/h
Pressure: %.0f hPa
Weather Condition: %s

Provide a JSON response with one actionable insight about the current weather conditions and forecast recommendations.`,
		rec.Location, rec.Location, rec.Temperature, rec.Humidity,
		rec.Precipitation, rec.WindSpeed, rec.Pressure, rec.Condition)

	text, err := c.complete(ctx, prompt, 0.2)
	if err != nil {
		return nil, err
	}

	insights := parseInsights(text, []weather.ProcessedRecord{rec})
	if len(insights) == 0 {
		return nil, nil
	}
	return &insights[0], nil
}

func (c *Client) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek responded with status %d", resp.StatusCode)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("deepseek reply contained no choices")
	}
	return payload.Choices[0].Message.Content, nil
}

func buildAnalysisPrompt(records []weather.ProcessedRecord) string {
	type promptCity struct {
		Name          string  `json:"name"`
		Temperature   float64 `json:"temperature"`
		Humidity      float64 `json:"humidity"`
		Precipitation float64 `json:"precipitation"`
		WindSpeed     float64 `json:"windSpeed"`
		Pressure      float64 `json:"pressure"`
		Condition     string  `json:"weatherCondition"`
		WeatherIndex  int     `json:"weatherIndex"`
		Timestamp     string  `json:"timestamp"`
	}

	cities := make([]promptCity, 0, len(records))
	for _, rec := range records {
		cities = append(cities, promptCity{
			Name:          rec.Location,
			Temperature:   rec.Temperature,
			Humidity:      rec.Humidity,
			Precipitation: rec.Precipitation,
			WindSpeed:     rec.WindSpeed,
			Pressure:      rec.Pressure,
			Condition:     rec.Condition,
			WeatherIndex:  rec.WeatherIndex,
			Timestamp:     rec.Timestamp.Format(time.RFC3339),
		})
	}

	serialized, _ := json.MarshalIndent(cities, "", "  ")

	return fmt.Sprintf(`You are an expert meteorological data analyst specializing in weather monitoring and forecast assessment.

Analyze the following real-time weather data from multiple cities and generate 3-4 actionable insights:

CURRENT WEATHER DATA:
%s

ANALYSIS REQUIREMENTS:
1. Identify cities with concerning weather conditions (severe storms, extreme temperatures)
2. Detect unusual patterns or anomalies in weather patterns
3. Assess potential weather risks for vulnerable populations
4. Predict short-term weather trends based on current conditions

For each insight, provide:
- Type: (WEATHER_ALERT, STORM_WARNING, TEMPERATURE_EXTREME, ANOMALY_DETECTION, etc.)
- City: The specific city affected
- Severity: LOW, MEDIUM, HIGH, or CRITICAL
- Confidence: (percentage from 70-99)
- Prediction: Clear, actionable statement (max 80 words)
- Impact: LOW, MEDIUM, HIGH, or CRITICAL
- Timeframe: (Current, Next 2 hours, Today, etc.)

Format your response as a JSON array with this structure:
[
  {
    "type": "INSIGHT_TYPE",
    "city": "City Name",
    "severity": "LEVEL",
    "confidence": 85,
    "prediction": "Clear description of the insight and recommended actions",
    "impact": "LEVEL",
    "timeframe": "Time period"
  }
]

Focus on practical, actionable insights that help citizens and authorities make informed decisions about outdoor activities and weather precautions.`, serialized)
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseInsights extracts the first JSON array from the model's reply. An
// unparseable reply degrades to fallback insights rather than an error.
func parseInsights(reply string, records []weather.ProcessedRecord) []Insight {
	match := jsonArrayPattern.FindString(reply)
	if match == "" {
		return FallbackInsights(records)
	}

	var raw []struct {
		Type       string `json:"type"`
		City       string `json:"city"`
		Severity   string `json:"severity"`
		Confidence int    `json:"confidence"`
		Prediction string `json:"prediction"`
		Impact     string `json:"impact"`
		Timeframe  string `json:"timeframe"`
	}
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return FallbackInsights(records)
	}

	insights := make([]Insight, 0, len(raw))
	for _, r := range raw {
		insights = append(insights, Insight{
			Type:       defaultString(r.Type, "GENERAL_ANALYSIS"),
			City:       defaultString(r.City, "Multiple Cities"),
			Severity:   defaultString(r.Severity, "MEDIUM"),
			Confidence: clampConfidence(r.Confidence),
			Prediction: defaultString(r.Prediction, "Weather analysis completed"),
			DataSource: dataSourceTag,
			Timeframe:  defaultString(r.Timeframe, "Current"),
			Impact:     defaultString(r.Impact, "MEDIUM"),
			DetectedAt: time.Now().UTC(),
		})
	}
	return insights
}

// FallbackInsights builds deterministic insights from the records when the
// model is unavailable or its reply is unusable: at most one critical-tier
// and one elevated-tier entry.
func FallbackInsights(records []weather.ProcessedRecord) []Insight {
	var insights []Insight

	for _, rec := range records {
		if rec.Temperature > 35 || rec.Temperature < -10 ||
			rec.Precipitation > 50 || rec.WindSpeed > 30 || rec.WeatherIndex > 150 {
			insights = append(insights, Insight{
				Type:       "WEATHER_ALERT",
				City:       rec.Location,
				Severity:   "CRITICAL",
				Confidence: 88,
				Prediction: fmt.Sprintf("Severe weather conditions in %s (Temp: %.1f°C, %s). Take necessary weather precautions and stay informed.", rec.Location, rec.Temperature, rec.Condition),
				DataSource: dataSourceTag,
				Timeframe:  "Current",
				Impact:     "CRITICAL",
				DetectedAt: time.Now().UTC(),
			})
			break
		}
	}

	for _, rec := range records {
		if (rec.Temperature > 30 || rec.Temperature < -5) || rec.Precipitation > 30 ||
			(rec.WeatherIndex > 100 && rec.WeatherIndex <= 150) {
			insights = append(insights, Insight{
				Type:       "WEATHER_WARNING",
				City:       rec.Location,
				Severity:   "HIGH",
				Confidence: 82,
				Prediction: fmt.Sprintf("Elevated weather risk detected in %s (Temp: %.1f°C, %s). Consider weather-appropriate precautions and stay updated.", rec.Location, rec.Temperature, rec.Condition),
				DataSource: dataSourceTag,
				Timeframe:  "Current",
				Impact:     "HIGH",
				DetectedAt: time.Now().UTC(),
			})
			break
		}
	}

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func clampConfidence(v int) int {
	if v == 0 {
		v = 80
	}
	if v < 70 {
		return 70
	}
	if v > 99 {
		return 99
	}
	return v
}
