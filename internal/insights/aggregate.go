package insights

import (
	"time"

	"github.com/urbanpulse/weather-monitor/internal/cache"
	"github.com/urbanpulse/weather-monitor/internal/common"
	"github.com/urbanpulse/weather-monitor/internal/store"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// CityHighlight names the city at one end of the temperature range.
type CityHighlight struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
}

// GlobalSummary is the cross-city aggregate view. It is computed over the
// rolling buffer with each city counted once (newest record wins).
type GlobalSummary struct {
	TotalCities        int            `json:"totalCities"`
	AverageTemperature float64        `json:"averageTemperature"`
	CitiesWithAlerts   int            `json:"citiesWithAlerts"`
	CoolestCity        *CityHighlight `json:"coolestCity,omitempty"`
	WarmestCity        *CityHighlight `json:"warmestCity,omitempty"`
	DataVolume         int            `json:"dataVolume"`
	CountriesCovered   int            `json:"countriesCovered"`
	LastUpdated        time.Time      `json:"lastUpdated"`
}

// BuildGlobalSummary aggregates a record set into the dashboard headline
// numbers. Duplicate cities are collapsed to their newest record first so a
// city refreshed several times within the window is not double counted.
func BuildGlobalSummary(records []weather.ProcessedRecord) GlobalSummary {
	deduped := dedupeByCity(records)
	if len(deduped) == 0 {
		return GlobalSummary{LastUpdated: time.Now().UTC()}
	}

	var tempSum float64
	var alerts int
	countries := make(map[string]struct{})
	coolest, warmest := deduped[0], deduped[0]

	for _, rec := range deduped {
		tempSum += rec.Temperature
		if rec.Temperature > 35 || rec.Temperature < -10 || rec.WeatherIndex > 100 {
			alerts++
		}
		if rec.Country != "" {
			countries[rec.Country] = struct{}{}
		}
		if rec.Temperature < coolest.Temperature {
			coolest = rec
		}
		if rec.Temperature > warmest.Temperature {
			warmest = rec
		}
	}

	return GlobalSummary{
		TotalCities:        len(deduped),
		AverageTemperature: common.Round1(tempSum / float64(len(deduped))),
		CitiesWithAlerts:   alerts,
		CoolestCity:        &CityHighlight{City: coolest.Location, Temperature: coolest.Temperature},
		WarmestCity:        &CityHighlight{City: warmest.Location, Temperature: warmest.Temperature},
		DataVolume:         len(deduped) * 7, // metrics tracked per city
		CountriesCovered:   len(countries),
		LastUpdated:        time.Now().UTC(),
	}
}

// BuildGlobalSummaryFromRows aggregates durable-store rows. The store is
// append-only, so a city appears once per write-back; duplicates collapse
// to the newest cached_at before anything is counted.
func BuildGlobalSummaryFromRows(rows []store.CachedRow) GlobalSummary {
	newest := make(map[string]store.CachedRow, len(rows))
	for _, row := range rows {
		key := common.NormalizeCityName(row.CityName)
		if current, ok := newest[key]; !ok || row.CachedAt.After(current.CachedAt) {
			newest[key] = row
		}
	}

	records := make([]weather.ProcessedRecord, 0, len(newest))
	for _, row := range newest {
		records = append(records, cache.RecordFromRow(row))
	}
	return BuildGlobalSummary(records)
}

func dedupeByCity(records []weather.ProcessedRecord) []weather.ProcessedRecord {
	newest := make(map[string]weather.ProcessedRecord, len(records))
	for _, rec := range records {
		key := common.NormalizeCityName(rec.Location)
		if current, ok := newest[key]; !ok || rec.Timestamp.After(current.Timestamp) {
			newest[key] = rec
		}
	}

	out := make([]weather.ProcessedRecord, 0, len(newest))
	for _, rec := range newest {
		out = append(out, rec)
	}
	return out
}
