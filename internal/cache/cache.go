// Package cache implements the read-through layer in front of the live
// fetch pipeline: a short-TTL in-process cache, then the durable row store,
// then a live fetch with fire-and-forget write-back.
//
// The contract throughout is that the cache is an optimization, not a
// dependency: every store failure is logged and treated as a miss, and a
// total store outage must still serve live data.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/urbanpulse/weather-monitor/internal/common"
	"github.com/urbanpulse/weather-monitor/internal/store"
	"github.com/urbanpulse/weather-monitor/internal/weather"
)

// SourceCached tags records served from the durable store, so they are
// never written back again.
const SourceCached = "CACHED"

// DefaultTTL is how long an in-process entry stays fresh.
const DefaultTTL = 30 * time.Minute

// Fetcher produces a live record for a city. Satisfied by *weather.Service.
type Fetcher interface {
	CityWeather(ctx context.Context, name string) (*weather.ProcessedRecord, error)
}

type entry struct {
	record   weather.ProcessedRecord
	cachedAt time.Time
}

// ReadThrough is an explicitly owned cache object: construct one per
// deployment (or per test) and pass it by handle; there is no package-level
// instance.
type ReadThrough struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl     time.Duration
	rows    store.RowStore // may be nil when no durable store is configured
	fetcher Fetcher
	now     func() time.Time
}

func New(rows store.RowStore, fetcher Fetcher, ttl time.Duration) *ReadThrough {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReadThrough{
		entries: make(map[string]entry),
		ttl:     ttl,
		rows:    rows,
		fetcher: fetcher,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the TTL clock. Used by tests.
func (c *ReadThrough) WithClock(now func() time.Time) *ReadThrough {
	c.now = now
	return c
}

// GetCity resolves a city record: memory cache, then durable store, then a
// live fetch (with async write-back). Returns weather.ErrNoData only when
// every path came up empty.
func (c *ReadThrough) GetCity(ctx context.Context, name string) (*weather.ProcessedRecord, error) {
	key := common.NormalizeCityName(name)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.cachedAt) < c.ttl {
		rec := e.record
		return &rec, nil
	}

	if c.rows != nil {
		row, err := c.rows.FindLatestByCity(ctx, name)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("cache: store lookup failed for %s: %v", name, err)
		}
		if err == nil {
			rec := RecordFromRow(*row)
			c.put(key, rec)
			return &rec, nil
		}
	}

	rec, err := c.fetcher.CityWeather(ctx, name)
	if err != nil || rec == nil {
		if err != nil && !errors.Is(err, weather.ErrNoData) {
			log.Printf("cache: live fetch failed for %s: %v", name, err)
		}
		return nil, weather.ErrNoData
	}

	if rec.Source != SourceCached {
		c.WriteBack(*rec)
	}
	c.put(key, *rec)
	return rec, nil
}

// Put populates the memory cache for a freshly fetched record.
func (c *ReadThrough) Put(rec weather.ProcessedRecord) {
	c.put(common.NormalizeCityName(cityKeyOf(rec)), rec)
}

func (c *ReadThrough) put(key string, rec weather.ProcessedRecord) {
	c.mu.Lock()
	c.entries[key] = entry{record: rec, cachedAt: c.now()}
	c.mu.Unlock()
}

// WriteBack persists a record to the durable store without blocking the
// caller. Failures are logged, never propagated: losing a cache write must
// not fail a request.
func (c *ReadThrough) WriteBack(rec weather.ProcessedRecord) {
	if c.rows == nil {
		return
	}
	row := RowFromRecord(rec)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.rows.Insert(ctx, row); err != nil {
			log.Printf("cache: write-back failed for %s: %v", row.CityName, err)
		}
	}()
}

func cityKeyOf(rec weather.ProcessedRecord) string {
	if rec.City != "" {
		return rec.City
	}
	if i := strings.Index(rec.Location, ","); i >= 0 {
		return strings.TrimSpace(rec.Location[:i])
	}
	return rec.Location
}

// RowFromRecord flattens a processed record into a durable row.
func RowFromRecord(rec weather.ProcessedRecord) store.CachedRow {
	return store.CachedRow{
		CityName:          cityKeyOf(rec),
		Temperature:       rec.Temperature,
		Humidity:          rec.Humidity,
		Pressure:          rec.Pressure,
		WindSpeed:         rec.WindSpeed,
		Precipitation:     rec.Precipitation,
		FeelsLike:         rec.FeelsLike,
		Visibility:        rec.Visibility,
		UVIndex:           rec.UVIndex,
		WeatherIndex:      rec.WeatherIndex,
		WeatherCondition:  rec.Condition,
		HealthLevel:       rec.HealthLevel,
		DominantPollutant: rec.DominantPollutant,
		PM25:              rec.PM25,
		PM10:              rec.PM10,
		NO2:               rec.NO2,
		SO2:               rec.SO2,
		O3:                rec.O3,
		CO:                rec.CO,
		Latitude:          rec.Coordinates.Lat,
		Longitude:         rec.Coordinates.Lng,
		APISource:         rec.Source,
		Timestamp:         rec.Timestamp,
	}
}

// RecordFromRow rehydrates a durable row into a processed record tagged as
// cache-sourced.
func RecordFromRow(row store.CachedRow) weather.ProcessedRecord {
	condition := row.WeatherCondition
	if condition == "" {
		condition = "Clear"
	}

	return weather.ProcessedRecord{
		CityObservation: weather.CityObservation{
			City:              row.CityName,
			Coordinates:       weather.Coordinates{Lat: row.Latitude, Lng: row.Longitude},
			Temperature:       row.Temperature,
			Humidity:          row.Humidity,
			Pressure:          row.Pressure,
			WindSpeed:         row.WindSpeed,
			WeatherIndex:      row.WeatherIndex,
			Condition:         condition,
			HealthLevel:       row.HealthLevel,
			PM25:              row.PM25,
			PM10:              row.PM10,
			NO2:               row.NO2,
			SO2:               row.SO2,
			O3:                row.O3,
			CO:                row.CO,
			DominantPollutant: row.DominantPollutant,
			Location:          row.CityName,
			Timestamp:         row.Timestamp,
			Source:            SourceCached,
		},
		Precipitation: row.Precipitation,
		FeelsLike:     row.FeelsLike,
		Visibility:    row.Visibility,
		UVIndex:       row.UVIndex,
	}
}
