package weather

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// Cities are fetched in small batches with a fixed pause in between.
	// This is real backpressure against provider throttling, not cosmetics.
	defaultBatchSize  = 3
	defaultBatchDelay = 1 * time.Second

	// Default roster cut when the caller does not ask for a specific limit.
	defaultCityLimit = 15
)

// Connector orchestrates per-city fetches across the fixed roster.
// Sources are tried in order; within a source the coordinate lookup is tried
// first (more reliable), then the name lookup. A city for which every
// lookup fails is dropped from the result, never padded with a zero row.
type Connector struct {
	sources    []Source
	roster     []City
	batchSize  int
	batchDelay time.Duration
}

func NewConnector(sources []Source) *Connector {
	return &Connector{
		sources:    sources,
		roster:     GlobalCities,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
	}
}

// WithRoster replaces the city roster. Used by tests.
func (c *Connector) WithRoster(roster []City) *Connector {
	c.roster = roster
	return c
}

// WithBatchDelay overrides the inter-batch pause. Used by tests.
func (c *Connector) WithBatchDelay(d time.Duration) *Connector {
	c.batchDelay = d
	return c
}

// FetchCity runs the source fallback chain for a single roster city.
func (c *Connector) FetchCity(ctx context.Context, city City) *CityObservation {
	for _, src := range c.sources {
		obs, err := src.FetchByCoordinates(ctx, city.Lat, city.Lng)
		if err == nil && obs != nil {
			return obs
		}
		if err != nil {
			log.Printf("provider %s coordinate fetch failed for %s: %v", src.Name(), city.Name, err)
		}

		obs, err = src.FetchByName(ctx, city.Name, city.Country)
		if err == nil && obs != nil {
			return obs
		}
		if err != nil {
			log.Printf("provider %s name fetch failed for %s: %v", src.Name(), city.Name, err)
		}
	}
	return nil
}

// FetchMany fetches observations for up to limit roster cities. The limit
// truncates the roster before any fetching happens, to avoid wasted calls.
// Roster order is preserved among successful cities; callers must not assume
// a fixed result length.
func (c *Connector) FetchMany(ctx context.Context, limit int) []CityObservation {
	if limit <= 0 || limit > len(c.roster) {
		limit = defaultCityLimit
		if limit > len(c.roster) {
			limit = len(c.roster)
		}
	}
	cities := c.roster[:limit]

	// Index-addressed so batch goroutines keep roster order without sorting.
	slots := make([]*CityObservation, len(cities))

	for start := 0; start < len(cities); start += c.batchSize {
		end := start + c.batchSize
		if end > len(cities) {
			end = len(cities)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				slots[i] = c.FetchCity(ctx, cities[i])
			}()
		}
		wg.Wait()

		// Rate limiting between batches; batch N completes before N+1 starts.
		if end < len(cities) {
			timer := time.NewTimer(c.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return collect(slots)
			case <-timer.C:
			}
		}
	}

	results := collect(slots)
	log.Printf("fetched weather data for %d of %d cities", len(results), len(cities))
	return results
}

func collect(slots []*CityObservation) []CityObservation {
	results := make([]CityObservation, 0, len(slots))
	for _, obs := range slots {
		if obs != nil {
			results = append(results, *obs)
		}
	}
	return results
}
