package weather

import (
	"context"

	"github.com/urbanpulse/weather-monitor/internal/common"
)

// Service is the live-fetch pipeline front door: multi-city connector
// followed by normalization.
type Service struct {
	connector  *Connector
	normalizer *Normalizer
}

func NewService(connector *Connector, normalizer *Normalizer) *Service {
	return &Service{
		connector:  connector,
		normalizer: normalizer,
	}
}

// MultiCityWeather fetches and normalizes up to limit roster cities.
// An empty slice with a nil error is the explicit all-sources-failed
// signal; it is never padded with fabricated rows.
func (s *Service) MultiCityWeather(ctx context.Context, limit int) ([]ProcessedRecord, error) {
	observations := s.connector.FetchMany(ctx, limit)
	return s.normalizer.NormalizeAll(observations), nil
}

// CityWeather resolves a single city by fuzzy name match against the full
// roster fetch. Returns ErrNoData when no source produced a matching record.
func (s *Service) CityWeather(ctx context.Context, name string) (*ProcessedRecord, error) {
	observations := s.connector.FetchMany(ctx, len(GlobalCities))
	for _, obs := range observations {
		if common.CityNameMatches(name, obs.City, obs.Location) {
			rec := s.normalizer.Normalize(obs)
			return &rec, nil
		}
	}
	return nil, ErrNoData
}
