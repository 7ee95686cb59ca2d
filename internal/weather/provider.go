package weather

import (
	"context"
	"errors"
)

// ErrNoData signals that every source failed to produce a record. Callers
// must surface an explicit empty state rather than fabricate a reading.
var ErrNoData = errors.New("no weather data available")

// Source abstracts a weather data provider (e.g. OpenWeatherMap, or the
// legacy AQICN air-quality feed used as fallback).
//
// Both lookups return (nil, err) on any degraded condition: non-2xx status,
// malformed payload, missing credential. Callers log the error and try the
// next source; a source error is never fatal to a batch.
type Source interface {
	Name() string
	FetchByCoordinates(ctx context.Context, lat, lng float64) (*CityObservation, error)
	FetchByName(ctx context.Context, city, country string) (*CityObservation, error)
}

// GlobalCities is the fixed roster the multi-city connector works through.
var GlobalCities = []City{
	{Name: "New York", Country: "USA", Lat: 40.7128, Lng: -74.006},
	{Name: "London", Country: "UK", Lat: 51.5074, Lng: -0.1278},
	{Name: "Tokyo", Country: "Japan", Lat: 35.6762, Lng: 139.6503},
	{Name: "Paris", Country: "France", Lat: 48.8566, Lng: 2.3522},
	{Name: "Shanghai", Country: "China", Lat: 31.2304, Lng: 121.4737},
	{Name: "Delhi", Country: "India", Lat: 28.7041, Lng: 77.1025},
	{Name: "São Paulo", Country: "Brazil", Lat: -23.5505, Lng: -46.6333},
	{Name: "Moscow", Country: "Russia", Lat: 55.7558, Lng: 37.6176},
	{Name: "Mexico City", Country: "Mexico", Lat: 19.4326, Lng: -99.1332},
	{Name: "Los Angeles", Country: "USA", Lat: 34.0522, Lng: -118.2437},
	{Name: "Cairo", Country: "Egypt", Lat: 30.0444, Lng: 31.2357},
	{Name: "Jakarta", Country: "Indonesia", Lat: -6.2088, Lng: 106.8456},
	{Name: "Bangkok", Country: "Thailand", Lat: 13.7563, Lng: 100.5018},
	{Name: "Sydney", Country: "Australia", Lat: -33.8688, Lng: 151.2093},
	{Name: "Istanbul", Country: "Turkey", Lat: 41.0082, Lng: 28.9784},
	{Name: "Berlin", Country: "Germany", Lat: 52.52, Lng: 13.405},
	{Name: "Buenos Aires", Country: "Argentina", Lat: -34.6118, Lng: -58.396},
	{Name: "Lagos", Country: "Nigeria", Lat: 6.5244, Lng: 3.3792},
	{Name: "Seoul", Country: "South Korea", Lat: 37.5665, Lng: 126.978},
	{Name: "Toronto", Country: "Canada", Lat: 43.6532, Lng: -79.3832},
}
