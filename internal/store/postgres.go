package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx, so the
// store works both pooled and inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the durable RowStore over the cached_weather_data table.
// The table is append-only: inserts never conflict, reads order by
// cached_at descending and ignore older duplicates per city.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const cachedColumns = `city_name, temperature, humidity, pressure, wind_speed,
	precipitation, feels_like, visibility, uv_index, weather_index,
	weather_condition, health_level, dominant_pollutant,
	pm25, pm10, no2, so2, o3, co,
	latitude, longitude, api_source, "timestamp", cached_at`

func scanCachedRow(row pgx.Row) (*CachedRow, error) {
	var r CachedRow
	err := row.Scan(
		&r.CityName,
		&r.Temperature,
		&r.Humidity,
		&r.Pressure,
		&r.WindSpeed,
		&r.Precipitation,
		&r.FeelsLike,
		&r.Visibility,
		&r.UVIndex,
		&r.WeatherIndex,
		&r.WeatherCondition,
		&r.HealthLevel,
		&r.DominantPollutant,
		&r.PM25,
		&r.PM10,
		&r.NO2,
		&r.SO2,
		&r.O3,
		&r.CO,
		&r.Latitude,
		&r.Longitude,
		&r.APISource,
		&r.Timestamp,
		&r.CachedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) Insert(ctx context.Context, row CachedRow) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cached_weather_data (
			city_name, temperature, humidity, pressure, wind_speed,
			precipitation, feels_like, visibility, uv_index, weather_index,
			weather_condition, health_level, dominant_pollutant,
			pm25, pm10, no2, so2, o3, co,
			latitude, longitude, api_source, "timestamp", cached_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, now()
		)`,
		row.CityName, row.Temperature, row.Humidity, row.Pressure, row.WindSpeed,
		row.Precipitation, row.FeelsLike, row.Visibility, row.UVIndex, row.WeatherIndex,
		row.WeatherCondition, row.HealthLevel, row.DominantPollutant,
		row.PM25, row.PM10, row.NO2, row.SO2, row.O3, row.CO,
		row.Latitude, row.Longitude, row.APISource, row.Timestamp,
	)
	return err
}

func (s *PostgresStore) FindLatestByCity(ctx context.Context, name string) (*CachedRow, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+cachedColumns+`
		FROM cached_weather_data
		WHERE city_name ILIKE '%' || $1 || '%'
		ORDER BY cached_at DESC
		LIMIT 1`, name)

	r, err := scanCachedRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context) ([]CachedRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+cachedColumns+`
		FROM cached_weather_data
		ORDER BY cached_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CachedRow
	for rows.Next() {
		r, err := scanCachedRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
