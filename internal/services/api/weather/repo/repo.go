// Package repo provides postgres reads for the summary query facade
package repo

import (
	"context"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/api/weather/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const statCols = `average_temperature, min_temperature, max_temperature,
	average_wind_speed, min_wind_speed, max_wind_speed,
	precipitation_sum, precipitation_min, precipitation_max`

func statDest(s *weather.Stats) []any {
	return []any{
		&s.AverageTemperature, &s.MinTemperature, &s.MaxTemperature,
		&s.AverageWindSpeed, &s.MinWindSpeed, &s.MaxWindSpeed,
		&s.PrecipitationSum, &s.PrecipitationMin, &s.PrecipitationMax,
	}
}

func scanDaily(r store.Row) (weather.DailySummary, error) {
	var (
		d              weather.DailySummary
		month, dom, yr int16
	)
	dst := append([]any{&d.LocationID, &d.Date, &month, &dom, &yr}, statDest(&d.Stats)...)
	if err := r.Scan(dst...); err != nil {
		return d, err
	}
	d.Month, d.DayOfMonth, d.Year = int(month), int(dom), int(yr)
	return d, nil
}

func scanMonthly(r store.Row) (weather.MonthlySummary, error) {
	var (
		m         weather.MonthlySummary
		month, yr int16
	)
	dst := append([]any{&m.LocationID, &m.Month, &month, &yr}, statDest(&m.Stats)...)
	if err := r.Scan(dst...); err != nil {
		return m, err
	}
	m.MonthNum, m.Year = int(month), int(yr)
	return m, nil
}

// GetDaily implements domain.StorageRepo
func (r *queries) GetDaily(ctx context.Context, locationID int64, day time.Time) (weather.DailySummary, error) {
	return store.One(ctx, r.q, scanDaily, `
		SELECT location_id, date_time, month, day_of_month, year, `+statCols+`
		FROM daily_weather
		WHERE location_id = $1 AND date_time = $2
	`, locationID, day)
}

// ListDaily implements domain.StorageRepo. Both days are inclusive
func (r *queries) ListDaily(ctx context.Context, locationID int64, from, to time.Time) ([]weather.DailySummary, error) {
	return store.Many(ctx, r.q, scanDaily, `
		SELECT location_id, date_time, month, day_of_month, year, `+statCols+`
		FROM daily_weather
		WHERE location_id = $1 AND date_time BETWEEN $2 AND $3
		ORDER BY date_time
	`, locationID, from, to)
}

// GetMonthly implements domain.StorageRepo
func (r *queries) GetMonthly(ctx context.Context, locationID int64, month time.Time) (weather.MonthlySummary, error) {
	return store.One(ctx, r.q, scanMonthly, `
		SELECT location_id, date_time, month, year, `+statCols+`
		FROM monthly_weather
		WHERE location_id = $1 AND date_time = $2
	`, locationID, month)
}
