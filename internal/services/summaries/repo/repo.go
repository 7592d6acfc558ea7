// Package repo provides postgres access for daily and monthly summaries
package repo

import (
	"context"
	"fmt"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/summaries/domain"
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

// statArrays is the unnest argument list for the nine stat columns starting at $n
func statArrays(n int) string {
	s := ""
	for i := 0; i < 9; i++ {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("$%d::float8[]", n+i)
	}
	return s
}

const statUpdate = `
	average_temperature = EXCLUDED.average_temperature,
	min_temperature     = EXCLUDED.min_temperature,
	max_temperature     = EXCLUDED.max_temperature,
	average_wind_speed  = EXCLUDED.average_wind_speed,
	min_wind_speed      = EXCLUDED.min_wind_speed,
	max_wind_speed      = EXCLUDED.max_wind_speed,
	precipitation_sum   = EXCLUDED.precipitation_sum,
	precipitation_min   = EXCLUDED.precipitation_min,
	precipitation_max   = EXCLUDED.precipitation_max`

func scanSample(r store.Row) (weather.Sample, error) {
	var (
		t          *time.Time
		tmp, pr, w *float64
	)
	if err := r.Scan(&t, &tmp, &pr, &w); err != nil {
		return weather.Sample{}, err
	}
	s := weather.Sample{
		Temperature:   store.NaNIfNull(tmp),
		Precipitation: store.NaNIfNull(pr),
		WindSpeed:     store.NaNIfNull(w),
	}
	// a NULL time stays zero and is skipped by the bucketing
	if t != nil {
		s.Time = *t
	}
	return s, nil
}

// AllSamples implements domain.StorageRepo
func (r *queries) AllSamples(ctx context.Context, locationID int64) ([]weather.Sample, error) {
	return store.Many(ctx, r.q, scanSample, `
		SELECT date, temperature, precipitation, wind_speed
		FROM hourly_weather
		WHERE location_id = $1
		ORDER BY date
	`, locationID)
}

// SamplesBetween implements domain.StorageRepo
func (r *queries) SamplesBetween(ctx context.Context, locationID int64, from, to time.Time) ([]weather.Sample, error) {
	return store.Many(ctx, r.q, scanSample, `
		SELECT date, temperature, precipitation, wind_speed
		FROM hourly_weather
		WHERE location_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`, locationID, from, to)
}

// DeleteDaily implements domain.StorageRepo
func (r *queries) DeleteDaily(ctx context.Context, locationID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM daily_weather WHERE location_id = $1`, locationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertDaily implements domain.StorageRepo
func (r *queries) InsertDaily(ctx context.Context, rows []weather.DailySummary) (int64, error) {
	return r.writeDaily(ctx, rows, "")
}

// UpsertDaily implements domain.StorageRepo
func (r *queries) UpsertDaily(ctx context.Context, rows []weather.DailySummary) (int64, error) {
	return r.writeDaily(ctx, rows, `ON CONFLICT (location_id, date_time) DO UPDATE SET
		month = EXCLUDED.month, day_of_month = EXCLUDED.day_of_month, year = EXCLUDED.year,`+statUpdate)
}

func (r *queries) writeDaily(ctx context.Context, rows []weather.DailySummary, conflict string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n := len(rows)
	locs, days := make([]int64, n), make([]time.Time, n)
	months, dom, year := make([]int16, n), make([]int16, n), make([]int16, n)
	stats := make([]weather.Stats, n)
	for i, d := range rows {
		locs[i], days[i], stats[i] = d.LocationID, d.Date, d.Stats
		months[i], dom[i], year[i] = int16(d.Month), int16(d.DayOfMonth), int16(d.Year)
	}
	args := append([]any{locs, days, months, dom, year}, statArgs(stats)...)

	tag, err := r.q.Exec(ctx, `
		INSERT INTO daily_weather (location_id, date_time, month, day_of_month, year, `+statCols+`)
		SELECT * FROM unnest($1::int8[], $2::date[], $3::int2[], $4::int2[], $5::int2[], `+statArrays(6)+`)
		`+conflict, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// LatestDaily implements domain.StorageRepo
func (r *queries) LatestDaily(ctx context.Context, locationID int64) (time.Time, bool, error) {
	t, err := store.Scalar[*time.Time](ctx, r.q, `SELECT max(date_time) FROM daily_weather WHERE location_id = $1`, locationID)
	if err != nil || t == nil {
		return time.Time{}, false, err
	}
	return *t, true, nil
}

// DeleteMonthly implements domain.StorageRepo
func (r *queries) DeleteMonthly(ctx context.Context, locationID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM monthly_weather WHERE location_id = $1`, locationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertMonthly implements domain.StorageRepo
func (r *queries) InsertMonthly(ctx context.Context, rows []weather.MonthlySummary) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n := len(rows)
	locs, months := make([]int64, n), make([]time.Time, n)
	num, year := make([]int16, n), make([]int16, n)
	stats := make([]weather.Stats, n)
	for i, m := range rows {
		locs[i], months[i], stats[i] = m.LocationID, m.Month, m.Stats
		num[i], year[i] = int16(m.MonthNum), int16(m.Year)
	}
	args := append([]any{locs, months, num, year}, statArgs(stats)...)

	tag, err := r.q.Exec(ctx, `
		INSERT INTO monthly_weather (location_id, date_time, month, year, `+statCols+`)
		SELECT * FROM unnest($1::int8[], $2::date[], $3::int2[], $4::int2[], `+statArrays(5)+`)
	`, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// statArgs lays stats out column wise in statCols order
func statArgs(stats []weather.Stats) []any {
	cols := make([][]*float64, 9)
	for j := range cols {
		cols[j] = make([]*float64, len(stats))
	}
	for i, s := range stats {
		for j, v := range []*float64{
			s.AverageTemperature, s.MinTemperature, s.MaxTemperature,
			s.AverageWindSpeed, s.MinWindSpeed, s.MaxWindSpeed,
			s.PrecipitationSum, s.PrecipitationMin, s.PrecipitationMax,
		} {
			cols[j][i] = v
		}
	}
	out := make([]any, len(cols))
	for j, c := range cols {
		out[j] = c
	}
	return out
}
