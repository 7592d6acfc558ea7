// Package repo provides postgres access for hourly ingestion
package repo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/ingest/domain"
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

// ExistingTimes implements domain.StorageRepo
func (r *queries) ExistingTimes(
	ctx context.Context,
	locationID int64,
	set weather.VariableSet,
	from, to time.Time,
) (map[int64]struct{}, error) {
	rows, err := r.q.Query(ctx, fmt.Sprintf(`
		SELECT date FROM %s
		WHERE location_id = $1 AND date >= $2 AND date < $3
	`, set.Table), locationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]struct{})
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out[t.Unix()] = struct{}{}
	}
	return out, rows.Err()
}

// InsertRows implements domain.StorageRepo
// One statement: unnest of a timestamp array plus one float8 array per column
func (r *queries) InsertRows(ctx context.Context, locationID int64, b weather.Batch) (int64, error) {
	if b.Len() == 0 {
		return 0, nil
	}
	width := b.Set.Width()
	times := make([]time.Time, b.Len())
	cols := make([][]float64, width)
	for j := range cols {
		cols[j] = make([]float64, b.Len())
	}
	for i, row := range b.Rows {
		times[i] = row.Time
		for j := 0; j < width; j++ {
			cols[j][i] = valueAt(row, j)
		}
	}

	args := make([]any, 0, width+2)
	args = append(args, locationID, times)
	casts := make([]string, 0, width+1)
	casts = append(casts, "$2::timestamp[]")
	for j := range cols {
		args = append(args, store.NullFloats(cols[j]))
		casts = append(casts, fmt.Sprintf("$%d::float8[]", j+3))
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (location_id, date, %s)
		SELECT $1, u.* FROM unnest(%s) AS u
	`, b.Set.Table, strings.Join(b.Set.Columns(), ", "), strings.Join(casts, ", "))

	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// LatestTime implements domain.StorageRepo
func (r *queries) LatestTime(ctx context.Context, locationID int64, set weather.VariableSet) (time.Time, bool, error) {
	t, err := store.Scalar[*time.Time](ctx, r.q, fmt.Sprintf(`SELECT max(date) FROM %s WHERE location_id = $1`, set.Table), locationID)
	if err != nil || t == nil {
		return time.Time{}, false, err
	}
	return *t, true, nil
}

func valueAt(r weather.Row, j int) float64 {
	if j < len(r.Values) {
		return r.Values[j]
	}
	return math.NaN()
}
