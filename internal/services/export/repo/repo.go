// Package repo reads hourly rows for export
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/export/domain"
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

// HourlyRows implements domain.StorageRepo
func (r *queries) HourlyRows(
	ctx context.Context,
	locationID int64,
	set weather.VariableSet,
	from, to time.Time,
) ([]weather.Row, error) {
	where := []string{"location_id = $1"}
	args := []any{locationID}
	if !from.IsZero() {
		args = append(args, from)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		where = append(where, fmt.Sprintf("date < $%d", len(args)))
	}
	sql := fmt.Sprintf(`SELECT date, %s FROM %s WHERE %s ORDER BY date`,
		strings.Join(set.Columns(), ", "), set.Table, strings.Join(where, " AND "))

	width := set.Width()
	scan := func(row store.Row) (weather.Row, error) {
		var t time.Time
		vals := make([]*float64, width)
		dest := make([]any, 0, width+1)
		dest = append(dest, &t)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := row.Scan(dest...); err != nil {
			return weather.Row{}, err
		}
		out := weather.Row{Time: t, Values: make([]float64, width)}
		for i, v := range vals {
			out.Values[i] = store.NaNIfNull(v)
		}
		return out, nil
	}
	return store.Many(ctx, r.q, scan, sql, args...)
}
