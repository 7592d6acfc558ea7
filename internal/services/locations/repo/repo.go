// Package repo provides postgres access for locations
package repo

import (
	"context"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/locations/domain"
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

const cols = `id, latitude, longitude, friendly_name`

func scanLocation(r store.Row) (weather.Location, error) {
	var l weather.Location
	err := r.Scan(&l.ID, &l.Latitude, &l.Longitude, &l.FriendlyName)
	return l, err
}

// Find looks a location up by its natural key. No match is perr.ErrNotFound
func (r *queries) Find(ctx context.Context, l weather.Location) (weather.Location, error) {
	return store.One(ctx, r.q, scanLocation, `
		SELECT `+cols+` FROM location
		WHERE latitude = $1 AND longitude = $2 AND friendly_name = $3
	`, l.Latitude, l.Longitude, l.FriendlyName)
}

// Insert adds l and returns it with its id
func (r *queries) Insert(ctx context.Context, l weather.Location) (weather.Location, error) {
	return store.One(ctx, r.q, scanLocation, `
		INSERT INTO location (latitude, longitude, friendly_name)
		VALUES ($1, $2, $3)
		RETURNING `+cols,
		l.Latitude, l.Longitude, l.FriendlyName)
}

// First returns the lowest id location
func (r *queries) First(ctx context.Context) (weather.Location, error) {
	return store.One(ctx, r.q, scanLocation, `SELECT `+cols+` FROM location ORDER BY id LIMIT 1`)
}
