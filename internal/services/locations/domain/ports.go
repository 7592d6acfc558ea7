// Package domain defines the locations ports
package domain

import (
	"context"

	"weatherjar/internal/core/weather"
)

// Port is what other modules use to resolve where data belongs
type Port interface {
	// Seed inserts l unless a row with the same coordinates and name exists.
	// A different location already present is a Conflict
	Seed(ctx context.Context, l weather.Location) (weather.Location, bool, error)
	// Default is the lowest id location
	Default(ctx context.Context) (weather.Location, error)
}

// StorageRepo is the location table surface
type StorageRepo interface {
	Find(ctx context.Context, l weather.Location) (weather.Location, error)
	Insert(ctx context.Context, l weather.Location) (weather.Location, error)
	First(ctx context.Context) (weather.Location, error)
}
