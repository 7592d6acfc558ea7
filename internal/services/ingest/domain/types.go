// Package domain defines the ingestion ports and the upstream request shape
package domain

import (
	"context"
	"time"

	"weatherjar/internal/adapters/weather/openmeteo"
	"weatherjar/internal/core/weather"
)

// FetchRequest re-exports the adapter request so the service does not depend on the client
type FetchRequest = openmeteo.FetchRequest

// Fetcher returns hourly rows for a window. Retry and caching live behind it
type Fetcher interface {
	Fetch(ctx context.Context, r FetchRequest) (weather.Batch, error)
}

// Locations resolves the location data is ingested for
type Locations interface {
	Default(ctx context.Context) (weather.Location, error)
}

// RunnerPort is what the CLI drives
type RunnerPort interface {
	// Ingest stores every hour in [start, end] not already present and
	// returns how many rows were inserted
	Ingest(ctx context.Context, start, end string) (int, error)
	// UpdateHourly ingests from the latest stored hour through today
	UpdateHourly(ctx context.Context, today time.Time) (int, error)
}

// StorageRepo is the hourly table surface. set picks the table and columns
type StorageRepo interface {
	// ExistingTimes returns stored timestamps in [from, to) as unix seconds
	ExistingTimes(ctx context.Context, locationID int64, set weather.VariableSet, from, to time.Time) (map[int64]struct{}, error)
	// InsertRows inserts rows with a plain INSERT. A stored timestamp is a unique violation
	InsertRows(ctx context.Context, locationID int64, b weather.Batch) (int64, error)
	// LatestTime returns the newest stored timestamp, ok is false on an empty table
	LatestTime(ctx context.Context, locationID int64, set weather.VariableSet) (time.Time, bool, error)
}
