// Package domain defines the aggregation ports
package domain

import (
	"context"
	"time"

	"weatherjar/internal/core/weather"
)

// Mode selects a full rebuild or an inclusive date range
type Mode struct {
	Full       bool
	Start, End time.Time
}

// FullRebuild replaces every daily row of the location
func FullRebuild() Mode { return Mode{Full: true} }

// Range recomputes [start, end] and upserts
func Range(start, end time.Time) Mode { return Mode{Start: start, End: end} }

// RunnerPort is what the CLI drives
type RunnerPort interface {
	RebuildDaily(ctx context.Context, m Mode) (int, error)
	UpdateDaily(ctx context.Context, today time.Time) (int, error)
	RebuildMonthly(ctx context.Context) (int, error)
}

// Locations resolves the location being summarized
type Locations interface {
	Default(ctx context.Context) (weather.Location, error)
}

// StorageRepo is the hourly read side plus the summary tables
type StorageRepo interface {
	// AllSamples reads every standard hourly row of the location in time order
	AllSamples(ctx context.Context, locationID int64) ([]weather.Sample, error)
	// SamplesBetween reads rows in [from, to)
	SamplesBetween(ctx context.Context, locationID int64, from, to time.Time) ([]weather.Sample, error)

	DeleteDaily(ctx context.Context, locationID int64) (int64, error)
	InsertDaily(ctx context.Context, rows []weather.DailySummary) (int64, error)
	UpsertDaily(ctx context.Context, rows []weather.DailySummary) (int64, error)
	// LatestDaily returns the newest summarized day, ok is false when none exist
	LatestDaily(ctx context.Context, locationID int64) (time.Time, bool, error)

	DeleteMonthly(ctx context.Context, locationID int64) (int64, error)
	InsertMonthly(ctx context.Context, rows []weather.MonthlySummary) (int64, error)
}
