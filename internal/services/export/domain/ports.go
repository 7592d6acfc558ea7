// Package domain defines the hourly export ports
package domain

import (
	"context"
	"io"
	"time"

	"weatherjar/internal/core/weather"
)

// Request selects what to export. Empty Start or End leaves that side open
type Request struct {
	Start       string
	End         string
	Set         weather.VariableSet
	Measurement string
}

// ExporterPort writes hourly rows as InfluxDB annotated CSV
type ExporterPort interface {
	ExportHourly(ctx context.Context, w io.Writer, r Request) (int, error)
}

// Locations resolves the location being exported
type Locations interface {
	Default(ctx context.Context) (weather.Location, error)
}

// StorageRepo reads hourly rows in time order. Zero from or to is unbounded
type StorageRepo interface {
	HourlyRows(ctx context.Context, locationID int64, set weather.VariableSet, from, to time.Time) ([]weather.Row, error)
}
