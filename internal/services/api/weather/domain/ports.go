// Package domain defines the read side over daily and monthly summaries
package domain

import (
	"context"
	"time"

	"weatherjar/internal/core/weather"
)

// SummaryText is the three sentences rendered for one day
type SummaryText struct {
	Date             string `json:"date"`
	MeanTemperature  string `json:"mean_temperature"`
	MaxWind          string `json:"max_wind"`
	PrecipitationSum string `json:"precipitation_sum"`
}

// QueryPort is the read-only facade the CLI and HTTP API share
type QueryPort interface {
	GetSummary(ctx context.Context, date string) (weather.DailySummary, error)
	SummaryText(ctx context.Context, date string) (SummaryText, error)
	ListDaily(ctx context.Context, in weather.DateRange) ([]weather.DailySummary, error)
	GetMonthly(ctx context.Context, month string) (weather.MonthlySummary, error)
}

// Locations resolves the location being queried
type Locations interface {
	Default(ctx context.Context) (weather.Location, error)
}

// StorageRepo reads summaries. Get methods return perr.ErrNotFound when no row matches
type StorageRepo interface {
	GetDaily(ctx context.Context, locationID int64, day time.Time) (weather.DailySummary, error)
	ListDaily(ctx context.Context, locationID int64, from, to time.Time) ([]weather.DailySummary, error)
	GetMonthly(ctx context.Context, locationID int64, month time.Time) (weather.MonthlySummary, error)
}
