// Package service is the read-only query facade over stored summaries
package service

import (
	"context"
	stderrs "errors"
	"fmt"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/net/http/bind"
	ptime "weatherjar/internal/platform/time"
	"weatherjar/internal/services/api/weather/domain"

	"github.com/shopspring/decimal"
)

// Service implements domain.QueryPort
type Service struct {
	DB        repokit.TxRunner
	Binder    repokit.Binder[domain.StorageRepo]
	Locations domain.Locations
}

// New constructs the query service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], locs domain.Locations) *Service {
	if db == nil {
		panic("weather.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("weather.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Locations: locs}
}

// GetSummary returns the daily summary for date, or NotFound when none is stored
func (s *Service) GetSummary(ctx context.Context, date string) (weather.DailySummary, error) {
	day, err := ptime.ParseDate(date)
	if err != nil {
		return weather.DailySummary{}, perr.WithField(err, "date")
	}
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return weather.DailySummary{}, err
	}
	d, err := s.Binder.Bind(s.DB).GetDaily(ctx, loc.ID, day)
	if stderrs.Is(err, perr.ErrNotFound) {
		return weather.DailySummary{}, perr.NotFoundf("no daily summary for %s", date)
	}
	if err != nil {
		return weather.DailySummary{}, perr.FromPostgresf(err, "read daily summary %s", date)
	}
	return d, nil
}

// SummaryText fetches date and renders the three sentences
func (s *Service) SummaryText(ctx context.Context, date string) (domain.SummaryText, error) {
	d, err := s.GetSummary(ctx, date)
	if err != nil {
		return domain.SummaryText{}, err
	}
	return Texts(d), nil
}

// ListDaily returns the stored summaries between the inclusive days of in
func (s *Service) ListDaily(ctx context.Context, in weather.DateRange) ([]weather.DailySummary, error) {
	if err := bind.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := in.Bounds()
	if err != nil {
		return nil, err
	}
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Binder.Bind(s.DB).ListDaily(ctx, loc.ID, from, to)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list daily summaries %s..%s", in.Start, in.End)
	}
	if rows == nil {
		rows = []weather.DailySummary{}
	}
	return rows, nil
}

// GetMonthly returns the monthly summary for a YYYY-MM month
func (s *Service) GetMonthly(ctx context.Context, month string) (weather.MonthlySummary, error) {
	start, err := ptime.ParseMonth(month)
	if err != nil {
		return weather.MonthlySummary{}, perr.WithField(err, "month")
	}
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return weather.MonthlySummary{}, err
	}
	m, err := s.Binder.Bind(s.DB).GetMonthly(ctx, loc.ID, start)
	if stderrs.Is(err, perr.ErrNotFound) {
		return weather.MonthlySummary{}, perr.NotFoundf("no monthly summary for %s", month)
	}
	if err != nil {
		return weather.MonthlySummary{}, perr.FromPostgresf(err, "read monthly summary %s", month)
	}
	return m, nil
}

// Texts renders all three sentences for d
func Texts(d weather.DailySummary) domain.SummaryText {
	return domain.SummaryText{
		Date:             ptime.FormatDate(d.Date),
		MeanTemperature:  MeanTemperatureText(d),
		MaxWind:          MaxWindText(d),
		PrecipitationSum: PrecipitationSumText(d),
	}
}

// MeanTemperatureText renders the mean temperature sentence
func MeanTemperatureText(d weather.DailySummary) string {
	return sentence("mean temperature", d, d.AverageTemperature, "° Fahrenheit")
}

// MaxWindText renders the max wind speed sentence
func MaxWindText(d weather.DailySummary) string {
	return sentence("max wind speed", d, d.MaxWindSpeed, " mph")
}

// PrecipitationSumText renders the precipitation total sentence
func PrecipitationSumText(d weather.DailySummary) string {
	return sentence("total precipitation sum", d, d.PrecipitationSum, " inches")
}

func sentence(what string, d weather.DailySummary, v *float64, unit string) string {
	day := ptime.FormatDate(d.Date)
	if v == nil {
		return fmt.Sprintf("The %s on %s is unavailable.", what, day)
	}
	return fmt.Sprintf("The %s on %s is %s%s.", what, day, Fixed2(*v), unit)
}

// Fixed2 rounds half away from zero to two places
func Fixed2(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }
