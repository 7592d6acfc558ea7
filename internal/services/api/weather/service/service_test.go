package service

import (
	"context"
	"testing"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit/repotest"
	perr "weatherjar/internal/platform/errors"
	kit "weatherjar/internal/platform/testkit"
	"weatherjar/internal/services/api/weather/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	daily    map[time.Time]weather.DailySummary
	monthly  map[time.Time]weather.MonthlySummary
	from, to time.Time
}

func (f *fakeRepo) GetDaily(_ context.Context, _ int64, day time.Time) (weather.DailySummary, error) {
	if d, ok := f.daily[day]; ok {
		return d, nil
	}
	return weather.DailySummary{}, perr.ErrNotFound
}

func (f *fakeRepo) ListDaily(_ context.Context, _ int64, from, to time.Time) ([]weather.DailySummary, error) {
	f.from, f.to = from, to
	var out []weather.DailySummary
	for day, d := range f.daily {
		if !day.Before(from) && !day.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetMonthly(_ context.Context, _ int64, month time.Time) (weather.MonthlySummary, error) {
	if m, ok := f.monthly[month]; ok {
		return m, nil
	}
	return weather.MonthlySummary{}, perr.ErrNotFound
}

type loc struct{}

func (loc) Default(context.Context) (weather.Location, error) { return weather.Location{ID: 1}, nil }

func jan1() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func newSvc(repo *fakeRepo) *Service {
	return New(&repotest.Tx{}, repotest.Binder[domain.StorageRepo](repo), loc{})
}

func seeded() *fakeRepo {
	return &fakeRepo{
		daily: map[time.Time]weather.DailySummary{
			jan1(): weather.NewDaily(1, jan1(), weather.Stats{
				AverageTemperature: kit.F(31.5),
				MaxWindSpeed:       kit.F(12.3),
				PrecipitationSum:   kit.F(0.12),
			}),
		},
		monthly: map[time.Time]weather.MonthlySummary{
			jan1(): weather.NewMonthly(1, jan1(), weather.Stats{AverageTemperature: kit.F(20)}),
		},
	}
}

func TestNewPanicsOnNil(t *testing.T) {
	kit.MustPanic(t, func() { New(nil, repotest.Binder[domain.StorageRepo](&fakeRepo{}), loc{}) })
	kit.MustPanic(t, func() { New(&repotest.Tx{}, nil, loc{}) })
}

func TestGetSummary(t *testing.T) {
	svc := newSvc(seeded())

	d, err := svc.GetSummary(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, d.DayOfMonth)
	kit.MustFloatPtr(t, "average_temperature", d.AverageTemperature, 31.5, 1e-9)

	_, err = svc.GetSummary(context.Background(), "2024-01-02")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "absent day is NotFound, got %v", err)

	_, err = svc.GetSummary(context.Background(), "01/02/2024")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidDate))
	e, _ := perr.As(err)
	assert.Equal(t, "date", e.Field())
}

func TestTextHelpers(t *testing.T) {
	d := seeded().daily[jan1()]
	assert.Equal(t, "The mean temperature on 2024-01-01 is 31.50° Fahrenheit.", MeanTemperatureText(d))
	assert.Equal(t, "The max wind speed on 2024-01-01 is 12.30 mph.", MaxWindText(d))
	assert.Equal(t, "The total precipitation sum on 2024-01-01 is 0.12 inches.", PrecipitationSumText(d))

	empty := weather.NewDaily(1, jan1(), weather.Stats{})
	assert.Equal(t, "The mean temperature on 2024-01-01 is unavailable.", MeanTemperatureText(empty))
	assert.Equal(t, "The max wind speed on 2024-01-01 is unavailable.", MaxWindText(empty))
	assert.Equal(t, "The total precipitation sum on 2024-01-01 is unavailable.", PrecipitationSumText(empty))
}

func TestFixed2(t *testing.T) {
	cases := map[float64]string{
		0:       "0.00",
		31.5:    "31.50",
		0.125:   "0.13",
		-2.345:  "-2.35",
		43:      "43.00",
		12.3049: "12.30",
	}
	for in, want := range cases {
		assert.Equal(t, want, Fixed2(in), "Fixed2(%v)", in)
	}
}

func TestSummaryText(t *testing.T) {
	svc := newSvc(seeded())
	txt, err := svc.SummaryText(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", txt.Date)
	assert.Contains(t, txt.MaxWind, "12.30 mph")

	_, err = svc.SummaryText(context.Background(), "2023-12-31")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestListDaily(t *testing.T) {
	repo := seeded()
	svc := newSvc(repo)

	rows, err := svc.ListDaily(context.Background(), weather.DateRange{Start: "2024-01-01", End: "2024-01-31"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), repo.to)

	rows, err = svc.ListDaily(context.Background(), weather.DateRange{Start: "2023-01-01", End: "2023-01-02"})
	require.NoError(t, err)
	assert.NotNil(t, rows, "empty range is an empty list")
	assert.Empty(t, rows)

	_, err = svc.ListDaily(context.Background(), weather.DateRange{Start: "2024-02-01", End: "2024-01-01"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	_, err = svc.ListDaily(context.Background(), weather.DateRange{Start: "2024-1-1", End: "2024-01-02"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidDate))
}

func TestGetMonthly(t *testing.T) {
	svc := newSvc(seeded())

	m, err := svc.GetMonthly(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year)

	_, err = svc.GetMonthly(context.Background(), "2024-02")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	_, err = svc.GetMonthly(context.Background(), "2024-13")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidDate))
}
