// Package service rolls hourly rows up into daily and monthly summaries
package service

import (
	"context"
	"time"

	"weatherjar/internal/core/rollup"
	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	ptime "weatherjar/internal/platform/time"
	"weatherjar/internal/services/summaries/domain"
)

// advisory lock classes for full rebuilds, keyed by location id
const (
	lockDaily   int32 = 0x5744
	lockMonthly int32 = 0x574d
)

// Config for the summaries service
type Config struct {
	// StatementTimeout caps each statement of a full rebuild, zero disables
	StatementTimeout time.Duration
}

// Service implements domain.RunnerPort
type Service struct {
	DB        repokit.TxRunner
	Binder    repokit.Binder[domain.StorageRepo]
	Locations domain.Locations
	Cfg       Config
}

// New constructs the summaries service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], locs domain.Locations, cfg Config) *Service {
	if db == nil {
		panic("summaries.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("summaries.Service requires a non nil Repo binder")
	}
	if locs == nil {
		panic("summaries.Service requires a locations port")
	}
	return &Service{DB: db, Binder: binder, Locations: locs, Cfg: cfg}
}

// RebuildDaily implements domain.RunnerPort
func (s *Service) RebuildDaily(ctx context.Context, m domain.Mode) (int, error) {
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	if m.Full {
		return s.fullDaily(ctx, loc)
	}
	if m.Start.IsZero() || m.End.IsZero() {
		return 0, perr.InvalidArgf("range rebuild needs a start and an end")
	}
	if m.End.Before(m.Start) {
		return 0, perr.WithField(perr.InvalidArgf("end %s is before start %s", ptime.FormatDate(m.End), ptime.FormatDate(m.Start)), "end")
	}
	return s.rangeDaily(ctx, loc, m.Start, m.End)
}

// fullDaily swaps the location's daily rows in one transaction
func (s *Service) fullDaily(ctx context.Context, loc weather.Location) (int, error) {
	l := logger.C(ctx).With().Str("mod", "summaries").Str("mode", "full").Int64("location_id", loc.ID).Logger()

	var written int64
	err := s.lockedTx(lockDaily, loc.ID).Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		deleted, err := r.DeleteDaily(ctx, loc.ID)
		if err != nil {
			return err
		}
		samples, err := r.AllSamples(ctx, loc.ID)
		if err != nil {
			return err
		}
		rows := Daily(loc.ID, samples)
		l.Info().Int64("deleted", deleted).Int("hourly", len(samples)).Int("days", len(rows)).Msg("rebuilding daily summaries")
		written, err = r.InsertDaily(ctx, rows)
		return err
	})
	if err != nil {
		return 0, perr.FromPostgres(err, "rebuild daily summaries")
	}
	l.Info().Int64("written", written).Msg("daily summaries rebuilt")
	return int(written), nil
}

// rangeDaily computes each day on its own read, then upserts the batch in one transaction
func (s *Service) rangeDaily(ctx context.Context, loc weather.Location, start, end time.Time) (int, error) {
	l := logger.C(ctx).With().Str("mod", "summaries").Str("mode", "range").
		Str("start", ptime.FormatDate(start)).Str("end", ptime.FormatDate(end)).Logger()

	r := s.Binder.Bind(s.DB)
	var batch []weather.DailySummary
	for _, day := range ptime.Days(start, end) {
		samples, err := r.SamplesBetween(ctx, loc.ID, day, day.Add(ptime.Day))
		if err != nil {
			return 0, perr.FromPostgresf(err, "read hourly rows for %s", ptime.FormatDate(day))
		}
		rows := Daily(loc.ID, samples)
		if len(rows) == 0 {
			l.Warn().Str("date", ptime.FormatDate(day)).Msg("no hourly data; day skipped")
			continue
		}
		batch = append(batch, rows...)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	var written int64
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		written, err = s.Binder.Bind(q).UpsertDaily(ctx, batch)
		return err
	})
	if err != nil {
		return 0, perr.FromPostgresf(err, "upsert %d daily summaries", len(batch))
	}
	l.Info().Int64("written", written).Msg("daily summaries upserted")
	return int(written), nil
}

// UpdateDaily implements domain.RunnerPort. It summarizes the days after the
// latest summary through yesterday, and falls back to a full rebuild when no
// summary exists yet
func (s *Service) UpdateDaily(ctx context.Context, today time.Time) (int, error) {
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	latest, ok, err := s.Binder.Bind(s.DB).LatestDaily(ctx, loc.ID)
	if err != nil {
		return 0, perr.FromPostgres(err, "read latest daily summary")
	}
	if !ok {
		return s.fullDaily(ctx, loc)
	}

	start := ptime.StartOfDay(latest).Add(ptime.Day)
	yesterday := ptime.StartOfDay(today).Add(-ptime.Day)
	if start.After(yesterday) {
		logger.C(ctx).Info().Str("latest", ptime.FormatDate(latest)).Msg("daily summaries already current")
		return 0, nil
	}
	return s.rangeDaily(ctx, loc, start, yesterday)
}

// RebuildMonthly implements domain.RunnerPort
func (s *Service) RebuildMonthly(ctx context.Context) (int, error) {
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	var written int64
	err = s.lockedTx(lockMonthly, loc.ID).Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		if _, err := r.DeleteMonthly(ctx, loc.ID); err != nil {
			return err
		}
		samples, err := r.AllSamples(ctx, loc.ID)
		if err != nil {
			return err
		}
		written, err = r.InsertMonthly(ctx, Monthly(loc.ID, samples))
		return err
	})
	if err != nil {
		return 0, perr.FromPostgres(err, "rebuild monthly summaries")
	}
	logger.C(ctx).Info().Int64("written", written).Int64("location_id", loc.ID).Msg("monthly summaries rebuilt")
	return int(written), nil
}

func (s *Service) lockedTx(class int32, locationID int64) repokit.TxRunner {
	return repokit.WithBeginHooks(s.DB,
		repokit.AdvisoryXactLock(class, int32(locationID)),
		repokit.StatementTimeout(s.Cfg.StatementTimeout),
	)
}

// Daily buckets samples by day into summary rows
func Daily(locationID int64, samples []weather.Sample) []weather.DailySummary {
	buckets := rollup.Group(samples, rollup.Day)
	out := make([]weather.DailySummary, len(buckets))
	for i, b := range buckets {
		out[i] = weather.NewDaily(locationID, b.Start, b.Stats)
	}
	return out
}

// Monthly buckets samples by month into summary rows
func Monthly(locationID int64, samples []weather.Sample) []weather.MonthlySummary {
	buckets := rollup.Group(samples, rollup.Month)
	out := make([]weather.MonthlySummary, len(buckets))
	for i, b := range buckets {
		out[i] = weather.NewMonthly(locationID, b.Start, b.Stats)
	}
	return out
}
