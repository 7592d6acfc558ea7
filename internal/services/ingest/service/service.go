// Package service implements deduplicating hourly ingestion
package service

import (
	"context"
	"math"
	"slices"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	ptime "weatherjar/internal/platform/time"
	"weatherjar/internal/services/ingest/domain"
	"weatherjar/internal/services/ingest/guardrails"

	"github.com/cenkalti/backoff/v4"
)

// SourceName labels upstream failures
const SourceName = "open-meteo"

// Config holds the ingestion settings
type Config struct {
	Set      weather.VariableSet
	Timezone string

	// StartDate is where update-hourly begins on an empty table
	StartDate time.Time

	Timeouts guardrails.Timeouts
}

// insertBackoff paces retries of a batch insert that hit a serialization
// failure or deadlock
var insertBackoff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return backoff.WithMaxRetries(b, 3)
}

// Service implements domain.RunnerPort
type Service struct {
	DB        repokit.TxRunner
	Binder    repokit.Binder[domain.StorageRepo]
	Fetch     domain.Fetcher
	Locations domain.Locations
	Cfg       Config
}

// New constructs the ingestion service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	f domain.Fetcher,
	locs domain.Locations,
	cfg Config,
) *Service {
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil Repo binder")
	}
	if f == nil || locs == nil {
		panic("ingest.Service requires a fetcher and a locations port")
	}
	if cfg.Set.Width() == 0 {
		cfg.Set = weather.Standard
	}
	return &Service{DB: db, Binder: binder, Fetch: f, Locations: locs, Cfg: cfg}
}

// ForSet returns a copy of the service writing set
func (s *Service) ForSet(set weather.VariableSet) *Service {
	cp := *s
	cp.Cfg.Set = set
	return &cp
}

// Ingest implements domain.RunnerPort
func (s *Service) Ingest(ctx context.Context, startS, endS string) (int, error) {
	start, err := ptime.ParseDate(startS)
	if err != nil {
		return 0, perr.WithField(err, "start")
	}
	end, err := ptime.ParseDate(endS)
	if err != nil {
		return 0, perr.WithField(err, "end")
	}
	if end.Before(start) {
		return 0, perr.WithField(perr.InvalidArgf("end %s is before start %s", endS, startS), "end")
	}

	ctx, cancel := guardrails.WithRun(ctx, s.Cfg.Timeouts)
	defer cancel()

	set := s.Cfg.Set
	l := logger.C(ctx).With().Str("mod", "ingest").Str("set", set.Name).
		Str("start", startS).Str("end", endS).Logger()

	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	from, to := start, end.Add(ptime.Day)

	existing, err := s.existing(ctx, loc.ID, from, to)
	if err != nil {
		return 0, perr.FromPostgresf(err, "read stored %s timestamps", set.Table)
	}

	fctx, fcancel := guardrails.ForFetch(ctx, s.Cfg.Timeouts)
	batch, err := s.Fetch.Fetch(fctx, domain.FetchRequest{
		Start:     start,
		End:       end,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Set:       set,
		Timezone:  s.Cfg.Timezone,
	})
	fcancel()
	if err != nil {
		l.Error().Err(err).Msg("fetch failed; nothing written")
		return 0, perr.SourceUnavailable(err, SourceName)
	}

	published, pending := Published(batch.Rows)
	fresh, skipped := Filter(published, existing)
	l.Info().Int("fetched", batch.Len()).Int("unpublished", pending).Int("skipped_duplicates", skipped).
		Int("new", len(fresh)).Msg("ingest filtered")
	if len(fresh) == 0 {
		return 0, nil
	}

	var inserted int64
	dctx, dcancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer dcancel()
	attempts := 0
	op := func() error {
		attempts++
		err := s.DB.Tx(dctx, func(q repokit.Queryer) error {
			n, err := s.Binder.Bind(q).InsertRows(dctx, loc.ID, weather.Batch{Set: set, Rows: fresh})
			inserted = n
			return err
		})
		if err != nil && !perr.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		l.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", wait).Msg("insert conflict; retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(insertBackoff(), dctx), notify); err != nil {
		l.Error().Err(err).Int("attempts", attempts).Msg("insert failed; batch rolled back")
		if perr.IsForeignKeyViolation(err) {
			return 0, perr.Wrapf(err, perr.ErrorCodeNotFound, "location %d no longer exists; run migrate", loc.ID)
		}
		return 0, perr.FromPostgresf(err, "insert %d rows into %s", len(fresh), set.Table)
	}
	l.Info().Int64("inserted", inserted).Msg("ingest done")
	return int(inserted), nil
}

// UpdateHourly implements domain.RunnerPort
func (s *Service) UpdateHourly(ctx context.Context, today time.Time) (int, error) {
	loc, err := s.Locations.Default(ctx)
	if err != nil {
		return 0, err
	}
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	latest, ok, err := s.Binder.Bind(s.DB).LatestTime(dctx, loc.ID, s.Cfg.Set)
	cancel()
	if err != nil {
		return 0, perr.FromPostgresf(err, "read latest %s row", s.Cfg.Set.Table)
	}

	start := s.Cfg.StartDate
	if ok {
		start = ptime.StartOfDay(latest)
	}
	end := ptime.StartOfDay(today)
	if end.Before(start) {
		logger.C(ctx).Info().Time("latest", latest).Msg("hourly data already current")
		return 0, nil
	}
	return s.Ingest(ctx, ptime.FormatDate(start), ptime.FormatDate(end))
}

func (s *Service) existing(ctx context.Context, locationID int64, from, to time.Time) (map[int64]struct{}, error) {
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Binder.Bind(s.DB).ExistingTimes(dctx, locationID, s.Cfg.Set, from, to)
}

// Published drops rows where every value is missing. The archive serves
// hours it has not published yet as all null; left unstored, a later run
// fetches them again. Rows with only some values missing are kept
func Published(rows []weather.Row) ([]weather.Row, int) {
	out := make([]weather.Row, 0, len(rows))
	for _, r := range rows {
		if slices.ContainsFunc(r.Values, func(v float64) bool { return !math.IsNaN(v) }) {
			out = append(out, r)
		}
	}
	return out, len(rows) - len(out)
}

// Filter drops rows whose naive timestamp is stored or already seen earlier
// in the batch. A repeated wall clock hour (DST fall back) keeps its first row
func Filter(rows []weather.Row, existing map[int64]struct{}) ([]weather.Row, int) {
	seen := make(map[int64]struct{}, len(rows))
	out := make([]weather.Row, 0, len(rows))
	for _, r := range rows {
		r.Time = ptime.Naive(r.Time)
		k := r.Time.Unix()
		if _, dup := existing[k]; dup {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}
