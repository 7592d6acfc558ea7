package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit/repotest"
	perr "weatherjar/internal/platform/errors"
	kit "weatherjar/internal/platform/testkit"
	"weatherjar/internal/services/ingest/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows    map[int64]weather.Row
	inserts int
	// raceWith simulates another writer committing the same hours first
	raceWith []weather.Row
	// failWith is returned by successive inserts before they succeed
	failWith []error
}

func newMem() *memRepo { return &memRepo{rows: map[int64]weather.Row{}} }

func (m *memRepo) ExistingTimes(_ context.Context, _ int64, _ weather.VariableSet, from, to time.Time) (map[int64]struct{}, error) {
	out := map[int64]struct{}{}
	for k, r := range m.rows {
		if !r.Time.Before(from) && r.Time.Before(to) {
			out[k] = struct{}{}
		}
	}
	return out, nil
}

func (m *memRepo) InsertRows(_ context.Context, _ int64, b weather.Batch) (int64, error) {
	m.inserts++
	if len(m.failWith) > 0 {
		err := m.failWith[0]
		m.failWith = m.failWith[1:]
		return 0, err
	}
	for _, r := range m.raceWith {
		m.rows[r.Time.Unix()] = r
	}
	for _, r := range b.Rows {
		if _, dup := m.rows[r.Time.Unix()]; dup {
			return 0, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	for _, r := range b.Rows {
		m.rows[r.Time.Unix()] = r
	}
	return int64(b.Len()), nil
}

func (m *memRepo) LatestTime(context.Context, int64, weather.VariableSet) (time.Time, bool, error) {
	var latest time.Time
	for _, r := range m.rows {
		if r.Time.After(latest) {
			latest = r.Time
		}
	}
	return latest, !latest.IsZero(), nil
}

type fakeFetcher struct {
	calls int
	last  domain.FetchRequest
	err   error
	rows  func(r domain.FetchRequest) []weather.Row
}

func (f *fakeFetcher) Fetch(_ context.Context, r domain.FetchRequest) (weather.Batch, error) {
	f.calls++
	f.last = r
	if f.err != nil {
		return weather.Batch{}, f.err
	}
	return weather.Batch{Set: r.Set, Rows: f.rows(r)}, nil
}

// hourly returns every hour in [Start, End+1d) with temperature 20+hour
func hourly(r domain.FetchRequest) []weather.Row {
	var out []weather.Row
	for t := r.Start; t.Before(r.End.AddDate(0, 0, 1)); t = t.Add(time.Hour) {
		out = append(out, weather.Row{Time: t, Values: []float64{float64(20 + t.Hour()), 0, 5}})
	}
	return out
}

type oneLocation struct{ err error }

func (o oneLocation) Default(context.Context) (weather.Location, error) {
	return weather.Location{ID: 1, Latitude: 42.833, Longitude: -108.7307, FriendlyName: "Lander, Wyoming"}, o.err
}

func setup(repo *memRepo, f *fakeFetcher) (*Service, *repotest.Tx) {
	tx := &repotest.Tx{}
	svc := New(tx, repotest.Binder[domain.StorageRepo](repo), f, oneLocation{}, Config{
		Timezone:  "America/Denver",
		StartDate: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return svc, tx
}

func TestIngestTwiceInsertsOnce(t *testing.T) {
	repo := newMem()
	f := &fakeFetcher{rows: hourly}
	svc, tx := setup(repo, f)

	n, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	n, err = svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	begun, committed := tx.Counts()
	assert.Equal(t, 1, begun, "second run has nothing to write and must not open a tx")
	assert.Equal(t, 1, committed)
	assert.Len(t, repo.rows, 24)

	assert.Equal(t, "America/Denver", f.last.Timezone)
	assert.Equal(t, weather.Standard.Name, f.last.Set.Name)
	assert.Equal(t, 42.833, f.last.Latitude)
}

func TestIngestOverlappingWindowAddsOnlyNewHours(t *testing.T) {
	repo := newMem()
	svc, _ := setup(repo, &fakeFetcher{rows: hourly})

	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	n, err := svc.Ingest(context.Background(), "2024-01-02", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Len(t, repo.rows, 72)
}

func TestIngestRejectsBadDates(t *testing.T) {
	f := &fakeFetcher{rows: hourly}
	svc, _ := setup(newMem(), f)

	cases := []struct {
		start, end string
		code       perr.ErrorCode
		field      string
	}{
		{"01/02/2024", "2024-01-03", perr.ErrorCodeInvalidDate, "start"},
		{"2024-01-01", "2024-02-30", perr.ErrorCodeInvalidDate, "end"},
		{"2024-01-05", "2024-01-01", perr.ErrorCodeInvalidArgument, "end"},
	}
	for _, c := range cases {
		_, err := svc.Ingest(context.Background(), c.start, c.end)
		require.Error(t, err)
		assert.True(t, perr.IsCode(err, c.code), "%s..%s: got %v", c.start, c.end, perr.CodeOf(err))
		e, ok := perr.As(err)
		require.True(t, ok)
		assert.Equal(t, c.field, e.Field())
	}
	assert.Zero(t, f.calls, "bad input must not reach the network")
}

func TestIngestSourceUnavailableWritesNothing(t *testing.T) {
	repo := newMem()
	svc, tx := setup(repo, &fakeFetcher{err: errors.New("502 bad gateway")})

	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Contains(t, err.Error(), "open-meteo")

	begun, _ := tx.Counts()
	assert.Zero(t, begun)
	assert.Empty(t, repo.rows)
}

func TestIngestConcurrentWriterIsDuplicateKey(t *testing.T) {
	repo := newMem()
	repo.raceWith = []weather.Row{{Time: time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC), Values: []float64{1, 1, 1}}}
	svc, tx := setup(repo, &fakeFetcher{rows: hourly})

	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDuplicateKey), "got %v", perr.CodeOf(err))

	_, committed := tx.Counts()
	assert.Zero(t, committed)
	assert.Len(t, repo.rows, 1, "only the racing writer's row exists")
}

func TestIngestLocationMissing(t *testing.T) {
	tx := &repotest.Tx{}
	f := &fakeFetcher{rows: hourly}
	svc := New(tx, repotest.Binder[domain.StorageRepo](newMem()), f, oneLocation{err: perr.NotFoundf("no location")}, Config{})
	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
	assert.Zero(t, f.calls)
}

func TestFilterDropsStoredAndRepeatedHours(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	at := func(h int) time.Time { return time.Date(2024, 11, 3, h, 0, 0, 0, time.UTC) }
	rows := []weather.Row{
		{Time: at(0)},
		{Time: at(1), Values: []float64{1}},
		{Time: at(1), Values: []float64{2}}, // fall back repeats 01:00
		{Time: time.Date(2024, 11, 3, 2, 0, 0, 0, denver)},
	}
	existing := map[int64]struct{}{at(0).Unix(): {}}

	out, skipped := Filter(rows, existing)
	require.Len(t, out, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 1.0, out[0].Values[0], "first 01:00 reading wins")
	assert.Equal(t, at(2), out[1].Time, "zoned times are compared by wall clock")
}

func TestUpdateHourly(t *testing.T) {
	repo := newMem()
	f := &fakeFetcher{rows: hourly}
	svc, _ := setup(repo, f)
	svc.Cfg.StartDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	n, err := svc.UpdateHourly(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 48, n, "empty table starts at the configured start date")
	assert.Equal(t, "2024-03-01", f.last.Start.Format(time.DateOnly))

	n, err = svc.UpdateHourly(context.Background(), today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, "2024-03-02", f.last.Start.Format(time.DateOnly), "resumes from the latest stored day")
}

func TestForSetKeepsOriginal(t *testing.T) {
	svc, _ := setup(newMem(), &fakeFetcher{rows: hourly})
	solar := svc.ForSet(weather.Solar)
	assert.Equal(t, "solar", solar.Cfg.Set.Name)
	assert.Equal(t, "standard", svc.Cfg.Set.Name)
}

func TestNaNSurvivesFilter(t *testing.T) {
	out, _ := Filter([]weather.Row{{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Values: []float64{math.NaN()}}}, nil)
	require.Len(t, out, 1)
	assert.True(t, math.IsNaN(out[0].Values[0]))
}

func TestPublishedDropsAllMissingRows(t *testing.T) {
	nan := math.NaN()
	at := func(h int) time.Time { return time.Date(2024, 3, 2, h, 0, 0, 0, time.UTC) }
	rows := []weather.Row{
		{Time: at(0), Values: []float64{31, 0, 4}},
		{Time: at(1), Values: []float64{nan, 0.02, nan}},
		{Time: at(2), Values: []float64{nan, nan, nan}},
		{Time: at(3)},
	}

	out, pending := Published(rows)
	require.Len(t, out, 2)
	assert.Equal(t, 2, pending)
	assert.Equal(t, at(1), out[1].Time, "partially missing rows are stored with their NULLs")
}

func TestUpdateHourlyRefetchesUnpublishedHours(t *testing.T) {
	repo := newMem()
	published := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	f := &fakeFetcher{}
	f.rows = func(r domain.FetchRequest) []weather.Row {
		out := hourly(r)
		if f.calls > 1 {
			return out
		}
		for i := range out {
			if !out[i].Time.Before(published) {
				out[i].Values = []float64{math.NaN(), math.NaN(), math.NaN()}
			}
		}
		return out
	}
	svc, _ := setup(repo, f)
	svc.Cfg.StartDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	n, err := svc.UpdateHourly(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 24, n, "hours the archive has not published are not stored")

	n, err = svc.UpdateHourly(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 24, n, "the next run picks them up once published")
	assert.Equal(t, "2024-03-01", f.last.Start.Format(time.DateOnly))

	for h := 0; h < 24; h++ {
		r, ok := repo.rows[published.Add(time.Duration(h)*time.Hour).Unix()]
		require.True(t, ok, "hour %d missing", h)
		assert.False(t, math.IsNaN(r.Values[0]), "hour %d still empty", h)
	}
}

func noWait() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3) }

func TestIngestRetriesSerializationFailure(t *testing.T) {
	kit.Swap(t, &insertBackoff, noWait)
	repo := newMem()
	repo.failWith = []error{
		&pgconn.PgError{Code: "40001", Message: "could not serialize access"},
		&pgconn.PgError{Code: "40P01", Message: "deadlock detected"},
	}
	svc, tx := setup(repo, &fakeFetcher{rows: hourly})

	n, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 3, repo.inserts)
	_, committed := tx.Counts()
	assert.Equal(t, 1, committed)
}

func TestIngestGivesUpAfterRetries(t *testing.T) {
	kit.Swap(t, &insertBackoff, noWait)
	repo := newMem()
	for i := 0; i < 5; i++ {
		repo.failWith = append(repo.failWith, &pgconn.PgError{Code: "40001"})
	}
	svc, _ := setup(repo, &fakeFetcher{rows: hourly})

	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDB), "got %v", perr.CodeOf(err))
	assert.Equal(t, 4, repo.inserts)
	assert.Empty(t, repo.rows)
}

func TestIngestRemovedLocationIsNotFound(t *testing.T) {
	kit.Swap(t, &insertBackoff, noWait)
	repo := newMem()
	repo.failWith = []error{&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}}
	svc, _ := setup(repo, &fakeFetcher{rows: hourly})

	_, err := svc.Ingest(context.Background(), "2024-01-01", "2024-01-01")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "got %v", perr.CodeOf(err))
	assert.Contains(t, err.Error(), "run migrate")
	assert.Equal(t, 1, repo.inserts, "constraint errors are not retried")
}
