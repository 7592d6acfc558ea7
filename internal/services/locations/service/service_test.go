package service

import (
	"context"
	"errors"
	"testing"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit/repotest"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/services/locations/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows      []weather.Location
	insertErr error
}

func (f *fakeRepo) Find(_ context.Context, l weather.Location) (weather.Location, error) {
	for _, r := range f.rows {
		if r.Latitude == l.Latitude && r.Longitude == l.Longitude && r.FriendlyName == l.FriendlyName {
			return r, nil
		}
	}
	return weather.Location{}, perr.ErrNotFound
}

func (f *fakeRepo) Insert(_ context.Context, l weather.Location) (weather.Location, error) {
	if f.insertErr != nil {
		return weather.Location{}, f.insertErr
	}
	l.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, l)
	return l, nil
}

func (f *fakeRepo) First(context.Context) (weather.Location, error) {
	if len(f.rows) == 0 {
		return weather.Location{}, perr.ErrNotFound
	}
	return f.rows[0], nil
}

var lander = weather.Location{Latitude: 42.833, Longitude: -108.7307, FriendlyName: "Lander, Wyoming"}

func TestSeedIsIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(&repotest.Tx{}, repotest.Binder[domainRepo](repo))

	first, created, err := svc.Seed(context.Background(), lander)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), first.ID)

	again, created, err := svc.Seed(context.Background(), lander)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, again)
	assert.Len(t, repo.rows, 1)
}

func TestSeedMapsInsertError(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("conn reset")}
	svc := New(&repotest.Tx{}, repotest.Binder[domainRepo](repo))

	_, _, err := svc.Seed(context.Background(), lander)
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDB))
}

func TestDefault(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(&repotest.Tx{}, repotest.Binder[domainRepo](repo))

	_, err := svc.Default(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "empty table is NotFound, got %v", err)

	_, _, err = svc.Seed(context.Background(), lander)
	require.NoError(t, err)
	l, err := svc.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lander, Wyoming", l.FriendlyName)
}

func TestSeedRefusesSecondLocation(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(&repotest.Tx{}, repotest.Binder[domainRepo](repo))
	_, _, err := svc.Seed(context.Background(), lander)
	require.NoError(t, err)

	moved := weather.Location{Latitude: 40.0150, Longitude: -105.2705, FriendlyName: "Boulder, Colorado"}
	_, created, err := svc.Seed(context.Background(), moved)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConflict), "got %v", perr.CodeOf(err))
	assert.False(t, created)
	assert.Contains(t, err.Error(), "Lander, Wyoming")
	assert.Len(t, repo.rows, 1)

	l, err := svc.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lander.FriendlyName, l.FriendlyName)
}

func TestNewPanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { New(nil, repotest.Binder[domainRepo](&fakeRepo{})) })
	assert.Panics(t, func() { New(&repotest.Tx{}, nil) })
}

type domainRepo = domain.StorageRepo
