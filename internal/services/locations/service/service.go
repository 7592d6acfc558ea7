// Package service provides the locations service implementation
package service

import (
	"context"
	"errors"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/repokit"
	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	"weatherjar/internal/services/locations/domain"
)

// Service implements domain.Port
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
}

// New constructs the locations service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Service {
	if db == nil {
		panic("locations.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("locations.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// Seed is idempotent: the existing row wins and created is false. Only one
// location may be seeded; a different one is a Conflict
func (s *Service) Seed(ctx context.Context, l weather.Location) (weather.Location, bool, error) {
	var (
		out     weather.Location
		created bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		r := s.Binder.Bind(q)
		found, err := r.Find(ctx, l)
		if err == nil {
			out = found
			return nil
		}
		if !errors.Is(err, perr.ErrNotFound) {
			return err
		}
		cur, err := r.First(ctx)
		if err == nil {
			return perr.Conflictf("location %q (%g, %g) is already seeded; %q (%g, %g) would not become the default",
				cur.FriendlyName, cur.Latitude, cur.Longitude, l.FriendlyName, l.Latitude, l.Longitude)
		}
		if !errors.Is(err, perr.ErrNotFound) {
			return err
		}
		out, err = r.Insert(ctx, l)
		created = err == nil
		return err
	})
	if perr.IsCode(err, perr.ErrorCodeConflict) {
		return weather.Location{}, false, err
	}
	if err != nil {
		return weather.Location{}, false, perr.FromPostgresf(err, "seed location %q", l.FriendlyName)
	}
	logger.C(ctx).Info().Int64("location_id", out.ID).Str("name", out.FriendlyName).Bool("created", created).Msg("location seeded")
	return out, created, nil
}

// Default returns the seeded location
func (s *Service) Default(ctx context.Context) (weather.Location, error) {
	l, err := s.Binder.Bind(s.DB).First(ctx)
	if errors.Is(err, perr.ErrNotFound) {
		return weather.Location{}, perr.NotFoundf("no location seeded; run migrate first")
	}
	if err != nil {
		return weather.Location{}, perr.FromPostgres(err, "load default location")
	}
	return l, nil
}
