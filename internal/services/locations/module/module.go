// Package module wires the locations service
package module

import (
	"context"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/services/locations/domain"
	"weatherjar/internal/services/locations/repo"
	"weatherjar/internal/services/locations/service"
)

// Ports exposed by the locations module
type Ports struct {
	Locations domain.Port
}

// Module implements the locations module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the locations module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())
	return &Module{deps: deps, opts: FromConfig(deps.Cfg), ports: Ports{Locations: svc}}
}

// SeedDefault inserts the configured location if missing
func (m *Module) SeedDefault(ctx context.Context) (weather.Location, error) {
	l, _, err := m.ports.Locations.Seed(ctx, m.opts.Location)
	return l, err
}

// Locations returns the locations port other modules resolve the default location through
func (m *Module) Locations() domain.Port { return m.ports.Locations }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "locations" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
