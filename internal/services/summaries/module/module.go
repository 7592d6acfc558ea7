// Package module wires daily and monthly aggregation
package module

import (
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/services/summaries/domain"
	"weatherjar/internal/services/summaries/repo"
	"weatherjar/internal/services/summaries/service"
)

// Ports defines the summaries module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the summaries module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the summaries module. locs comes from the locations module
func New(deps modkit.Deps, locs domain.Locations) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), locs, service.Config{
		StatementTimeout: opts.StatementTimeout,
	})
	return &Module{deps: deps, ports: Ports{Runner: svc}}
}

// Runner returns the aggregation port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// Name returns the module name
func (m *Module) Name() string { return "summaries" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
