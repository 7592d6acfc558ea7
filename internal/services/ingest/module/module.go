// Package module wires hourly ingestion
package module

import (
	"weatherjar/internal/adapters/weather/openmeteo"
	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/services/ingest/domain"
	"weatherjar/internal/services/ingest/guardrails"
	"weatherjar/internal/services/ingest/repo"
	"weatherjar/internal/services/ingest/service"
)

// Ports defines the ingest module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingest module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Service
	ports Ports
}

// New wires the Open-Meteo client and the service. locs comes from the locations module
func New(deps modkit.Deps, locs domain.Locations) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	client, err := openmeteo.NewClient(openmeteo.OptionsFromConfig(deps.Cfg))
	if err != nil {
		return nil, err
	}
	set, err := weather.SetByName(opts.Variables)
	if err != nil {
		return nil, err
	}

	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), client, locs, service.Config{
		Set:       set,
		Timezone:  opts.Timezone,
		StartDate: opts.startDate(),
		Timeouts: guardrails.Timeouts{
			Run:   opts.RunTimeout,
			Fetch: opts.FetchTimeout,
			DB:    opts.DBTimeout,
		},
	})

	m := &Module{deps: deps, opts: opts, svc: svc}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Runner returns the ingestion port for the configured variable set
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// ForSet returns a runner bound to another variable set
func (m *Module) ForSet(set weather.VariableSet) domain.RunnerPort { return m.svc.ForSet(set) }

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
