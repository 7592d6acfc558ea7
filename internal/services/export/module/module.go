// Package module wires the hourly CSV export
package module

import (
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/config"
	"weatherjar/internal/services/export/domain"
	"weatherjar/internal/services/export/repo"
	"weatherjar/internal/services/export/service"
)

// Options holds configuration for export
type Options struct {
	Measurement string
}

// FromConfig reads CORE_EXPORT_ keys
func FromConfig(cfg config.Conf) Options {
	return Options{Measurement: cfg.Prefix("CORE_EXPORT_").MayString("MEASUREMENT", service.DefaultMeasurement)}
}

// Ports defines the export module ports
type Ports struct {
	Exporter domain.ExporterPort
}

// Module implements the export module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the export module. locs comes from the locations module
func New(deps modkit.Deps, locs domain.Locations) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG(), locs, opts.Measurement)
	return &Module{deps: deps, ports: Ports{Exporter: svc}}
}

// Exporter returns the export port
func (m *Module) Exporter() domain.ExporterPort { return m.ports.Exporter }

// Name returns the module name
func (m *Module) Name() string { return "export" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
