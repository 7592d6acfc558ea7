// Package module wires the summary queries into the API using modkit
package module

import (
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/httpkit"
	str "weatherjar/internal/platform/strings"
	"weatherjar/internal/services/api/weather/domain"
	weatherhttp "weatherjar/internal/services/api/weather/http"
	"weatherjar/internal/services/api/weather/repo"
	"weatherjar/internal/services/api/weather/service"
)

// Ports defines the query module ports
type Ports struct {
	Query domain.QueryPort
}

// Module implements modkit.Module for the summary queries
type Module struct {
	built modkit.Built
	ports Ports
}

// New constructs the module. The default location comes from the locations
// module through WithLocations
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("summaries"), modkit.WithPrefix("/summaries")}, opts...)...)
	locs, ok := b.Ports.(domain.Locations)
	if !ok {
		panic("summaries module: expected WithLocations(domain.Locations)")
	}
	svc := service.New(deps.PG, repo.NewPG(), locs)
	return &Module{built: b, ports: Ports{Query: svc}}
}

// WithLocations injects the locations port
func WithLocations(l domain.Locations) modkit.Option { return modkit.WithPorts(l) }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { weatherhttp.Register(rr, m.ports.Query) })
}

// Query returns the query port, also used by the summary CLI
func (m *Module) Query() domain.QueryPort { return m.ports.Query }

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
