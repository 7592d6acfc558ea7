// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/httpkit"
	str "weatherjar/internal/platform/strings"
	metahttp "weatherjar/internal/services/api/meta/http"
)

// ServiceName is reported by health and version
const ServiceName = "weatherjar-api"

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	built     modkit.Built
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	return &Module{deps: deps, built: b, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		d := metahttp.Deps{ServiceName: ServiceName, StartedAt: m.startedAt}
		// a nil TxRunner must stay an untyped nil so ready reports skipped
		if m.deps.PG != nil {
			d.PG = m.deps.PG
		}
		metahttp.Register(rr, d)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
