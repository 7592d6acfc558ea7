package modkit

import (
	"net/http"

	"weatherjar/internal/modkit/httpkit"
	str "weatherjar/internal/platform/strings"
)

// Built is the resolved option set a module reads in its New
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// Mount is the body every module's MountRoutes shares: route under the
// prefix, apply middleware, then register endpoints
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	r.Route(str.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		register(rr)
	})
}
