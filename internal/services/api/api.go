// Package api provides the read-only HTTP API over the summaries
package api

import (
	"time"

	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/httpkit"
	"weatherjar/internal/platform/config"
	"weatherjar/internal/platform/logger"
	"weatherjar/internal/platform/net/middleware"
	"weatherjar/internal/platform/store"

	metamod "weatherjar/internal/services/api/meta/module"
	weathermod "weatherjar/internal/services/api/weather/module"
	locationsmod "weatherjar/internal/services/locations/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; module options read their own prefixes
	Config config.Conf
	Store  *store.Store
	Logger logger.Logger
}

// Mount mounts the API service onto the given router under /api/v1
func Mount(r httpkit.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		Log: opt.Logger,
	}

	locs := locationsmod.New(deps)
	mods := []modkit.Module{
		metamod.New(deps, modkit.WithMiddlewares(middleware.NoCache())),
		weathermod.New(deps, weathermod.WithLocations(locs.Locations())),
	}

	apiCfg := opt.Config.Prefix("CORE_API_")
	stack := httpkit.CommonStack(httpkit.StackOptions{
		Timeout:   apiCfg.MayDuration("TIMEOUT", 30*time.Second),
		Slow:      apiCfg.MayDuration("SLOW", 500*time.Millisecond),
		Origins:   apiCfg.MayStrings("ORIGINS", nil),
		Heartbeat: "/api/v1/ping",
	})

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			opt.Logger.Debug().Str("module", m.Name()).Msg("mounting module")
			m.MountRoutes(api)
		}
	})
}
