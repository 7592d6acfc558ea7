// Command weatherjar-api serves read-only summary endpoints under /api/v1
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/config"
	"weatherjar/internal/platform/logger"
	phttp "weatherjar/internal/platform/net/http"
	"weatherjar/internal/platform/store"
	"weatherjar/internal/services/api"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Warn().Err(err).Msg("could not load .env")
	}

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "weatherjar-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if p, ok := st.PG.(store.Pinger); ok {
		repokit.MustPing(ctx, "pg", p)
	}

	// reads CORE_API_PORT
	srv := phttp.NewServer(apiCfg)

	api.Mount(srv.Router(), api.Options{
		Config: root,
		Store:  st,
		Logger: *l,
	})

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
