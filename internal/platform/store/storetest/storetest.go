//go:build integration_pg

// Package storetest hands integration tests a migrated Postgres
package storetest

import (
	"context"
	"testing"
	"time"

	"weatherjar/internal/platform/store"
	"weatherjar/internal/platform/store/migrate"
	"weatherjar/internal/platform/store/pgtest"

	"github.com/rs/zerolog"
)

// Open starts a container, applies every migration and opens a Store on it
func Open(t *testing.T) *store.Store {
	t.Helper()
	dsn := pgtest.StartPostgres(t)
	if _, err := migrate.Up(dsn, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := store.Open(ctx, store.Config{
		AppName: "weatherjar-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	}, store.WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}
