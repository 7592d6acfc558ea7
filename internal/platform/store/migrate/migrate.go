// Package migrate applies the embedded schema migrations with golang-migrate
package migrate

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"weatherjar/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var files embed.FS

// Result reports the schema version before and after Up
type Result struct {
	From    uint
	To      uint
	Applied bool
}

// Up applies every pending migration. A dirty version left by a crashed run
// is forced back one step and retried
func Up(dbURL string, log logger.Logger) (Result, error) {
	src, err := iofs.New(files, "migrations")
	if err != nil {
		return Result{}, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(dbURL))
	if err != nil {
		return Result{}, fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	var res Result
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("empty database, applying all migrations")
	case err != nil:
		return res, fmt.Errorf("read migration version: %w", err)
	case dirty:
		clean := int(version) - 1
		log.Warn().Uint("dirty_version", version).Int("reset_to", clean).Msg("dirty migration state, resetting")
		if clean < 1 {
			clean = -1 // golang-migrate's NilVersion
		}
		if err := m.Force(clean); err != nil {
			return res, fmt.Errorf("reset dirty migration: %w", err)
		}
		if clean > 0 {
			res.From = uint(clean)
		}
	default:
		res.From = version
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			res.To = res.From
			log.Info().Uint("version", res.To).Msg("schema up to date")
			return res, nil
		}
		return res, fmt.Errorf("migration failed: %w", err)
	}

	if v, _, err := m.Version(); err == nil {
		res.To = v
	}
	res.Applied = true
	log.Info().Uint("from", res.From).Uint("to", res.To).Msg("migrations applied")
	return res, nil
}

// pgx5URL rewrites postgres:// and postgresql:// to the pgx5:// scheme the driver registers
func pgx5URL(dbURL string) string {
	for _, p := range []string{"postgresql:", "postgres:"} {
		if strings.HasPrefix(dbURL, p) {
			return "pgx5:" + dbURL[len(p):]
		}
	}
	return dbURL
}
