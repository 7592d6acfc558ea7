// Command weatherjar is the batch CLI: schema migration, hourly ingestion,
// aggregation, export and ad hoc summary queries
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weatherjar/internal/platform/config"
	"weatherjar/internal/platform/logger"

	"github.com/google/uuid"
)

func main() {
	// .env must load before the first logger.Get so LOG_* apply
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "weatherjar: load .env: %v\n", err)
		os.Exit(1)
	}
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logger.WithRun(ctx, uuid.NewString())

	err := run(ctx, config.New(), os.Args[1:], os.Stdout)
	stop()
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "weatherjar: %v\n", err)
		os.Exit(1)
	}
	l.Debug().Msg("done")
}
