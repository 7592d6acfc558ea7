package store

import (
	"context"
	"fmt"
	"time"

	"weatherjar/internal/platform/store/pg"

	"github.com/cenkalti/backoff/v4"
)

// openPG opens the pool and only hands it out once a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	if err := pingWithBackoff(ctx, p.Pool, cfg.PG, s); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

var pingBackoff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 150 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func pingWithBackoff(ctx context.Context, p Pinger, cfg PGConfig, s *Store) error {
	attempts := 0
	op := func() error {
		attempts++
		pctx, cancel := context.WithTimeout(ctx, cfg.pingTimeout())
		defer cancel()
		return p.Ping(pctx)
	}
	notify := func(err error, wait time.Duration) {
		s.Log.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", wait).Msg("postgres not ready")
	}
	b := backoff.WithContext(backoff.WithMaxRetries(pingBackoff(), cfg.retries()), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}
	return nil
}
