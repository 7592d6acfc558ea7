package store

import (
	"context"
	"errors"
	"testing"
	"time"

	kit "weatherjar/internal/platform/testkit"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

type pingFn func(context.Context) error

func (f pingFn) Ping(ctx context.Context) error { return f(ctx) }

type pingRunner struct {
	TxRunner
	err    error
	closed bool
}

func (p *pingRunner) Ping(context.Context) error { return p.err }
func (p *pingRunner) Close() error               { p.closed = true; return nil }

func TestOpenWithoutBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil {
		t.Fatalf("PG should be nil when disabled")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenOptionError(t *testing.T) {
	bad := func(*Store) error { return errors.New("nope") }
	if _, err := Open(context.Background(), Config{}, bad); err == nil {
		t.Fatalf("option error should abort Open")
	}
}

func TestGuardAndClose(t *testing.T) {
	pr := &pingRunner{err: errors.New("refused")}
	s := &Store{PG: pr}
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("Guard should surface ping failure")
	}
	_ = s.Close()
	if !pr.closed {
		t.Fatalf("Close should close PG")
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatalf("nil store Guard should error")
	}
}

func TestPingWithBackoff(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &pingBackoff, func() backoff.BackOff { return &backoff.ZeroBackOff{} })
	s := &Store{Log: zerolog.Nop()}

	calls := 0
	flaky := pingFn(func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("starting up")
		}
		return nil
	})
	if err := pingWithBackoff(context.Background(), flaky, PGConfig{ConnectRetries: 5, PingTimeout: time.Second}, s); err != nil {
		t.Fatalf("pingWithBackoff: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	calls = 0
	down := pingFn(func(context.Context) error { calls++; return errors.New("down") })
	if err := pingWithBackoff(context.Background(), down, PGConfig{ConnectRetries: 2}, s); err == nil {
		t.Fatalf("expected failure after retries")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (1 + 2 retries)", calls)
	}
}

func TestPGConfigDefaults(t *testing.T) {
	var c PGConfig
	if c.retries() != 8 || c.pingTimeout() != 3*time.Second {
		t.Fatalf("defaults = %d %v", c.retries(), c.pingTimeout())
	}
}
