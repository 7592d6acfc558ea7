package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot guard: how long to keep pinging a database that is still starting
	ConnectRetries int           // default 8
	PingTimeout    time.Duration // default 3s
}

func (c PGConfig) retries() uint64 {
	if c.ConnectRetries <= 0 {
		return 8
	}
	return uint64(c.ConnectRetries)
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 3 * time.Second
	}
	return c.PingTimeout
}
