package module

import (
	"time"

	"weatherjar/internal/platform/config"
)

// Options holds configuration for summaries
type Options struct {
	StatementTimeout time.Duration
}

// FromConfig reads CORE_SUMMARIES_ keys
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("CORE_SUMMARIES_")
	return Options{
		StatementTimeout: sc.MayDuration("STATEMENT_TIMEOUT", 10*time.Minute),
	}
}
