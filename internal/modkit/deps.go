// Package modkit provides module wiring and core deps
package modkit

import (
	"weatherjar/internal/modkit/repokit"
	"weatherjar/internal/platform/config"
	"weatherjar/internal/platform/logger"
)

// Deps holds the shared dependencies handed to every module
// PG is the only storage handle; nothing reaches for a global connection
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}
