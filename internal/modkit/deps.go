// Package modkit provides module wiring and core deps
package modkit

import (
	"gavel/internal/modkit/repokit"
	"gavel/internal/platform/config"
	"gavel/internal/platform/logger"
	"gavel/internal/platform/store"
)

// Deps holds core dependencies passed to modules.
// This is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
