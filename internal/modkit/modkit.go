// Package modkit provides module wiring and core deps
package modkit

import (
	"gaexport/internal/modkit/repokit"
	"gaexport/internal/platform/config"
	"gaexport/internal/platform/logger"
	"gaexport/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore copies the open backends of st into deps
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.CH = st.CH
	}
	return d
}

// Module is the common surface for service modules
type Module interface {
	// Name is used in logs
	Name() string
	// Ports returns the module specific port set
	Ports() any
}
