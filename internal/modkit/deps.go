package modkit

import (
	"brushline/internal/platform/config"
	"brushline/internal/platform/store"
)

// Deps holds the backends a module may use; every store is optional
type Deps struct {
	Cfg config.Conf
	// PG backs saved selections
	PG store.TxRunner
	// CH and Duck are the analytical sources
	CH   store.Analytics
	Duck store.Analytics
}

// DepsFrom copies the open backends of st
func DepsFrom(cfg config.Conf, st *store.Store) Deps {
	if st == nil {
		return Deps{Cfg: cfg}
	}
	return Deps{Cfg: cfg, PG: st.PG, CH: st.CH, Duck: st.Duck}
}
