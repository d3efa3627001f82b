// Package repokit holds the repo binding seam and the startup dependency guard
package repokit

import "brushline/internal/platform/store"

// Queryer is the read and write surface a SQL repo is bound to
type Queryer = store.RowQuerier

// Binder binds a domain repo to a Queryer, a pool or a transaction alike
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds q and panics when it is nil; use it at wiring time only
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
