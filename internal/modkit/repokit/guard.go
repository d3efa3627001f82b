package repokit

import (
	"context"
	"fmt"
	"time"
)

// DefaultGuardTimeout bounds MustGuard when ctx has no deadline
const DefaultGuardTimeout = 5 * time.Second

// Guarder pings every backend it owns
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard runs g.Guard and panics on any error; startup only
func MustGuard(ctx context.Context, g Guarder) {
	if g == nil {
		panic("dependency guard: nil store")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultGuardTimeout)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
