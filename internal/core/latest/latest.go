// Package latest implements last-request-wins for async fetches
//
// Every Begin supersedes the previous token and cancels its context. Cancellation
// is advisory: a superseded callback that still completes must check Current
// before applying its result.
package latest

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token identifies one issued request
type Token struct {
	Gen uint64
	ctx context.Context
}

// Context is cancelled once the token is superseded or the tracker stops
func (t Token) Context() context.Context { return t.ctx }

// Tracker hands out monotonically increasing tokens
type Tracker struct {
	gen atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Begin supersedes any outstanding token and returns a new one derived from parent
func (t *Tracker) Begin(parent context.Context) Token {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	prev := t.cancel
	t.cancel = cancel
	g := t.gen.Add(1)
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
	return Token{Gen: g, ctx: ctx}
}

// Current reports whether tok is still the most recent token
func (t *Tracker) Current(tok Token) bool { return t.gen.Load() == tok.Gen }

// Gen is the generation of the most recent token, 0 before the first Begin
func (t *Tracker) Gen() uint64 { return t.gen.Load() }

// Invalidate supersedes the outstanding token without issuing a new one
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	prev := t.cancel
	t.cancel = nil
	t.gen.Add(1)
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// Apply runs fn only if tok is still current; it reports whether fn ran
// mu serializes fn with other state mutations owned by the caller
func Apply(t *Tracker, tok Token, mu sync.Locker, fn func()) bool {
	mu.Lock()
	defer mu.Unlock()
	if !t.Current(tok) {
		return false
	}
	fn()
	return true
}
