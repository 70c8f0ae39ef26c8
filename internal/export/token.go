package export

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token is the cooperative cancellation flag for one export run. Callers
// keep a reference and call Cancel from any goroutine, typically a signal
// handler.
//
// Cancellation latency is bounded, not instantaneous: the controller polls
// the token between phases and render workers poll it at frame boundaries,
// so an in-flight frame may finish first. Spawned subprocesses are signalled
// immediately through the run context and the process registry.
type Token struct {
	flag atomic.Bool

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewToken returns an unsignalled token.
func NewToken() *Token {
	return &Token{}
}

// Cancel flips the token and cancels every bound run context. Subsequent
// calls are no-ops.
func (t *Token) Cancel() {
	if t.flag.Swap(true) {
		return
	}
	t.mu.Lock()
	cancels := t.cancels
	t.cancels = nil
	t.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.flag.Load()
}

// bind attaches a run context's cancel func. If the token was cancelled
// before the run started, the context is cancelled on the spot.
func (t *Token) bind(cancel context.CancelFunc) {
	t.mu.Lock()
	if t.flag.Load() {
		t.mu.Unlock()
		cancel()
		return
	}
	t.cancels = append(t.cancels, cancel)
	t.mu.Unlock()
}
