package state

import (
	"context"
	"sync"
)

// Scope ties the background work of one component instance to its lifetime.
// Close cancels everything launched on the scope and, once it returns, no
// publish guarded by Publish can happen any more.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewScope creates a scope whose context derives from parent
func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Launch runs fn on its own goroutine. The returned channel is closed when fn
// returns. On a closed scope fn never runs and the channel is already closed.
func (s *Scope) Launch(fn func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		close(done)
		return done
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.wg.Done()
		defer close(done)
		fn(s.ctx)
	}()

	return done
}

// Publish runs fn unless the scope is closed, and reports whether it ran.
// Close waits for a running fn before it returns.
func (s *Scope) Publish(fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Alive reports whether the scope is still open
func (s *Scope) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close cancels in-flight work and waits for it to finish. Safe to call twice.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}
