// Package state holds the observable containers and lifecycle scopes that
// every stateful component publishes through.
package state

import (
	"context"
	"sync"
)

// Status is the coarse lifecycle of an asynchronous operation as seen by observers
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Observable holds one value and fans every change out to subscribers.
// Slow subscribers only ever see the latest value; intermediate values are
// dropped rather than blocking the writer.
type Observable[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]chan T
	nextID int
}

// NewObservable creates an observable holding initial
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Get returns the current value
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set replaces the value and notifies subscribers
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setLocked(value)
}

// Update applies fn to the current value atomically and returns the result
func (o *Observable[T]) Update(fn func(current T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := fn(o.value)
	o.setLocked(next)
	return next
}

func (o *Observable[T]) setLocked(value T) {
	o.value = value
	for _, ch := range o.subs {
		// Only this method sends, under the write lock, so after the drain
		// the one-slot buffer is guaranteed to be free.
		select {
		case <-ch:
		default:
		}
		ch <- value
	}
}

// Subscribe returns a channel that immediately yields the current value and
// then every later one. The channel is closed once ctx is done.
func (o *Observable[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = ch
	ch <- o.value
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.subs, id)
		close(ch)
		o.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions
func (o *Observable[T]) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}
