package tasks

import (
	"context"
	"sync"
)

// Future is a result slot written once by a background goroutine and read without blocking.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// set stores v if the slot is still empty and reports whether it did.
func (f *Future[T]) set(v T) bool {
	stored := false
	f.once.Do(func() {
		f.value = v
		stored = true
		close(f.done)
	})
	return stored
}

// Ready returns the value and true once it has been written; it never blocks.
func (f *Future[T]) Ready() (T, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero T
		return zero, false
	}
}

// Done is closed when the value is written.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the value is written or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
