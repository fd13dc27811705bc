package scheduler

import (
	"context"
	"sync"
	"wvw-dashboard/internal/api"
)

// DecodeFunc turns a response body into the caller's value.
type DecodeFunc func(body []byte) (any, error)

// Future is resolved exactly once by the scheduler.
type Future struct {
	once  sync.Once
	done  chan struct{}
	value any
	ok    bool
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(value any, ok bool) {
	f.once.Do(func() {
		f.value = value
		f.ok = ok
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call resolves or ctx ends. ok is false for any
// failed call and when ctx ends first.
func (f *Future) Await(ctx context.Context) (any, bool) {
	select {
	case <-f.done:
		return f.value, f.ok
	case <-ctx.Done():
		return nil, false
	}
}

// Enqueuer accepts calls for scheduled execution.
type Enqueuer interface {
	Enqueue(endpoint api.Endpoint, priority Priority, decode DecodeFunc) *Future
}

// Pending is a typed view over a Future.
type Pending[T any] struct {
	future *Future
}

func (p Pending[T]) Await(ctx context.Context) (T, bool) {
	var zero T
	v, ok := p.future.Await(ctx)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func decodeAs[T any](body []byte) (any, error) {
	v, err := api.Decode[T](body)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Request enqueues a call whose body decodes into T.
func Request[T any](e Enqueuer, endpoint api.Endpoint, priority Priority) Pending[T] {
	return Pending[T]{future: e.Enqueue(endpoint, priority, decodeAs[T])}
}

// Fetch enqueues a call and waits for it.
func Fetch[T any](ctx context.Context, e Enqueuer, endpoint api.Endpoint, priority Priority) (T, bool) {
	return Request[T](e, endpoint, priority).Await(ctx)
}

// Completed returns a future that is already resolved. It lets alternative
// Enqueuer implementations answer synchronously.
func Completed(value any, ok bool) *Future {
	f := newFuture()
	f.resolve(value, ok)
	return f
}
