// Package future provides a settle-once deferred value.
//
// A Future is the Go rendition of a promise: it starts pending and is later
// resolved with a value or rejected with an error, exactly once. Callers can
// block on it with Await or register continuations with Then. Anything that
// exposes a Then method of the same shape is treated as future-like by the
// call tracing layer (see Thenable).
package future

import (
	"context"
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrNilRejection stands in for a nil error passed to Reject.
var ErrNilRejection = errors.New("future rejected with nil error")

// Thenable is implemented by values that can deliver a deferred outcome.
// Exactly one of the two continuations is invoked, at most once.
type Thenable interface {
	Then(onResolved func(any), onRejected func(error))
}

// Future is a deferred outcome that settles at most once.
type Future struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	value    any
	err      error
	pending  *queue.Queue // continuation FIFO, drained on settlement
	rejected bool
}

type continuation struct {
	onResolved func(any)
	onRejected func(error)
}

// New returns a pending Future.
func New() *Future {
	return &Future{
		done:    make(chan struct{}),
		pending: queue.New(),
	}
}

// Resolved returns a Future already resolved with v.
func Resolved(v any) *Future {
	f := New()
	f.Resolve(v)
	return f
}

// Rejected returns a Future already rejected with err.
func Rejected(err error) *Future {
	f := New()
	f.Reject(err)
	return f
}

// Go runs fn in its own goroutine and returns a Future for its outcome.
func Go(fn func() (any, error)) *Future {
	f := New()
	go func() {
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles the future with v. It reports false if the future had
// already settled.
func (f *Future) Resolve(v any) bool {
	return f.settle(v, nil, false)
}

// Reject settles the future with err. It reports false if the future had
// already settled.
func (f *Future) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	return f.settle(nil, err, true)
}

func (f *Future) settle(v any, err error, rejected bool) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	f.rejected = rejected
	var conts []continuation
	for f.pending.Length() > 0 {
		conts = append(conts, f.pending.Remove().(continuation))
	}
	close(f.done)
	f.mu.Unlock()

	for _, c := range conts {
		f.dispatch(c)
	}
	return true
}

func (f *Future) dispatch(c continuation) {
	if f.rejected {
		if c.onRejected != nil {
			c.onRejected(f.err)
		}
		return
	}
	if c.onResolved != nil {
		c.onResolved(f.value)
	}
}

// Then registers continuations. If the future has already settled the
// matching continuation runs immediately on the calling goroutine; otherwise
// it runs on the goroutine that settles the future, in registration order.
func (f *Future) Then(onResolved func(any), onRejected func(error)) {
	c := continuation{onResolved: onResolved, onRejected: onRejected}
	f.mu.Lock()
	if !f.settled {
		f.pending.Add(c)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.dispatch(c)
}

// Done returns a channel closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}
