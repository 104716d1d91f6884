// Package aggregate runs independent checks concurrently and gathers every
// outcome instead of stopping at the first failure.
package aggregate

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/future"
	"golang.org/x/sync/errgroup"
)

var errNilCheck = errors.New("nil check")

// Check is one independent unit of verification.
type Check func(ctx context.Context) (any, error)

// Runner runs groups of checks with a shared concurrency bound.
type Runner struct {
	// limit is the maximum number of checks of one group running at once.
	// Zero or less means unbounded.
	limit int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLimit bounds how many checks of a single CompleteAll call run at
// the same time.
func WithLimit(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewRunner creates a Runner. Without options checks are unbounded.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CompleteAll runs checks with an unbounded Runner.
func CompleteAll(ctx context.Context, checks ...Check) ([]any, error) {
	return NewRunner().CompleteAll(ctx, checks...)
}

// CompleteAll waits for every check to finish. A failing check never
// cancels its siblings. When all succeed the values are returned in the
// order of checks. Otherwise the failures, in the order they finished, are
// combined with failure.Combine: nested aggregates are flattened and a lone
// failure is returned as is.
//
// A done ctx stops the wait and returns ctx.Err(); checks already started
// keep running.
func (r *Runner) CompleteAll(ctx context.Context, checks ...Check) ([]any, error) {
	if len(checks) == 0 {
		return []any{}, nil
	}

	results := make([]any, len(checks))
	var (
		mu       sync.Mutex
		failures []error
	)

	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, check := range checks {
			g.Go(func() error {
				v, err := runCheck(ctx, check)
				if err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
					return nil
				}
				results[i] = v
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := failure.Combine(failures...); err != nil {
		return nil, err
	}
	return results, nil
}

func runCheck(ctx context.Context, check Check) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = &call.PanicError{Value: p, Stack: string(debug.Stack())}
		}
	}()
	if check == nil {
		return nil, errNilCheck
	}
	return check(ctx)
}

// Futures waits for already started futures the same way CompleteAll waits
// for checks.
func Futures(ctx context.Context, fs ...*future.Future) ([]any, error) {
	checks := make([]Check, len(fs))
	for i, f := range fs {
		checks[i] = func(ctx context.Context) (any, error) {
			return f.Await(ctx)
		}
	}
	return CompleteAll(ctx, checks...)
}
