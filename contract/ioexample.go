package contract

import (
	"context"
	"errors"
	"sync"

	"github.com/ariel-frischer/quacker/aggregate"
	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/value"
)

var errNoOutput = errors.New("ioexample has neither an expected return value nor an expected thrown error")

// IOExample declares one invocation of a hypothetical function: the
// receiver it is bound to, its inputs, and the output it produces. It can
// verify a real function and can serve as stub material.
//
// The builder methods read as a sentence:
//
//	ex := contract.NewIOExample("addition").Given(2, 2).Not().Return(5)
type IOExample struct {
	Title         string
	IsAntiExample bool
	hooks

	context    any
	hasContext bool
	inputs     []any

	expected  any
	hasOutput bool
	fails     bool
	eventual  bool

	target *Interface
}

// NewIOExample creates a standalone ioexample.
func NewIOExample(title string) *IOExample {
	return &IOExample{Title: title}
}

// BoundTo sets the receiver the function is invoked with.
func (io *IOExample) BoundTo(ctx any) *IOExample {
	io.context = ctx
	io.hasContext = true
	return io
}

// Given sets the inputs.
func (io *IOExample) Given(inputs ...any) *IOExample {
	io.inputs = append([]any(nil), inputs...)
	return io
}

// Return declares a successful output.
func (io *IOExample) Return(output any) *IOExample {
	io.expected = output
	io.hasOutput = true
	io.fails = false
	return io
}

// Throw declares a failing output.
func (io *IOExample) Throw(err error) *IOExample {
	io.expected = err
	io.hasOutput = true
	io.fails = true
	return io
}

// Eventually declares that the output arrives through a future.
func (io *IOExample) Eventually() *IOExample {
	io.eventual = true
	return io
}

// Immediately declares a synchronous output, the default.
func (io *IOExample) Immediately() *IOExample {
	io.eventual = false
	return io
}

// Not toggles whether this is an anti-example.
func (io *IOExample) Not() *IOExample {
	io.IsAntiExample = !io.IsAntiExample
	return io
}

// Setup adds a hook run before the invocation.
func (io *IOExample) Setup(title string, fn HookFunc) *IOExample {
	io.addSetup(title, fn)
	return io
}

// Teardown adds a hook run after the invocation.
func (io *IOExample) Teardown(title string, fn HookFunc) *IOExample {
	io.addTeardown(title, fn)
	return io
}

// Context returns the bound receiver and whether one was set.
func (io *IOExample) Context() (any, bool) { return io.context, io.hasContext }

// Inputs returns a copy of the inputs.
func (io *IOExample) Inputs() []any { return append([]any(nil), io.inputs...) }

// Succeeds reports whether a return value was declared.
func (io *IOExample) Succeeds() bool { return io.hasOutput && !io.fails }

// Fails reports whether a thrown error was declared.
func (io *IOExample) Fails() bool { return io.hasOutput && io.fails }

// OutputsFuture reports whether the output is expected to be deferred.
func (io *IOExample) OutputsFuture() bool { return io.eventual }

// Target returns the interface the ioexample was declared on, if any.
func (io *IOExample) Target() *Interface { return io.target }

// Output returns the declared return value or thrown error.
func (io *IOExample) Output() (any, error) {
	if !io.hasOutput {
		return nil, errNoOutput
	}
	return io.expected, nil
}

// Verify invokes candidateFn with the declared receiver and inputs and
// checks the output style and the output itself. Anti-examples invert the
// result. Failures are reported as *failure.VerifierFailure.
func (io *IOExample) Verify(ctx context.Context, candidateFn any) error {
	return io.verify(ctx, envOf(io.target), candidateFn)
}

func (io *IOExample) verify(ctx context.Context, e *env, candidateFn any) error {
	target, err := call.Adapt(candidateFn)
	if err != nil {
		return io.failed(candidateFn, err)
	}
	return io.around(ctx, e.teardown, func() error {
		return io.verifyWithoutHooks(ctx, target, candidateFn)
	})
}

func (io *IOExample) verifyWithoutHooks(ctx context.Context, target call.Callable, candidateFn any) error {
	expected, err := io.Output()
	if err != nil {
		return io.failed(candidateFn, err)
	}

	r := call.New(target, io.context, io.inputs...)
	if _, err = r.VerifyOutputStyle(ctx, io.eventual, io.fails); err == nil {
		out, _ := r.UltimateOutput()
		if !value.Equal(out, expected) {
			err = &failure.MismatchError{Expected: expected, Actual: out}
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if io.IsAntiExample {
		if err == nil {
			err = &failure.ImproperAntiExample{Kind: "IOExample", Title: io.Title, Candidate: candidateFn}
		} else {
			err = nil
		}
	}
	if err != nil {
		return io.failed(candidateFn, err)
	}
	return nil
}

func (io *IOExample) failed(candidate any, err error) error {
	return &failure.VerifierFailure{Kind: "IOExample", Title: io.Title, Candidate: candidate, Err: err}
}

// Fake returns a stub that answers this example's invocation.
func (io *IOExample) Fake() *Stub {
	return NewStub(io)
}

// ConsistentWith builds a fake from this example and checks it against
// every signature of interf, passing when any of them accepts it.
// Interfaces without signatures accept every ioexample.
func (io *IOExample) ConsistentWith(ctx context.Context, interf *Interface) error {
	return io.consistentWith(ctx, interf.env(), interf, []string{interf.Name})
}

func (io *IOExample) consistentWith(ctx context.Context, e *env, interf *Interface, path []string) error {
	signatures := interf.Signatures()
	if len(signatures) == 0 {
		return nil
	}

	var candidate call.Callable = newStub(e, io)
	if io.hasContext {
		candidate = call.Bind(candidate, io.context)
	}

	var (
		mu       sync.Mutex
		accepted bool
		errs     = make([]error, len(signatures))
	)
	checks := make([]aggregate.Check, len(signatures))
	for i, sig := range signatures {
		checks[i] = func(ctx context.Context) (any, error) {
			err := sig.verify(ctx, e, candidate, io.inputs...)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted = true
			}
			errs[i] = err
			return nil, nil
		}
	}
	if _, err := e.runner.CompleteAll(ctx, checks...); err != nil {
		return err
	}

	var err error
	if !accepted {
		err = failure.Combine(errs...)
	}
	if io.IsAntiExample {
		if err == nil {
			err = &failure.ImproperAntiExample{Kind: "IOExample", Title: io.Title, Candidate: candidate}
		} else {
			err = nil
		}
	}
	if err != nil {
		return failure.Inconsistent("IOExample", io.Title, path, err)
	}
	return nil
}
