package contract

import (
	"context"
	"fmt"

	"github.com/ariel-frischer/quacker/aggregate"
	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
)

// Signature is a contract over a callable's receiver, inputs and output.
// Each part is described by an Interface; parts left nil are unchecked.
type Signature struct {
	Title string

	contextInterface *Interface
	inputInterfaces  []*Interface
	hasInputs        bool
	outputInterface  *Interface
	throws           bool
	eventual         bool

	target *Interface
}

// NewSignature creates a standalone signature.
func NewSignature(title string) *Signature {
	return &Signature{Title: title}
}

// BoundTo declares the interface the bound receiver must satisfy.
func (s *Signature) BoundTo(contextInterface *Interface) *Signature {
	s.contextInterface = contextInterface
	return s
}

// Given declares one interface per input position. A nil entry accepts any
// input at that position.
func (s *Signature) Given(inputInterfaces ...*Interface) *Signature {
	s.inputInterfaces = append([]*Interface(nil), inputInterfaces...)
	s.hasInputs = true
	return s
}

// Return declares a successful output satisfying outputInterface.
func (s *Signature) Return(outputInterface *Interface) *Signature {
	s.outputInterface = outputInterface
	s.throws = false
	return s
}

// Throw declares a failing output satisfying outputInterface.
func (s *Signature) Throw(outputInterface *Interface) *Signature {
	s.outputInterface = outputInterface
	s.throws = true
	return s
}

// Eventually declares that the output arrives through a future.
func (s *Signature) Eventually() *Signature {
	s.eventual = true
	return s
}

// Immediately declares a synchronous output, the default.
func (s *Signature) Immediately() *Signature {
	s.eventual = false
	return s
}

// Target returns the interface the signature was declared on, if any.
func (s *Signature) Target() *Interface {
	return s.target
}

// Verify runs three independent checks and reports all of their failures:
// inputs against the per-position interfaces, the bound receiver of
// candidateFn against the context interface, and the result of invoking
// candidateFn with inputs against the declared output style and interface.
func (s *Signature) Verify(ctx context.Context, candidateFn any, inputs ...any) error {
	return s.verify(ctx, envOf(s.target), candidateFn, inputs...)
}

func (s *Signature) verify(ctx context.Context, e *env, candidateFn any, inputs ...any) error {
	target, err := call.Adapt(candidateFn)
	if err != nil {
		return s.failed(candidateFn, err)
	}

	_, err = e.runner.CompleteAll(ctx,
		func(ctx context.Context) (any, error) { return nil, s.verifyInputs(ctx, e, inputs) },
		func(ctx context.Context) (any, error) { return nil, s.verifyContext(ctx, e, target) },
		func(ctx context.Context) (any, error) { return nil, s.verifyExecution(ctx, e, target, inputs) },
	)
	if err != nil {
		return failure.Map(err, func(member error) error { return s.failed(candidateFn, member) })
	}
	return nil
}

func (s *Signature) failed(candidate any, err error) error {
	return &failure.VerifierFailure{Kind: "Signature", Title: s.Title, Candidate: candidate, Err: err}
}

func (s *Signature) verifyInputs(ctx context.Context, e *env, inputs []any) error {
	if !s.hasInputs {
		return nil
	}
	if len(inputs) != len(s.inputInterfaces) {
		return fmt.Errorf("%w: signature declares %d inputs, got %d",
			failure.ErrArityMismatch, len(s.inputInterfaces), len(inputs))
	}

	checks := make([]aggregate.Check, 0, len(inputs))
	for i, interf := range s.inputInterfaces {
		if interf == nil {
			continue
		}
		path := []string{interf.Name}
		checks = append(checks, func(ctx context.Context) (any, error) {
			return nil, interf.verify(ctx, e, inputs[i], path)
		})
	}
	_, err := e.runner.CompleteAll(ctx, checks...)
	return err
}

func (s *Signature) verifyContext(ctx context.Context, e *env, target call.Callable) error {
	if s.contextInterface == nil {
		return nil
	}
	bound, _ := call.BoundContextOf(target)
	return s.contextInterface.verify(ctx, e, bound, []string{s.contextInterface.Name})
}

func (s *Signature) verifyExecution(ctx context.Context, e *env, target call.Callable, inputs []any) error {
	r, err := call.New(target, nil, inputs...).VerifyOutputStyle(ctx, s.eventual, s.throws)
	if err != nil {
		return err
	}
	if s.outputInterface == nil {
		return nil
	}
	out, err := r.UltimateOutput()
	if err != nil {
		return err
	}
	return s.outputInterface.verify(ctx, e, out, []string{s.outputInterface.Name})
}
