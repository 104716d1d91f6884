package contract

import (
	"context"

	"github.com/ariel-frischer/quacker/failure"
)

// Example is a literal value declared on an interface. Plain examples must
// satisfy the interface; anti-examples must not.
type Example struct {
	Title         string
	Value         any
	IsAntiExample bool

	target *Interface
}

// NewExample creates a standalone example.
func NewExample(title string, v any, isAntiExample bool) *Example {
	return &Example{Title: title, Value: v, IsAntiExample: isAntiExample}
}

// Target returns the interface the example was declared on, if any.
func (ex *Example) Target() *Interface {
	return ex.target
}

// ConsistentWith checks the example against interf. Interfaces without
// verifiers accept every example. Failures are reported as
// *failure.InterfaceConsistencyFailure.
func (ex *Example) ConsistentWith(ctx context.Context, interf *Interface) error {
	return ex.consistentWith(ctx, interf.env(), interf, []string{interf.Name})
}

func (ex *Example) consistentWith(ctx context.Context, e *env, interf *Interface, path []string) error {
	if interf.VerifierCount() == 0 {
		return nil
	}
	err := interf.verify(ctx, e, ex.Value, path)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ex.IsAntiExample {
		if err == nil {
			err = &failure.ImproperAntiExample{Kind: "Example", Title: ex.Title, Candidate: ex.Value}
		} else {
			err = nil
		}
	}
	if err != nil {
		return failure.Inconsistent("Example", ex.Title, path, err)
	}
	return nil
}
