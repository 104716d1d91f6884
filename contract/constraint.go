package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/value"
)

// Predicate rejects a candidate by returning an error. Panics count as
// rejections.
type Predicate func(ctx context.Context, candidate any) error

var errNoPredicate = errors.New("constraint has no predicate")

// Constraint is the most open-ended leaf verifier: a titled predicate with
// optional setup and teardown hooks.
type Constraint struct {
	Title string
	hooks

	predicate Predicate
	target    *Interface
}

// NewConstraint creates a standalone constraint.
func NewConstraint(title string, p Predicate) *Constraint {
	return &Constraint{Title: title, predicate: p}
}

// VerifiesThat replaces the predicate.
func (c *Constraint) VerifiesThat(p Predicate) *Constraint {
	c.predicate = p
	return c
}

// Setup adds a hook run before the predicate.
func (c *Constraint) Setup(title string, fn HookFunc) *Constraint {
	c.addSetup(title, fn)
	return c
}

// Teardown adds a hook run after the predicate.
func (c *Constraint) Teardown(title string, fn HookFunc) *Constraint {
	c.addTeardown(title, fn)
	return c
}

// Target returns the interface the constraint was declared on, if any.
func (c *Constraint) Target() *Interface {
	return c.target
}

// Verify checks candidate against the predicate, surrounded by the hooks.
// A rejection is reported as a *failure.VerifierFailure carrying candidate.
func (c *Constraint) Verify(ctx context.Context, candidate any) error {
	return c.verify(ctx, envOf(c.target), candidate)
}

func (c *Constraint) verify(ctx context.Context, e *env, candidate any) error {
	return c.around(ctx, e.teardown, func() error {
		return c.verifyWithoutHooks(ctx, candidate)
	})
}

func (c *Constraint) verifyWithoutHooks(ctx context.Context, candidate any) error {
	err := guard(func() error {
		if c.predicate == nil {
			return errNoPredicate
		}
		return c.predicate(ctx, candidate)
	})
	if err != nil {
		return &failure.VerifierFailure{Kind: "Constraint", Title: c.Title, Candidate: candidate, Err: err}
	}
	return nil
}

// HasProperty returns the constraint used to gate property checks.
func HasProperty(name string) *Constraint {
	return NewConstraint(fmt.Sprintf("has property '%s'", name), func(_ context.Context, candidate any) error {
		if !value.Has(candidate, name) {
			return fmt.Errorf("candidate has no property %q", name)
		}
		return nil
	})
}
