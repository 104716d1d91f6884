// Package contract declares duck-typed contracts and verifies arbitrary
// values against them.
//
// An Interface is a tree: constraints, ioexamples and signatures sit on each
// node, and properties lead to child interfaces describing the value found
// under that member. Verification fans out over the whole tree concurrently
// and reports every failure, each tagged with the breadcrumb path of the
// node it came from.
//
// Interfaces are built up front and then treated as read-only; the builder
// methods are not safe for use concurrently with verification.
package contract

import (
	"context"
	"time"

	"github.com/ariel-frischer/quacker/aggregate"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/value"
)

// Interface is a named contract that a candidate may or may not satisfy.
type Interface struct {
	Name string

	parent        *Interface
	documentation *Documentation
	constraints   ordered[*Constraint]
	examples      ordered[*Example]
	ioexamples    ordered[*IOExample]
	signatures    ordered[*Signature]
	properties    ordered[*Interface]

	resolved *env
}

// New creates a standalone interface.
func New(name string) *Interface {
	return &Interface{Name: name}
}

// WithOptions sets the options used when verification starts at this
// interface. Child interfaces reached through properties are verified with
// the options of the interface verification started from.
func (i *Interface) WithOptions(opts Options) *Interface {
	i.resolved = opts.env()
	return i
}

func (i *Interface) env() *env {
	for node := i; node != nil; node = node.parent {
		if node.resolved != nil {
			return node.resolved
		}
	}
	return defaultEnv()
}

func envOf(i *Interface) *env {
	if i == nil {
		return defaultEnv()
	}
	return i.env()
}

// Parent returns the interface this one was declared under through
// Property, or nil for standalone interfaces.
func (i *Interface) Parent() *Interface {
	return i.parent
}

// Document attaches documentation.
func (i *Interface) Document(source any) *Interface {
	i.documentation = &Documentation{Source: source, target: i}
	return i
}

// Documentation returns the attached documentation, or nil.
func (i *Interface) Documentation() *Documentation {
	return i.documentation
}

// Example declares a value that satisfies the interface.
func (i *Interface) Example(title string, v any) *Interface {
	i.examples.put(title, &Example{Title: title, Value: v, target: i})
	return i
}

// AntiExample declares a value that must not satisfy the interface.
func (i *Interface) AntiExample(title string, v any) *Interface {
	i.examples.put(title, &Example{Title: title, Value: v, IsAntiExample: true, target: i})
	return i
}

// Constraint declares a predicate every candidate must pass.
func (i *Interface) Constraint(title string, p Predicate) *Interface {
	i.AddConstraint(NewConstraint(title, p))
	return i
}

// ConstraintNamed returns the constraint with title, declaring an empty
// one when there is none yet.
func (i *Interface) ConstraintNamed(title string) *Constraint {
	if c, ok := i.constraints.get(title); ok {
		return c
	}
	return i.AddConstraint(NewConstraint(title, nil))
}

// AddConstraint declares an existing constraint on this interface.
func (i *Interface) AddConstraint(c *Constraint) *Constraint {
	c.target = i
	i.constraints.put(c.Title, c)
	return c
}

// IOExample returns the ioexample with title, declaring a new one when
// there is none yet.
func (i *Interface) IOExample(title string) *IOExample {
	if ex, ok := i.ioexamples.get(title); ok {
		return ex
	}
	return i.AddIOExample(NewIOExample(title))
}

// AddIOExample declares an existing ioexample on this interface.
func (i *Interface) AddIOExample(ex *IOExample) *IOExample {
	ex.target = i
	i.ioexamples.put(ex.Title, ex)
	return ex
}

// Signature returns the signature with title, declaring a new one when
// there is none yet.
func (i *Interface) Signature(title string) *Signature {
	if s, ok := i.signatures.get(title); ok {
		return s
	}
	return i.AddSignature(NewSignature(title))
}

// AddSignature declares an existing signature on this interface.
func (i *Interface) AddSignature(s *Signature) *Signature {
	s.target = i
	i.signatures.put(s.Title, s)
	return s
}

// Property returns the child interface describing member name, declaring
// a new one when there is none yet.
func (i *Interface) Property(name string) *Interface {
	if child, ok := i.properties.get(name); ok {
		return child
	}
	child := New(name)
	child.parent = i
	i.properties.put(name, child)
	return child
}

// AddProperty uses an existing interface to describe the member named
// after it. The child keeps its own parent.
func (i *Interface) AddProperty(child *Interface) *Interface {
	i.properties.put(child.Name, child)
	return child
}

// Constraints returns the constraints in declaration order.
func (i *Interface) Constraints() []*Constraint { return i.constraints.values() }

// Examples returns the examples in declaration order.
func (i *Interface) Examples() []*Example { return i.examples.values() }

// IOExamples returns the ioexamples in declaration order.
func (i *Interface) IOExamples() []*IOExample { return i.ioexamples.values() }

// Signatures returns the signatures in declaration order.
func (i *Interface) Signatures() []*Signature { return i.signatures.values() }

// Properties returns the child interfaces in declaration order.
func (i *Interface) Properties() []*Interface { return i.properties.values() }

// VerifierCount is the number of constraints and ioexamples on this
// interface and all of its descendants.
func (i *Interface) VerifierCount() int {
	n := i.constraints.len() + i.ioexamples.len()
	for _, child := range i.properties.values() {
		n += child.VerifierCount()
	}
	return n
}

// Verify checks candidate against every constraint, ioexample and property
// of the interface and reports all failures together.
func (i *Interface) Verify(ctx context.Context, candidate any) error {
	return i.verify(ctx, i.env(), candidate, []string{i.Name})
}

// VerifyPath is Verify with an explicit breadcrumb path for this node.
func (i *Interface) VerifyPath(ctx context.Context, candidate any, path []string) error {
	return i.verify(ctx, i.env(), candidate, path)
}

func (i *Interface) verify(ctx context.Context, e *env, candidate any, path []string) error {
	ctx, span := e.tel.StartVerify(ctx, "Interface", path)
	start := time.Now()
	e.logger.Debug("verifying interface", "path", failure.JoinBreadcrumbs(path))

	_, err := e.runner.CompleteAll(ctx,
		func(ctx context.Context) (any, error) { return nil, i.verifyConstraints(ctx, e, candidate, path) },
		func(ctx context.Context) (any, error) { return nil, i.verifyIOExamples(ctx, e, candidate, path) },
		func(ctx context.Context) (any, error) { return nil, i.verifyProperties(ctx, e, candidate, path) },
	)

	failures := len(failure.Leaves(err))
	e.tel.EndVerify(ctx, span, "Interface", start, failures, err)
	e.logger.Debug("verified interface", "path", failure.JoinBreadcrumbs(path), "failures", failures)
	return err
}

// leaf is a verifier that does not recurse into other interfaces.
type leaf interface {
	verify(ctx context.Context, e *env, candidate any) error
}

func verifyLeaf(ctx context.Context, e *env, l leaf, candidate any, path []string) error {
	return failure.Located(l.verify(ctx, e, candidate), path)
}

func verifyLeaves[L leaf](ctx context.Context, e *env, leaves []L, candidate any, path []string) error {
	checks := make([]aggregate.Check, len(leaves))
	for n, l := range leaves {
		checks[n] = func(ctx context.Context) (any, error) {
			return nil, verifyLeaf(ctx, e, l, candidate, path)
		}
	}
	_, err := e.runner.CompleteAll(ctx, checks...)
	return err
}

func (i *Interface) verifyConstraints(ctx context.Context, e *env, candidate any, path []string) error {
	return verifyLeaves(ctx, e, i.constraints.values(), candidate, path)
}

func (i *Interface) verifyIOExamples(ctx context.Context, e *env, candidate any, path []string) error {
	return verifyLeaves(ctx, e, i.ioexamples.values(), candidate, path)
}

// verifyProperties checks each property in two steps: the member must
// exist, and only then is its value verified against the child interface.
func (i *Interface) verifyProperties(ctx context.Context, e *env, candidate any, path []string) error {
	names := i.properties.names
	checks := make([]aggregate.Check, len(names))
	for n, name := range names {
		child, _ := i.properties.get(name)
		checks[n] = func(ctx context.Context) (any, error) {
			if err := verifyLeaf(ctx, e, HasProperty(name), candidate, path); err != nil {
				return nil, err
			}
			member, _ := value.Lookup(candidate, name)
			childPath := append(append([]string(nil), path...), name)
			return nil, child.verify(ctx, e, member, childPath)
		}
	}
	_, err := e.runner.CompleteAll(ctx, checks...)
	return err
}

// ConsistentWithSelf checks that every example and ioexample declared on
// the interface agrees with it, recursively through child interfaces.
func (i *Interface) ConsistentWithSelf(ctx context.Context) error {
	return i.consistentWithSelf(ctx, i.env(), []string{i.Name})
}

func (i *Interface) consistentWithSelf(ctx context.Context, e *env, path []string) error {
	var checks []aggregate.Check
	for _, ex := range i.examples.values() {
		checks = append(checks, func(ctx context.Context) (any, error) {
			return nil, ex.consistentWith(ctx, e, i, path)
		})
	}
	for _, ex := range i.ioexamples.values() {
		checks = append(checks, func(ctx context.Context) (any, error) {
			return nil, ex.consistentWith(ctx, e, i, path)
		})
	}
	for _, child := range i.properties.values() {
		childPath := append(append([]string(nil), path...), child.Name)
		checks = append(checks, func(ctx context.Context) (any, error) {
			return nil, child.consistentWithSelf(ctx, e, childPath)
		})
	}
	_, err := e.runner.CompleteAll(ctx, checks...)
	return err
}

// Fake returns a stub answering from this interface's own ioexamples.
// Constraints and properties do not shape the fake.
func (i *Interface) Fake() *Stub {
	return newStub(i.env(), i.ioexamples.values()...)
}
