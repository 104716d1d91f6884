// Package failure defines the errors raised by verification.
//
// Every failure keeps its cause reachable through Unwrap, so callers can
// use errors.Is and errors.As against the sentinels and types declared
// here. Failures raised inside an interface carry the breadcrumb path of
// property names leading to them (see BreadcrumbsOf), and leaf failures
// carry the offending candidate (see CandidateOf).
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Precondition failures, raised close to where they are detected.
var (
	ErrArityMismatch    = errors.New("arity mismatch")
	ErrNotCallable      = errors.New("candidate is not callable")
	ErrNoDeferredResult = errors.New("call did not produce a deferred result")
	ErrNotYetSettled    = errors.New("deferred result has not settled yet")
)

// Category classifies a failure for display and reporting.
type Category int

const (
	// Unknown is any error not produced by verification.
	Unknown Category = iota
	// Verification failures come from a leaf verifier rejecting a candidate.
	Verification
	// Consistency failures mean an interface's own examples contradict it.
	Consistency
	// AntiExample failures mean an anti-example was satisfied.
	AntiExample
	// Precondition failures are structural problems found before checking.
	Precondition
	// Aggregate failures group two or more independent failures.
	Aggregate
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case Verification:
		return "Verification Failure"
	case Consistency:
		return "Interface Consistency Failure"
	case AntiExample:
		return "Improper Anti-Example"
	case Precondition:
		return "Precondition Failure"
	case Aggregate:
		return "Aggregate Failure"
	default:
		return "Error"
	}
}

// CategoryOf returns the most specific category describing err.
func CategoryOf(err error) Category {
	if err == nil {
		return Unknown
	}
	var agg *AggregateFailure
	if errors.As(err, &agg) {
		return Aggregate
	}
	var anti *ImproperAntiExample
	if errors.As(err, &anti) {
		return AntiExample
	}
	var inconsistent *InterfaceConsistencyFailure
	if errors.As(err, &inconsistent) {
		return Consistency
	}
	for _, sentinel := range []error{ErrArityMismatch, ErrNotCallable, ErrNoDeferredResult, ErrNotYetSettled} {
		if errors.Is(err, sentinel) {
			return Precondition
		}
	}
	var vf *VerifierFailure
	var located *InterfaceFailure
	if errors.As(err, &vf) || errors.As(err, &located) {
		return Verification
	}
	return Unknown
}

// VerifierFailure reports that a single leaf verifier rejected a candidate.
type VerifierFailure struct {
	// Kind names the verifier type, e.g. "Constraint" or "IOExample".
	Kind string
	// Title is the verifier's declared title.
	Title string
	// Candidate is the value that was rejected.
	Candidate any
	// Err is the underlying reason.
	Err error
}

func (f *VerifierFailure) Error() string {
	return fmt.Sprintf("%s\n* %s '%s' failed. For the failing candidate, see the Candidate field of this error.",
		causeMessage(f.Err), f.Kind, f.Title)
}

func (f *VerifierFailure) Unwrap() error { return f.Err }

// ImproperAntiExample reports that an anti-example was satisfied.
type ImproperAntiExample struct {
	Kind      string
	Title     string
	Candidate any
}

func (f *ImproperAntiExample) Error() string {
	return fmt.Sprintf("Verification for anti-example %s '%s' passed. "+
		"An anti-example must fail verification. For the falsely-passing candidate, see the Candidate field of this error.",
		f.Kind, f.Title)
}

// InterfaceConsistencyFailure reports that a declared example or ioexample
// does not satisfy the interface it was declared on. It points at a mistake
// in the contract rather than in any candidate.
type InterfaceConsistencyFailure struct {
	Kind        string
	Title       string
	Breadcrumbs []string
	Err         error
}

func (f *InterfaceConsistencyFailure) Error() string {
	return fmt.Sprintf("%s\n* %s '%s' is inconsistent with interface '%s'.",
		causeMessage(f.Err), f.Kind, f.Title, JoinBreadcrumbs(f.Breadcrumbs))
}

func (f *InterfaceConsistencyFailure) Unwrap() error { return f.Err }

// InterfaceFailure attaches the breadcrumb path of the interface whose
// verifier failed.
type InterfaceFailure struct {
	Breadcrumbs []string
	Err         error
}

func (f *InterfaceFailure) Error() string {
	return fmt.Sprintf("%s\n* Failed to verify interface '%s'.", causeMessage(f.Err), JoinBreadcrumbs(f.Breadcrumbs))
}

func (f *InterfaceFailure) Unwrap() error { return f.Err }

// HookFailure reports a failing setup or teardown hook.
type HookFailure struct {
	Phase string
	Title string
	Err   error
}

func (f *HookFailure) Error() string {
	if f.Title == "" {
		return fmt.Sprintf("%s hook failed: %v", f.Phase, f.Err)
	}
	return fmt.Sprintf("%s hook '%s' failed: %v", f.Phase, f.Title, f.Err)
}

func (f *HookFailure) Unwrap() error { return f.Err }

// OutputStyleError reports a call whose outcome shape differs from what was
// declared: deferred versus immediate, failed versus succeeded.
type OutputStyleError struct {
	ExpectDeferred bool
	ExpectFailure  bool
	HadDeferred    bool
	Failed         bool
}

func (e *OutputStyleError) Error() string {
	return fmt.Sprintf("unexpected output style: expected deferred=%t failed=%t, got deferred=%t failed=%t",
		e.ExpectDeferred, e.ExpectFailure, e.HadDeferred, e.Failed)
}

// MismatchError reports an output that is not structurally equal to the
// expected one.
type MismatchError struct {
	Expected any
	Actual   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("output mismatch: expected %#v, got %#v", e.Expected, e.Actual)
}

// JoinBreadcrumbs renders a breadcrumb path the way failure messages show it.
func JoinBreadcrumbs(path []string) string {
	return strings.Join(path, ".")
}

// BreadcrumbsOf returns the breadcrumb path carried by err, if any.
func BreadcrumbsOf(err error) []string {
	var located *InterfaceFailure
	if errors.As(err, &located) {
		return located.Breadcrumbs
	}
	var inconsistent *InterfaceConsistencyFailure
	if errors.As(err, &inconsistent) {
		return inconsistent.Breadcrumbs
	}
	return nil
}

// CandidateOf returns the candidate attached to err, if any.
func CandidateOf(err error) (any, bool) {
	var anti *ImproperAntiExample
	if errors.As(err, &anti) {
		return anti.Candidate, true
	}
	var vf *VerifierFailure
	if errors.As(err, &vf) {
		return vf.Candidate, true
	}
	return nil, false
}

// Cause returns the innermost error beneath the wrappers of this package.
func Cause(err error) error {
	for {
		switch e := err.(type) {
		case *VerifierFailure:
			err = e.Err
		case *InterfaceConsistencyFailure:
			err = e.Err
		case *InterfaceFailure:
			err = e.Err
		case *HookFailure:
			err = e.Err
		default:
			return err
		}
	}
}

func causeMessage(err error) string {
	if err == nil {
		return "verification failed"
	}
	return err.Error()
}
