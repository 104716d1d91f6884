package failure

import (
	"fmt"
	"strings"
)

// AggregateFailure groups two or more independent failures. Its Errors are
// always flat: no member is itself an AggregateFailure.
type AggregateFailure struct {
	Errors []error
}

func (f *AggregateFailure) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d failures:", len(f.Errors))
	for i, err := range f.Errors {
		lines := strings.Split(err.Error(), "\n")
		fmt.Fprintf(&sb, "\n%d) %s", i+1, lines[0])
		for _, line := range lines[1:] {
			sb.WriteString("\n   ")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// Unwrap exposes the members to errors.Is and errors.As.
func (f *AggregateFailure) Unwrap() []error { return f.Errors }

// Combine folds errs into a single error. Nil entries are skipped, members
// of nested aggregates are lifted into the result, a single failure is
// returned as is, and no failures yield nil.
func Combine(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if agg, ok := err.(*AggregateFailure); ok {
			flat = append(flat, agg.Errors...)
			continue
		}
		flat = append(flat, err)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &AggregateFailure{Errors: flat}
}

// Map applies fn to err, or to every member when err is an aggregate.
func Map(err error, fn func(error) error) error {
	if err == nil {
		return nil
	}
	agg, ok := err.(*AggregateFailure)
	if !ok {
		return fn(err)
	}
	mapped := make([]error, len(agg.Errors))
	for i, member := range agg.Errors {
		mapped[i] = fn(member)
	}
	return Combine(mapped...)
}

// Located annotates err, or each member of an aggregate, with the
// breadcrumb path of the interface being verified.
func Located(err error, breadcrumbs []string) error {
	path := append([]string(nil), breadcrumbs...)
	return Map(err, func(member error) error {
		return &InterfaceFailure{Breadcrumbs: path, Err: member}
	})
}

// Inconsistent annotates err, or each member of an aggregate, as an
// example that contradicts its interface.
func Inconsistent(kind, title string, breadcrumbs []string, err error) error {
	path := append([]string(nil), breadcrumbs...)
	return Map(err, func(member error) error {
		return &InterfaceConsistencyFailure{Kind: kind, Title: title, Breadcrumbs: path, Err: member}
	})
}

// Leaves returns the members of an aggregate, or err itself.
func Leaves(err error) []error {
	if err == nil {
		return nil
	}
	if agg, ok := err.(*AggregateFailure); ok {
		return agg.Errors
	}
	return []error{err}
}
