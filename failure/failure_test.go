package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCombine(t *testing.T) {
	t.Parallel()

	e0 := errors.New("e0")
	e1 := errors.New("e1")
	e2 := errors.New("e2")

	tests := map[string]struct {
		errs []error
		want error
	}{
		"no errors": {
			errs: nil,
			want: nil,
		},
		"only nils": {
			errs: []error{nil, nil},
			want: nil,
		},
		"single failure is returned unwrapped": {
			errs: []error{nil, e0},
			want: e0,
		},
		"nested aggregate is flattened": {
			errs: []error{e0, &AggregateFailure{Errors: []error{e1, e2}}},
			want: &AggregateFailure{Errors: []error{e0, e1, e2}},
		},
		"aggregate alone stays an aggregate": {
			errs: []error{&AggregateFailure{Errors: []error{e1, e2}}},
			want: &AggregateFailure{Errors: []error{e1, e2}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Combine(tt.errs...))
		})
	}
}

func TestAggregateFailure_ErrorsIsAndAs(t *testing.T) {
	t.Parallel()

	vf := &VerifierFailure{Kind: "Constraint", Title: "positive", Candidate: -1, Err: errors.New("not positive")}
	err := Combine(fmt.Errorf("wrapped: %w", ErrNotCallable), vf)

	assert.ErrorIs(t, err, ErrNotCallable)
	var got *VerifierFailure
	require.ErrorAs(t, err, &got)
	assert.Equal(t, -1, got.Candidate)
	assert.Contains(t, err.Error(), "2 failures:")
	assert.Contains(t, err.Error(), "1) wrapped: candidate is not callable")
	assert.Contains(t, err.Error(), "2) not positive")
}

func TestLocated(t *testing.T) {
	t.Parallel()

	a := &VerifierFailure{Kind: "Constraint", Title: "a", Candidate: 1, Err: errors.New("bad a")}
	b := &VerifierFailure{Kind: "Constraint", Title: "b", Candidate: 2, Err: errors.New("bad b")}
	path := []string{"_", "flatten"}

	located := Located(Combine(a, b), path)
	path[1] = "mutated"

	leaves := Leaves(located)
	require.Len(t, leaves, 2)
	for _, leaf := range leaves {
		assert.Equal(t, []string{"_", "flatten"}, BreadcrumbsOf(leaf))
		assert.True(t, strings.HasSuffix(leaf.Error(), "* Failed to verify interface '_.flatten'."))
	}

	candidate, ok := CandidateOf(leaves[1])
	require.True(t, ok)
	assert.Equal(t, 2, candidate)
	assert.Equal(t, "bad b", Cause(leaves[1]).Error())
}

func TestInconsistent(t *testing.T) {
	t.Parallel()

	err := Inconsistent("Example", "usual", []string{"_", "maxIterations"}, errors.New("too big"))
	var icf *InterfaceConsistencyFailure
	require.ErrorAs(t, err, &icf)
	assert.Equal(t, "usual", icf.Title)
	assert.Equal(t, "too big\n* Example 'usual' is inconsistent with interface '_.maxIterations'.", err.Error())
	assert.Equal(t, Consistency, CategoryOf(err))
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	leaf := &VerifierFailure{Kind: "IOExample", Title: "x", Err: errors.New("mismatch")}

	tests := map[string]struct {
		err  error
		want Category
	}{
		"nil":          {err: nil, want: Unknown},
		"plain error":  {err: errors.New("x"), want: Unknown},
		"verifier":     {err: leaf, want: Verification},
		"located":      {err: Located(leaf, []string{"i"}), want: Verification},
		"anti-example": {err: &VerifierFailure{Err: &ImproperAntiExample{Title: "x"}}, want: AntiExample},
		"precondition": {err: &VerifierFailure{Err: fmt.Errorf("%w: 2 != 1", ErrArityMismatch)}, want: Precondition},
		"aggregate":    {err: Combine(leaf, leaf), want: Aggregate},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CategoryOf(tt.err))
			assert.NotEmpty(t, tt.want.String())
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	a := Located(&VerifierFailure{Kind: "Constraint", Title: "a", Err: errors.New("bad a")}, []string{"root"})
	b := Located(&VerifierFailure{Kind: "Constraint", Title: "b", Err: errors.New("bad b")}, []string{"root", "child"})

	out := Format(Combine(a, b), false)
	assert.True(t, strings.HasPrefix(out, "2 verification failures\n"))
	assert.Contains(t, out, "1) [Verification Failure]")
	assert.Contains(t, out, "   bad a\n")
	assert.Contains(t, out, "   * Failed to verify interface 'root.child'.\n")

	single := Format(a, false)
	assert.True(t, strings.HasPrefix(single, "1 verification failure\n"))

	assert.Empty(t, Format(nil, true))
}

func TestReport(t *testing.T) {
	t.Parallel()

	err := Combine(
		Located(&VerifierFailure{Kind: "Constraint", Title: "has property 'p'", Candidate: 7, Err: errors.New("missing")}, []string{"root"}),
		&VerifierFailure{Kind: "IOExample", Title: "sum", Err: &ImproperAntiExample{Kind: "IOExample", Title: "sum", Candidate: "fn"}},
	)

	report := NewReport(err)
	require.Equal(t, 2, report.Len())
	assert.Equal(t, "root", report.Failures[0].Path)
	assert.Equal(t, "Constraint 'has property 'p''", report.Failures[0].Verifier)
	assert.Equal(t, "missing", report.Failures[0].Cause)
	assert.Equal(t, "7", report.Failures[0].Candidate)
	assert.Equal(t, AntiExample.String(), report.Failures[1].Category)
	assert.Equal(t, `"fn"`, report.Failures[1].Candidate)

	data, yerr := report.YAML()
	require.NoError(t, yerr)

	var decoded Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *report, decoded)
}
