package contract

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hookLog records hook and predicate activity in order.
type hookLog struct {
	mu     sync.Mutex
	events []string
}

func (tr *hookLog) hook(name string, err error) HookFunc {
	return func(context.Context) error {
		tr.add(name)
		return err
	}
}

func (tr *hookLog) add(name string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, name)
}

func (tr *hookLog) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func TestConstraint_Hooks(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		policy     TeardownPolicy
		setupErr   error
		predErr    error
		wantEvents []string
		wantErr    bool
	}{
		"success runs everything in order": {
			policy:     TeardownAlways,
			wantEvents: []string{"setup 1", "setup 2", "predicate", "teardown 1", "teardown 2"},
		},
		"failure with teardown always": {
			policy:     TeardownAlways,
			predErr:    errors.New("rejected"),
			wantEvents: []string{"setup 1", "setup 2", "predicate", "teardown 1", "teardown 2"},
			wantErr:    true,
		},
		"failure with teardown on success": {
			policy:     TeardownOnSuccess,
			predErr:    errors.New("rejected"),
			wantEvents: []string{"setup 1", "setup 2", "predicate"},
			wantErr:    true,
		},
		"success with teardown on success": {
			policy:     TeardownOnSuccess,
			wantEvents: []string{"setup 1", "setup 2", "predicate", "teardown 1", "teardown 2"},
		},
		"failing setup stops the sequence": {
			policy:     TeardownAlways,
			setupErr:   errors.New("no database"),
			wantEvents: []string{"setup 1"},
			wantErr:    true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tr := &hookLog{}
			c := NewConstraint("checked", func(context.Context, any) error {
				tr.add("predicate")
				return tt.predErr
			}).
				Setup("one", tr.hook("setup 1", tt.setupErr)).
				Setup("two", tr.hook("setup 2", nil)).
				Teardown("one", tr.hook("teardown 1", nil)).
				Teardown("two", tr.hook("teardown 2", nil))

			err := c.verify(context.Background(), Options{TeardownPolicy: tt.policy}.env(), 42)
			assert.Equal(t, tt.wantEvents, tr.list())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConstraint_FailureCarriesCandidate(t *testing.T) {
	t.Parallel()

	cause := errors.New("too small")
	c := NewConstraint("big", func(context.Context, any) error { return cause })

	err := c.Verify(context.Background(), 3)
	var vf *failure.VerifierFailure
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, 3, vf.Candidate)
	assert.Equal(t, "Constraint", vf.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "* Constraint 'big' failed.")

	candidate, ok := failure.CandidateOf(err)
	assert.True(t, ok)
	assert.Equal(t, 3, candidate)
}

func TestConstraint_PanicIsRejection(t *testing.T) {
	t.Parallel()

	c := NewConstraint("assert", func(_ context.Context, candidate any) error {
		_ = candidate.(string)
		return nil
	})

	err := c.Verify(context.Background(), 1)
	var pe *call.PanicError
	require.ErrorAs(t, err, &pe)
	assert.NoError(t, c.Verify(context.Background(), "ok"))
}

func TestConstraint_WithoutPredicate(t *testing.T) {
	t.Parallel()

	err := New("I").ConstraintNamed("empty").Verify(context.Background(), 1)
	require.ErrorIs(t, err, errNoPredicate)

	c := New("I").ConstraintNamed("filled").VerifiesThat(positive)
	assert.NoError(t, c.Verify(context.Background(), 1))
}

func TestConstraint_TeardownFailureIsReported(t *testing.T) {
	t.Parallel()

	c := NewConstraint("ok", positive).Teardown("release", func(context.Context) error {
		return errors.New("release failed")
	})

	err := c.Verify(context.Background(), 1)
	var hf *failure.HookFailure
	require.ErrorAs(t, err, &hf)
	assert.Equal(t, "teardown", hf.Phase)
	assert.Equal(t, "release", hf.Title)
}

func TestConstraint_InterfaceTeardownPolicy(t *testing.T) {
	t.Parallel()

	tr := &hookLog{}
	interf := New("Guarded").WithOptions(Options{TeardownPolicy: TeardownOnSuccess})
	interf.ConstraintNamed("positive").
		VerifiesThat(positive).
		Teardown("cleanup", tr.hook("teardown", nil))

	require.Error(t, interf.Verify(context.Background(), -1))
	assert.Empty(t, tr.list())

	require.NoError(t, interf.Verify(context.Background(), 1))
	assert.Equal(t, []string{"teardown"}, tr.list())
}

func TestParseTeardownPolicy(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    TeardownPolicy
		wantErr bool
	}{
		"empty":      {input: "", want: TeardownAlways},
		"always":     {input: "always", want: TeardownAlways},
		"on_success": {input: "on_success", want: TeardownOnSuccess},
		"dashed":     {input: "On-Success", want: TeardownOnSuccess},
		"unknown":    {input: "never", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTeardownPolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) TeardownPolicy {
	t.Helper()
	p, err := ParseTeardownPolicy(s)
	require.NoError(t, err)
	return p
}
