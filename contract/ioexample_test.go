package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(a, b int) int { return a + b }

func TestIOExample_AntiExampleInversion(t *testing.T) {
	t.Parallel()

	notFive := NewIOExample("2+2 is not 5").Given(2, 2).Not().Return(5)

	assert.NoError(t, notFive.Verify(context.Background(), add))

	buggy := func(a, b int) int { return 5 }
	err := notFive.Verify(context.Background(), buggy)
	require.Error(t, err)

	var anti *failure.ImproperAntiExample
	require.ErrorAs(t, err, &anti)
	assert.Equal(t, "2+2 is not 5", anti.Title)
	assert.Equal(t, failure.AntiExample, failure.CategoryOf(err))

	var vf *failure.VerifierFailure
	require.ErrorAs(t, err, &vf)
	assert.NotNil(t, vf.Candidate)
}

func TestIOExample_Verify(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := map[string]struct {
		example   *IOExample
		candidate any
		wantErr   error
	}{
		"matching return": {
			example:   NewIOExample("add").Given(1, 2).Return(3),
			candidate: add,
		},
		"mismatching return": {
			example:   NewIOExample("add").Given(1, 2).Return(4),
			candidate: add,
			wantErr:   &failure.MismatchError{},
		},
		"structural equality on output": {
			example:   NewIOExample("pair").Given("a").Return(map[string]any{"k": []int{1, 2}}),
			candidate: func(string) map[string]any { return map[string]any{"k": []int{1, 2}} },
		},
		"expected throw": {
			example:   NewIOExample("fails").Given().Throw(errors.New("boom")),
			candidate: func() error { return errBoom },
		},
		"unexpected throw": {
			example:   NewIOExample("fails").Given().Return(nil),
			candidate: func() error { return errBoom },
			wantErr:   &failure.OutputStyleError{},
		},
		"eventual resolution": {
			example:   NewIOExample("async").Given(2).Eventually().Return(4),
			candidate: func(n int) *future.Future { return future.Resolved(n * 2) },
		},
		"eventual rejection": {
			example: NewIOExample("async fail").Given().Eventually().Throw(errors.New("boom")),
			candidate: func() *future.Future {
				f := future.New()
				go func() {
					time.Sleep(5 * time.Millisecond)
					f.Reject(errBoom)
				}()
				return f
			},
		},
		"immediate expected but deferred": {
			example:   NewIOExample("sync").Given(2).Return(4),
			candidate: func(n int) *future.Future { return future.Resolved(n * 2) },
			wantErr:   &failure.OutputStyleError{},
		},
		"not callable": {
			example:   NewIOExample("add").Given(1, 2).Return(3),
			candidate: 3,
			wantErr:   failure.ErrNotCallable,
		},
		"no declared output": {
			example:   NewIOExample("incomplete").Given(1, 2),
			candidate: add,
			wantErr:   errNoOutput,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tt.example.Verify(context.Background(), tt.candidate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vf *failure.VerifierFailure
			require.ErrorAs(t, err, &vf)
			assert.Equal(t, "IOExample", vf.Kind)
			switch want := tt.wantErr.(type) {
			case *failure.MismatchError:
				assert.ErrorAs(t, err, &want)
			case *failure.OutputStyleError:
				assert.ErrorAs(t, err, &want)
			default:
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIOExample_BoundContext(t *testing.T) {
	t.Parallel()

	type counter struct{ N int }
	receiverN := call.Func(func(receiver any, in []any) (any, error) {
		return receiver.(*counter).N + in[0].(int), nil
	})

	c := &counter{N: 10}
	ex := NewIOExample("offset").BoundTo(c).Given(5).Return(15)
	assert.NoError(t, ex.Verify(context.Background(), receiverN))

	// A bound function ignores the example's receiver.
	bound := call.Bind(receiverN, &counter{N: 100})
	assert.Error(t, ex.Verify(context.Background(), bound))

	got, ok := ex.Context()
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestIOExample_Accessors(t *testing.T) {
	t.Parallel()

	ex := NewIOExample("x").Given(1, 2).Return(3)
	assert.True(t, ex.Succeeds())
	assert.False(t, ex.Fails())
	assert.Equal(t, []any{1, 2}, ex.Inputs())

	ex.Throw(errors.New("e")).Eventually()
	assert.True(t, ex.Fails())
	assert.True(t, ex.OutputsFuture())
	ex.Immediately()
	assert.False(t, ex.OutputsFuture())

	_, err := NewIOExample("none").Output()
	assert.ErrorIs(t, err, errNoOutput)
	assert.False(t, NewIOExample("none").Succeeds())
}

func TestIOExample_Hooks(t *testing.T) {
	t.Parallel()

	tr := &hookLog{}
	ex := NewIOExample("add").Given(1, 1).Return(3).
		Setup("s", tr.hook("setup", nil)).
		Teardown("t", tr.hook("teardown", nil))

	require.Error(t, ex.Verify(context.Background(), add))
	assert.Equal(t, []string{"setup", "teardown"}, tr.list())
}

func TestIOExample_ConsistentWith(t *testing.T) {
	t.Parallel()

	text := New("Text").Constraint("is string", func(_ context.Context, c any) error {
		if _, ok := c.(string); !ok {
			return errors.New("not a string")
		}
		return nil
	})
	number := New("Number").Constraint("is int", func(_ context.Context, c any) error {
		if _, ok := c.(int); !ok {
			return errors.New("not an int")
		}
		return nil
	})

	interf := New("Formatter")
	interf.Signature("to text").Given(number).Return(text)
	interf.Signature("to number").Given(number).Return(number)

	tests := map[string]struct {
		example *IOExample
		wantErr bool
	}{
		"accepted by one signature":  {example: NewIOExample("str").Given(1).Return("1")},
		"accepted by other":          {example: NewIOExample("num").Given(1).Return(1)},
		"rejected by every one":      {example: NewIOExample("bool").Given(1).Return(true), wantErr: true},
		"anti-example rejected":      {example: NewIOExample("anti").Given(1).Not().Return(true)},
		"wrong arity for signatures": {example: NewIOExample("arity").Given(1, 2).Return("3"), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tt.example.ConsistentWith(context.Background(), interf)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var inconsistent *failure.InterfaceConsistencyFailure
			require.ErrorAs(t, err, &inconsistent)
			assert.Equal(t, []string{"Formatter"}, inconsistent.Breadcrumbs)
		})
	}

	assert.NoError(t, NewIOExample("free").Given(1).Return(2).ConsistentWith(context.Background(), New("NoSignatures")))
}
