package spy

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpy_RecordsAndDischarges(t *testing.T) {
	t.Parallel()

	invocations := 0
	s := New(call.Func(func(receiver any, in []any) (any, error) {
		invocations++
		if in[0] == "bad" {
			return nil, errors.New("rejected input")
		}
		return receiver.(string) + in[0].(string), nil
	}))

	got, err := s.Call("ctx:", []any{"a"})
	require.NoError(t, err)
	assert.Equal(t, "ctx:a", got)

	_, err = s.Call("ctx:", []any{"bad"})
	assert.EqualError(t, err, "rejected input")

	calls := s.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 2, invocations)
	assert.Equal(t, []any{"a"}, calls[0].Inputs)
	assert.Equal(t, "ctx:", calls[0].Context)
	assert.Equal(t, call.True, calls[1].Failed())
	assert.Same(t, calls[1], s.LastCall())
	assert.Equal(t, 2, s.CallCount())
}

func TestSpy_NilOriginal(t *testing.T) {
	t.Parallel()

	s := New(nil)
	got, err := s.Call(nil, []any{1})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, New(nil).LastCall())
}

func TestSpy_Func(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		original any
		invoke   func(fn any) (any, error)
		want     any
		wantErr  string
	}{
		"single result": {
			original: func(a, b int) int { return a + b },
			invoke:   func(fn any) (any, error) { return fn.(func(int, int) int)(2, 3), nil },
			want:     5,
		},
		"error result": {
			original: func(s string) (int, error) { return strconv.Atoi(s) },
			invoke:   func(fn any) (any, error) { return fn.(func(string) (int, error))("x") },
			wantErr:  `strconv.Atoi: parsing "x": invalid syntax`,
		},
		"variadic": {
			original: func(xs ...int) int { return len(xs) },
			invoke:   func(fn any) (any, error) { return fn.(func(...int) int)(1, 2, 3), nil },
			want:     3,
		},
		"multiple results": {
			original: func(s string) (string, int) { return s, len(s) },
			invoke: func(fn any) (any, error) {
				a, b := fn.(func(string) (string, int))("abc")
				return []any{a, b}, nil
			},
			want: []any{"abc", 3},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			target, err := call.Adapt(tt.original)
			require.NoError(t, err)
			s := New(target)
			fn := replacement(tt.original, s)

			got, err := tt.invoke(fn)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, 1, s.CallCount())
		})
	}
}

func TestSpy_FuncRepanics(t *testing.T) {
	t.Parallel()

	target, err := call.Adapt(func() { panic("original panic") })
	require.NoError(t, err)
	fn := New(target).Func(reflect.TypeOf(func() {})).Interface().(func())

	assert.PanicsWithValue(t, "original panic", fn)
}

type service struct {
	Lookup func(id int) (string, error)
	Name   string
}

func TestOnRestore_StructField(t *testing.T) {
	t.Parallel()

	svc := &service{Lookup: func(id int) (string, error) { return "user-" + strconv.Itoa(id), nil }}

	s, err := On(svc, "Lookup")
	require.NoError(t, err)

	got, err := svc.Lookup(7)
	require.NoError(t, err)
	assert.Equal(t, "user-7", got)
	require.Equal(t, 1, s.CallCount())
	assert.Equal(t, []any{7}, s.LastCall().Inputs)

	restored, ok := Restore(svc, "Lookup")
	require.True(t, ok)
	assert.Same(t, s, restored)

	_, _ = svc.Lookup(8)
	assert.Equal(t, 1, s.CallCount(), "restored member must not record")

	_, ok = Restore(svc, "Lookup")
	assert.False(t, ok)
}

func TestOnRestore_Map(t *testing.T) {
	t.Parallel()

	double := func(n int) int { return n * 2 }
	object := map[string]any{"double": double}

	s, err := On(object, "double")
	require.NoError(t, err)

	got := object["double"].(func(int) int)(21)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, s.CallCount())

	restored, ok := Restore(object, "double")
	require.True(t, ok)
	assert.Same(t, s, restored)
	assert.Equal(t, 10, object["double"].(func(int) int)(5))
	assert.Equal(t, 1, s.CallCount())
}

func TestOnRestore_Members(t *testing.T) {
	t.Parallel()

	greet := call.Func(func(_ any, in []any) (any, error) { return "hi " + in[0].(string), nil })
	object := value.NewMembers("greet", greet)

	s, err := On(object, "greet")
	require.NoError(t, err)

	member, ok := object.GetMember("greet")
	require.True(t, ok)
	got, err := member.(call.Func)(nil, []any{"bob"})
	require.NoError(t, err)
	assert.Equal(t, "hi bob", got)
	assert.Equal(t, 1, s.CallCount())

	_, ok = Restore(object, "greet")
	require.True(t, ok)
	member, _ = object.GetMember("greet")
	_, _ = member.(call.Func)(nil, []any{"amy"})
	assert.Equal(t, 1, s.CallCount())
}

// Not parallel: RestoreAll touches every spy in the process.
func TestRestoreAll(t *testing.T) {
	svc := &service{Lookup: func(id int) (string, error) { return strconv.Itoa(id), nil }}
	object := map[string]any{"double": func(n int) int { return n * 2 }}

	_, err := On(svc, "Lookup")
	require.NoError(t, err)
	s, err := On(object, "double")
	require.NoError(t, err)
	require.Equal(t, 2, installedCount())

	assert.Equal(t, 2, RestoreAll())
	assert.Zero(t, installedCount(), "restored entries must not be retained")

	assert.Equal(t, 10, object["double"].(func(int) int)(5))
	assert.Zero(t, s.CallCount())
	_, ok := Restore(svc, "Lookup")
	assert.False(t, ok)
	assert.Zero(t, RestoreAll())
}

func TestOn_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		object any
		key    string
	}{
		"missing member":    {object: map[string]any{}, key: "nope"},
		"non-callable":      {object: &service{Name: "svc"}, key: "Name"},
		"unsettable holder": {object: service{Lookup: func(int) (string, error) { return "", nil }}, key: "Lookup"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := On(tt.object, tt.key)
			assert.Error(t, err)
		})
	}
}
