package quacker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mallard struct{}

func (mallard) Quack() string { return "quack" }

type robot struct{}

func (robot) Quack() string { return "beep" }

func duck() *contract.Interface {
	interf := New("duck")
	interf.Property("Quack").IOExample("says quack").Given().Return("quack")
	return interf
}

func TestImplements(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		candidate any
		wantErr   bool
		wantPath  []string
	}{
		"mallard quacks": {candidate: mallard{}},
		"robot beeps":    {candidate: robot{}, wantErr: true, wantPath: []string{"duck", "Quack"}},
		"rock is silent": {candidate: 42, wantErr: true, wantPath: []string{"duck"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Implements(context.Background(), tt.candidate, duck())
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.True(t, Quacks(context.Background(), tt.candidate, duck()))
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantPath, failure.BreadcrumbsOf(err))
			assert.False(t, Quacks(context.Background(), tt.candidate, duck()))

			var vf *failure.VerifierFailure
			require.True(t, errors.As(err, &vf))
		})
	}
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	os.Unsetenv("QUACKER_MAX_CONCURRENCY")

	path := filepath.Join(t.TempDir(), "quacker.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrency: 2\nteardown_policy: on_success\n"), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.MaxConcurrency)
	assert.Equal(t, contract.TeardownOnSuccess, opts.TeardownPolicy)
	assert.NotNil(t, opts.Logger)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func ExampleImplements() {
	err := Implements(context.Background(), robot{}, duck())
	fmt.Println(failure.BreadcrumbsOf(err))
	// Output: [duck Quack]
}
