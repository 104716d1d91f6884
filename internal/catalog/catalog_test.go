package catalog

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_Pass(t *testing.T) {
	t.Parallel()

	for _, e := range All() {
		t.Run(e.Name, func(t *testing.T) {
			t.Parallel()
			assert.NoError(t, e.Check(context.Background(), contract.Options{}))
		})
	}
}

func TestEntries_RejectImpostors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		entry     string
		impostor  any
		wantTitle string
	}{
		"lower is not upper": {
			entry:     "upper",
			impostor:  strings.ToLower,
			wantTitle: "uppercases ascii",
		},
		"title case is not upper": {
			entry:     "upper",
			impostor:  func(s string) string { return strings.ToUpper(s[:min(1, len(s))]) + s[min(1, len(s)):] },
			wantTitle: "uppercases ascii",
		},
		"replacer with other words": {
			entry:     "replacer",
			impostor:  strings.NewReplacer("duck", "swan"),
			wantTitle: "swaps words",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e, ok := Lookup(tt.entry)
			require.True(t, ok)
			e.Candidate = tt.impostor

			err := e.Check(context.Background(), contract.Options{})
			require.Error(t, err)

			titles := make([]string, 0)
			for _, leaf := range failure.Leaves(err) {
				var vf *failure.VerifierFailure
				if assert.ErrorAs(t, leaf, &vf) {
					titles = append(titles, vf.Title)
				}
			}
			assert.Contains(t, titles, tt.wantTitle)
		})
	}
}

func TestReplacer_Breadcrumbs(t *testing.T) {
	t.Parallel()

	e, ok := Lookup("replacer")
	require.True(t, ok)
	e.Candidate = strings.NewReplacer("duck", "swan")

	err := e.Check(context.Background(), contract.Options{})
	require.Error(t, err)
	for _, leaf := range failure.Leaves(err) {
		assert.Equal(t, []string{"replacer", "Replace"}, failure.BreadcrumbsOf(leaf))
	}
}

func TestURL_SignatureProbes(t *testing.T) {
	t.Parallel()

	e, ok := Lookup("url")
	require.True(t, ok)
	e.Probes = [][]any{{"/relative/path"}}

	err := e.Check(context.Background(), contract.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not absolute")
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Len(t, All(), len(names))

	_, ok := Lookup("no-such-contract")
	assert.False(t, ok)
}

func TestUpperCaser_Documentation(t *testing.T) {
	t.Parallel()

	doc, err := upperCaser().Documentation().Compile(nil)
	require.NoError(t, err)
	assert.Equal(t, "An upper-caser converts its input to upper case.", doc)
}
