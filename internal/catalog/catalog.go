// Package catalog holds the built-in contracts that `quacker check` runs.
// Each entry pairs a contract with a standard library candidate that is
// expected to satisfy it.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/future"
	"github.com/ariel-frischer/quacker/value"
)

// Entry is a named contract together with the candidate it checks.
type Entry struct {
	Name        string
	Description string
	// Build returns a fresh contract so entries can be checked with
	// different options without sharing state.
	Build     func() *contract.Interface
	Candidate any
	// Probes are input lists fed to every signature of the contract.
	Probes [][]any
}

// Check verifies that the contract is self-consistent, that the candidate
// satisfies it, and that the candidate matches each signature for every sample input.
func (e Entry) Check(ctx context.Context, opts contract.Options) error {
	interf := e.Build().WithOptions(opts)
	if err := interf.ConsistentWithSelf(ctx); err != nil {
		return fmt.Errorf("contract %s is inconsistent: %w", interf.Name, err)
	}
	if err := interf.Verify(ctx, e.Candidate); err != nil {
		return err
	}
	for _, sig := range interf.Signatures() {
		for _, inputs := range e.Probes {
			if err := sig.Verify(ctx, e.Candidate, inputs...); err != nil {
				return err
			}
		}
	}
	return nil
}

var entries = map[string]Entry{
	"upper": {
		Name:        "upper",
		Description: "strings.ToUpper is an idempotent upper-caser",
		Build:       upperCaser,
		Candidate:   strings.ToUpper,
	},
	"atoi": {
		Name:        "atoi",
		Description: "strconv.Atoi parses decimal integers and rejects words",
		Build:       integerParser,
		Candidate:   strconv.Atoi,
	},
	"fields": {
		Name:        "fields",
		Description: "strings.Fields splits on runs of white space",
		Build:       fieldSplitter,
		Candidate:   strings.Fields,
	},
	"replacer": {
		Name:        "replacer",
		Description: "strings.Replacer exposes a Replace method that swaps words",
		Build:       replacer,
		Candidate:   strings.NewReplacer("duck", "goose"),
	},
	"url": {
		Name:        "url",
		Description: "url.Parse returns a URL with a scheme and a host",
		Build:       urlParser,
		Candidate:   url.Parse,
		Probes:      [][]any{{"https://example.com/pond"}, {"http://localhost:8080"}},
	},
	"parse-bool": {
		Name:        "parse-bool",
		Description: "strconv.ParseBool behind a future settles with the parsed value",
		Build:       asyncBoolParser,
		Candidate:   parseBoolAsync,
	},
}

// Names returns the entry names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every entry ordered by name.
func All() []Entry {
	names := Names()
	all := make([]Entry, len(names))
	for i, name := range names {
		all[i] = entries[name]
	}
	return all
}

// Lookup returns the entry called name.
func Lookup(name string) (Entry, bool) {
	e, ok := entries[name]
	return e, ok
}

func upperCaser() *contract.Interface {
	interf := contract.New("upper-caser").
		Document(template.Must(template.New("upper-caser").Parse("An {{.Name}} converts its input to upper case.")))
	interf.Constraint("is idempotent", func(_ context.Context, candidate any) error {
		upper, ok := candidate.(func(string) string)
		if !ok {
			return fmt.Errorf("expected func(string) string, got %T", candidate)
		}
		for _, s := range []string{"duck", "Quack", "ÄRGER"} {
			once := upper(s)
			if twice := upper(once); twice != once {
				return fmt.Errorf("upper(%q) = %q but upper(%q) = %q", s, once, once, twice)
			}
		}
		return nil
	})
	interf.IOExample("uppercases ascii").Given("quack").Return("QUACK")
	interf.IOExample("keeps empty").Given("").Return("")
	interf.IOExample("does not lowercase").Given("Quack").Return("quack").Not()
	return interf
}

func integerParser() *contract.Interface {
	interf := contract.New("integer-parser")
	interf.Constraint("round-trips through Itoa", func(_ context.Context, candidate any) error {
		parse, ok := candidate.(func(string) (int, error))
		if !ok {
			return fmt.Errorf("expected func(string) (int, error), got %T", candidate)
		}
		for _, n := range []int{0, 12, -345} {
			got, err := parse(strconv.Itoa(n))
			if err != nil {
				return err
			}
			if got != n {
				return fmt.Errorf("parsed %d as %d", n, got)
			}
		}
		return nil
	})
	interf.IOExample("parses digits").Given("42").Return(42)
	interf.IOExample("parses negatives").Given("-7").Return(-7)
	interf.IOExample("rejects words").Given("duck").
		Throw(&strconv.NumError{Func: "Atoi", Num: "duck", Err: strconv.ErrSyntax})
	return interf
}

func fieldSplitter() *contract.Interface {
	interf := contract.New("field-splitter")
	interf.IOExample("splits on spaces").Given("mallard  teal\tpintail").
		Return([]string{"mallard", "teal", "pintail"})
	interf.IOExample("blank has no fields").Given("   ").Return([]string{})
	return interf
}

func replacer() *contract.Interface {
	interf := contract.New("replacer")
	replace := interf.Property("Replace")
	replace.IOExample("swaps words").Given("a duck swims").Return("a goose swims")
	replace.IOExample("leaves other words").Given("a swan swims").Return("a swan swims")
	return interf
}

func urlParser() *contract.Interface {
	text := contract.New("non-empty string")
	text.Constraint("is a non-empty string", func(_ context.Context, candidate any) error {
		if s, ok := candidate.(string); !ok || s == "" {
			return fmt.Errorf("expected a non-empty string, got %#v", candidate)
		}
		return nil
	})
	text.Example("a url", "https://example.com")
	text.AntiExample("empty", "")

	parsed := contract.New("absolute url")
	parsed.AddConstraint(contract.HasProperty("Scheme"))
	parsed.AddConstraint(contract.HasProperty("Host"))
	parsed.Constraint("is absolute", func(_ context.Context, candidate any) error {
		abs, ok := value.Lookup(candidate, "IsAbs")
		if !ok {
			return fmt.Errorf("%T has no IsAbs method", candidate)
		}
		isAbs, ok := abs.(func() bool)
		if !ok || !isAbs() {
			return fmt.Errorf("%v is not absolute", candidate)
		}
		return nil
	})

	interf := contract.New("url-parser")
	interf.Signature("parses text").Given(text).Return(parsed)
	return interf
}

func parseBoolAsync(s string) *future.Future {
	return future.Go(func() (any, error) {
		return strconv.ParseBool(s)
	})
}

func asyncBoolParser() *contract.Interface {
	interf := contract.New("async-bool-parser")
	interf.IOExample("settles true").Given("true").Return(true).Eventually()
	interf.IOExample("settles false").Given("0").Return(false).Eventually()
	interf.IOExample("rejects quacks").Given("quack").
		Throw(&strconv.NumError{Func: "ParseBool", Num: "quack", Err: strconv.ErrSyntax}).Eventually()
	return interf
}
