// Package quacker verifies at runtime that values satisfy duck-typed
// contracts.
//
// A contract is a *contract.Interface assembled from constraints, examples,
// ioexamples, signatures and properties:
//
//	duck := quacker.New("duck")
//	duck.Property("Quack").
//		IOExample("says quack").Given().Return("quack")
//
//	if err := quacker.Implements(ctx, mallard, duck); err != nil {
//		// every failing verifier is reported, each with its breadcrumb path
//	}
package quacker

import (
	"context"
	"fmt"
	"os"

	"github.com/ariel-frischer/quacker/contract"
	"github.com/ariel-frischer/quacker/internal/config"
)

// New creates an empty contract called name.
func New(name string) *contract.Interface {
	return contract.New(name)
}

// Implements verifies candidate against interf and returns every failure
// found. A nil error means the candidate satisfies the contract.
func Implements(ctx context.Context, candidate any, interf *contract.Interface) error {
	return interf.Verify(ctx, candidate)
}

// Quacks reports whether candidate satisfies interf.
func Quacks(ctx context.Context, candidate any, interf *contract.Interface) bool {
	return Implements(ctx, candidate, interf) == nil
}

// LoadOptions reads quacker configuration and returns the matching
// verification options. An empty configPath uses .quacker/config.yml when
// present; user config and QUACKER_* environment variables apply as well.
// Logs go to stderr.
func LoadOptions(configPath string) (contract.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return contract.Options{}, err
	}
	opts, err := cfg.ContractOptions(os.Stderr)
	if err != nil {
		return contract.Options{}, fmt.Errorf("building options: %w", err)
	}
	return opts, nil
}
