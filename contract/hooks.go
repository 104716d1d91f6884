package contract

import (
	"context"
	"runtime/debug"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/failure"
)

// HookFunc prepares or releases state around a single verification.
type HookFunc func(ctx context.Context) error

// Hook is a titled setup or teardown step.
type Hook struct {
	Title string
	Run   HookFunc
}

type hooks struct {
	setups    []Hook
	teardowns []Hook
}

func (h *hooks) addSetup(title string, fn HookFunc) {
	h.setups = append(h.setups, Hook{Title: title, Run: fn})
}

func (h *hooks) addTeardown(title string, fn HookFunc) {
	h.teardowns = append(h.teardowns, Hook{Title: title, Run: fn})
}

// Setups returns the setup hooks in declaration order.
func (h *hooks) Setups() []Hook { return append([]Hook(nil), h.setups...) }

// Teardowns returns the teardown hooks in declaration order.
func (h *hooks) Teardowns() []Hook { return append([]Hook(nil), h.teardowns...) }

// around runs setups in order, then body, then teardowns as the policy
// allows. A failing setup stops the sequence: body and teardowns are
// skipped. Every teardown runs even when an earlier one fails.
func (h *hooks) around(ctx context.Context, policy TeardownPolicy, body func() error) error {
	for _, hook := range h.setups {
		if err := runHook(ctx, hook); err != nil {
			return &failure.HookFailure{Phase: "setup", Title: hook.Title, Err: err}
		}
	}

	err := body()
	if err != nil && policy == TeardownOnSuccess {
		return err
	}

	errs := []error{err}
	for _, hook := range h.teardowns {
		if terr := runHook(ctx, hook); terr != nil {
			errs = append(errs, &failure.HookFailure{Phase: "teardown", Title: hook.Title, Err: terr})
		}
	}
	return failure.Combine(errs...)
}

func runHook(ctx context.Context, hook Hook) (err error) {
	if hook.Run == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = &call.PanicError{Value: p, Stack: string(debug.Stack())}
		}
	}()
	return hook.Run(ctx)
}

// guard runs fn and turns a panic into a thrown error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &call.PanicError{Value: p, Stack: string(debug.Stack())}
		}
	}()
	return fn()
}
