package contract

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ariel-frischer/quacker/aggregate"
	"github.com/ariel-frischer/quacker/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TeardownPolicy decides when teardown hooks run after a verification.
type TeardownPolicy int

const (
	// TeardownAlways runs teardowns on every exit path once setups ran.
	TeardownAlways TeardownPolicy = iota
	// TeardownOnSuccess runs teardowns only when verification passed.
	TeardownOnSuccess
)

func (p TeardownPolicy) String() string {
	if p == TeardownOnSuccess {
		return "on_success"
	}
	return "always"
}

// ParseTeardownPolicy accepts "always" or "on_success".
func ParseTeardownPolicy(s string) (TeardownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return TeardownAlways, nil
	case "on_success", "on-success":
		return TeardownOnSuccess, nil
	}
	return TeardownAlways, fmt.Errorf("unknown teardown policy %q (want always or on_success)", s)
}

// Options tune how an Interface runs its verifications. The zero value is
// usable: unbounded concurrency, teardowns always run, the default slog
// logger and the global otel providers.
type Options struct {
	// MaxConcurrency bounds how many sibling checks run at once. Zero means
	// unbounded.
	MaxConcurrency int
	// TeardownPolicy decides whether teardown hooks run after a failure.
	TeardownPolicy TeardownPolicy
	// Logger receives debug records about verification. Nil means
	// slog.Default().
	Logger *slog.Logger
	// TracerProvider and MeterProvider default to the otel globals.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// env is the resolved form of Options used while verifying.
type env struct {
	runner   *aggregate.Runner
	teardown TeardownPolicy
	logger   *slog.Logger
	tel      *telemetry.Instruments
}

func (o Options) env() *env {
	return &env{
		runner:   aggregate.NewRunner(aggregate.WithLimit(o.MaxConcurrency)),
		teardown: o.TeardownPolicy,
		logger:   telemetry.Logger(o.Logger),
		tel:      telemetry.New(o.TracerProvider, o.MeterProvider),
	}
}

var (
	defaultEnvOnce sync.Once
	defaultEnvVal  *env
)

func defaultEnv() *env {
	defaultEnvOnce.Do(func() {
		defaultEnvVal = Options{}.env()
	})
	return defaultEnvVal
}
