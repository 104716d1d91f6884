// Package telemetry holds the tracing, metrics and logging plumbing shared by
// verification components.
package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName is the instrumentation scope for all quacker spans and metrics.
const ScopeName = "github.com/ariel-frischer/quacker"

// Instruments bundles the tracer and the metric instruments.
type Instruments struct {
	tracer trace.Tracer

	verifyTotal    metric.Int64Counter
	verifyDuration metric.Float64Histogram
	failuresTotal  metric.Int64Counter
	stubLookups    metric.Int64Counter
}

// New creates Instruments from the given providers. Nil providers fall back
// to the otel globals. Instruments that cannot be created are replaced with
// no-ops.
func New(tp trace.TracerProvider, mp metric.MeterProvider) *Instruments {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(ScopeName)
	fallback := noop.NewMeterProvider().Meter(ScopeName)

	in := &Instruments{tracer: tp.Tracer(ScopeName)}

	var err error
	if in.verifyTotal, err = meter.Int64Counter(
		"quacker_verify_total",
		metric.WithDescription("Total number of interface verifications"),
	); err != nil {
		in.verifyTotal, _ = fallback.Int64Counter("quacker_verify_total")
	}
	if in.verifyDuration, err = meter.Float64Histogram(
		"quacker_verify_duration_seconds",
		metric.WithDescription("Duration of interface verifications"),
		metric.WithUnit("s"),
	); err != nil {
		in.verifyDuration, _ = fallback.Float64Histogram("quacker_verify_duration_seconds")
	}
	if in.failuresTotal, err = meter.Int64Counter(
		"quacker_verify_failures_total",
		metric.WithDescription("Total number of leaf failures reported by verifications"),
	); err != nil {
		in.failuresTotal, _ = fallback.Int64Counter("quacker_verify_failures_total")
	}
	if in.stubLookups, err = meter.Int64Counter(
		"quacker_stub_lookups_total",
		metric.WithDescription("Total number of stub lookups by outcome"),
	); err != nil {
		in.stubLookups, _ = fallback.Int64Counter("quacker_stub_lookups_total")
	}
	return in
}

// StartVerify opens a span for one verification of kind at path.
func (in *Instruments) StartVerify(ctx context.Context, kind string, path []string) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, kind+".Verify",
		trace.WithAttributes(
			attribute.String("quacker.path", strings.Join(path, ".")),
		),
	)
}

// EndVerify closes span and records the outcome. failures is the number of
// leaf failures in err.
func (in *Instruments) EndVerify(ctx context.Context, span trace.Span, kind string, start time.Time, failures int, err error) {
	success := err == nil
	span.SetAttributes(
		attribute.Bool("quacker.success", success),
		attribute.Int("quacker.failures", failures),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verification failed")
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	)
	in.verifyTotal.Add(ctx, 1, attrs)
	in.verifyDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if failures > 0 {
		in.failuresTotal.Add(ctx, int64(failures), metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordStubLookup counts a stub lookup.
func (in *Instruments) RecordStubLookup(ctx context.Context, hit bool) {
	in.stubLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
