package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestInstruments(t *testing.T) (*Instruments, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return New(tp, mp), recorder, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstruments_Verify(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err        error
		failures   int
		wantStatus codes.Code
	}{
		"success": {wantStatus: codes.Unset},
		"failure": {err: errors.New("nope"), failures: 2, wantStatus: codes.Error},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			in, recorder, reader := newTestInstruments(t)
			ctx, span := in.StartVerify(context.Background(), "Interface", []string{"Promise", "then"})
			in.EndVerify(ctx, span, "Interface", time.Now(), tt.failures, tt.err)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "Interface.Verify", spans[0].Name())
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)
			assert.Contains(t, spans[0].Attributes(), attribute.String("quacker.path", "Promise.then"))
			assert.Contains(t, spans[0].Attributes(), attribute.Bool("quacker.success", tt.err == nil))

			assert.Equal(t, int64(1), counterTotal(t, reader, "quacker_verify_total"))
			assert.Equal(t, int64(tt.failures), counterTotal(t, reader, "quacker_verify_failures_total"))
		})
	}
}

func TestInstruments_StubLookups(t *testing.T) {
	t.Parallel()

	in, _, reader := newTestInstruments(t)
	in.RecordStubLookup(context.Background(), true)
	in.RecordStubLookup(context.Background(), false)
	in.RecordStubLookup(context.Background(), true)

	assert.Equal(t, int64(3), counterTotal(t, reader, "quacker_stub_lookups_total"))
}

func TestNew_GlobalFallback(t *testing.T) {
	t.Parallel()

	in := New(nil, nil)
	ctx, span := in.StartVerify(context.Background(), "Constraint", nil)
	assert.NotPanics(t, func() { in.EndVerify(ctx, span, "Constraint", time.Now(), 0, nil) })
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		"debug":         {input: "debug", want: slog.LevelDebug},
		"empty is info": {input: "", want: slog.LevelInfo},
		"mixed case":    {input: "WARN", want: slog.LevelWarn},
		"error":         {input: "error", want: slog.LevelError},
		"unknown":       {input: "loud", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	assert.Same(t, logger, Logger(logger))
	assert.Same(t, slog.Default(), Logger(nil))
}
