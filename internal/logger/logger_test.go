package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitializeWithWriter(&buf, level, "json")
	t.Cleanup(func() { defaultLogger = nil })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &rec))
	return rec
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn")
	Info("dropped")
	assert.Zero(t, buf.Len())

	Warn("kept", "itemID", 3)
	rec := lastRecord(t, buf)
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, float64(3), rec["itemID"])
}

func TestContextCarriesTraceIDs(t *testing.T) {
	buf := capture(t, "info")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	InfoContext(ctx, "with span")
	rec := lastRecord(t, buf)
	assert.Equal(t, sc.TraceID().String(), rec["trace_id"])
	assert.Equal(t, sc.SpanID().String(), rec["span_id"])

	InfoContext(context.Background(), "without span")
	assert.NotContains(t, lastRecord(t, buf), "trace_id")
}

func TestExitMethodWithError(t *testing.T) {
	buf := capture(t, "debug")
	ExitMethodWithError("bookingService.CreateBooking", errors.New("boom"), "itemID", 1)

	rec := lastRecord(t, buf)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "bookingService.CreateBooking", rec["method"])
	assert.Equal(t, "boom", rec["error"])
}

func TestWithJob(t *testing.T) {
	buf := capture(t, "info")
	WithJob("complete-elapsed-bookings").Info("done")
	assert.Equal(t, "complete-elapsed-bookings", lastRecord(t, buf)["job"])
}
