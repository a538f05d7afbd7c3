package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		raw, expected string
	}{
		{"http://tempo:4318", "tempo:4318"},
		{"https://collector.local", "collector.local:4318"},
		{"otel:4318", "otel:4318"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseOTLPEndpoint(tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown := Init(context.Background(), "", "test")
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartEnd_RecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := Start(context.Background(), "BookingService.Create")
	End(span, errors.New("boom"))

	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "BookingService.Create", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	}
}

func TestMiddleware_PassesSpanContext(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items", nil))

	spans := recorder.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "GET /api/items", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	}
}
