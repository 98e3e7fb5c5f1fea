package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("events_update_by_zoom_id").
		WithOperation(OperationUpdateEvent).
		WithUser("room@example.org").
		WithEventID("AAMkAG").
		WithZoomID("1234567890").
		WithReadOnly(false).
		Build()

	got := map[string]interface{}{}
	for _, a := range attrs {
		got[string(a.Key)] = a.Value.AsInterface()
	}

	assert.Equal(t, map[string]interface{}{
		SpanAttrTool:       "events_update_by_zoom_id",
		SpanAttrOperation:  OperationUpdateEvent,
		SpanAttrUserDomain: "example.org",
		SpanAttrEventID:    "AAMkAG",
		SpanAttrZoomID:     "1234567890",
		SpanAttrReadOnly:   false,
	}, got)
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithUser("").
		WithEventID("").
		WithZoomID("").
		Build()
	assert.Empty(t, attrs)
}

func TestStartGraphSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartGraphSpan(context.Background(), "GET", OperationListEvents)
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	SetSpanError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "graph."+OperationListEvents, spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestStartToolSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartToolSpan(context.Background(), "events_get")
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tool.events_get", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestSetSpanError_Nil(t *testing.T) {
	recorder := installRecorder(t)
	_, span := StartSpan(context.Background(), "noop")
	SetSpanError(span, nil)
	span.End()
	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}
