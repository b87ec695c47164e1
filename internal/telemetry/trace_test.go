package telemetry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/specplan/internal/errors"
)

// setupTestTracer creates a test tracer with in-memory exporter
func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	res, err := createResource(DefaultConfig())
	if err != nil {
		t.Fatalf("createResource failed: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providerMu.Lock()
	globalProvider = tp
	providerMu.Unlock()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		providerMu.Lock()
		globalProvider = nil
		providerMu.Unlock()
	})

	return tp, exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartCommandSpan(t *testing.T) {
	_, exporter := setupTestTracer(t)

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "plan")
	if spanCtx == ctx {
		t.Error("expected new context with span, got same context")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "command.plan" {
		t.Errorf("span name = %q, want command.plan", spans[0].Name)
	}
	if v, ok := attrValue(spans[0].Attributes, "component"); !ok || v.AsString() != "cli" {
		t.Errorf("component attribute = %v, want cli", v.AsString())
	}
}

func TestStageSpansNestUnderDecomposition(t *testing.T) {
	_, exporter := setupTestTracer(t)

	ctx, root := StartDecompositionSpan(context.Background(), "run-1")
	_, stage := StartStageSpan(ctx, "critical_path")
	stage.End()
	root.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	stageSpan, rootSpan := spans[0], spans[1]
	if stageSpan.Name != "stage.critical_path" {
		t.Errorf("stage span name = %q", stageSpan.Name)
	}
	if stageSpan.Parent.SpanID() != rootSpan.SpanContext.SpanID() {
		t.Error("stage span is not a child of the decomposition span")
	}
	if v, _ := attrValue(rootSpan.Attributes, "run_id"); v.AsString() != "run-1" {
		t.Errorf("run_id = %q, want run-1", v.AsString())
	}
}

func TestRecordSuccess(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, span := StartStageSpan(context.Background(), "batches")
	RecordSuccess(span, attribute.Int("batches", 3))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status.Code)
	}
	if v, _ := attrValue(got.Attributes, "batches"); v.AsInt64() != 3 {
		t.Errorf("batches attribute = %d, want 3", v.AsInt64())
	}
}

func TestRecordError(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, span := StartStageSpan(context.Background(), "graph")
	err := fmt.Errorf("build graph: %w", &errors.CycleDetectedError{Path: []string{"T001", "T002", "T001"}})
	RecordError(span, err)
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	if v, _ := attrValue(got.Attributes, "error_code"); v.AsString() != "PLAN-002" {
		t.Errorf("error_code = %q, want PLAN-002", v.AsString())
	}
	if len(got.Events) == 0 {
		t.Error("expected an exception event")
	}
}

func TestRecordErrorWithNil(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, span := StartStageSpan(context.Background(), "graph")
	RecordError(span, nil)
	span.End()

	if got := exporter.GetSpans()[0]; got.Status.Code == codes.Error {
		t.Error("nil error must not set error status")
	}
}

func TestRecordDuration(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, span := StartStageSpan(context.Background(), "context")
	RecordDuration(span, "allocation", 1500*time.Millisecond)
	span.End()

	if v, _ := attrValue(exporter.GetSpans()[0].Attributes, "allocation_ms"); v.AsInt64() != 1500 {
		t.Errorf("allocation_ms = %d, want 1500", v.AsInt64())
	}
}
