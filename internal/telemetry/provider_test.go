package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInitProviderDisabled(t *testing.T) {
	config := DefaultConfig()

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, config)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected shutdown function, got nil")
	}
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}

func TestInitProviderOTLP(t *testing.T) {
	config := ProductionConfig("collector.example.com:4318")

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, config)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected shutdown function, got nil")
	}
}

func TestInitProviderStdout(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Enabled = true
	config.Exporter = ExporterStdout
	config.Writer = &buf

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, config)
	if err != nil {
		t.Fatalf("InitProvider failed: %v", err)
	}

	_, span := StartStageSpan(ctx, "graph")
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "stage.graph") {
		t.Errorf("stdout exporter output missing span name: %s", buf.String())
	}

	// Leave a noop provider behind for other tests
	if _, err := InitProvider(ctx, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
}

func TestInitProviderUnknownExporter(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.Exporter = "carrier-pigeon"

	if _, err := InitProvider(context.Background(), config); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestShutdownForceFlush(t *testing.T) {
	ctx := context.Background()
	if err := Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush failed: %v", err)
	}
}
