package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	// globalMeterProvider holds the current meter provider
	globalMeterProvider metric.MeterProvider
	// globalMetricsShutdown holds the shutdown function for metrics
	globalMetricsShutdown func(context.Context) error
	// meterMu protects access to global meter provider state
	meterMu sync.RWMutex
	// metrics holds all registered instruments
	metrics *Metrics
	// metricsOnce ensures instruments are created only once
	metricsOnce sync.Once
)

// Metrics holds the OpenTelemetry instruments exported alongside traces
type Metrics struct {
	Decompositions metric.Int64Counter
	StageDuration  metric.Float64Histogram
	Tasks          metric.Int64Counter
}

func newMetricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdoutmetric.New(stdoutmetric.WithWriter(cfg.writer()))
	case ExporterOTLP, "":
		if cfg.Endpoint == "" {
			return nil, nil
		}
		return otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
		)
	default:
		return nil, fmt.Errorf("unknown telemetry exporter %q", cfg.Exporter)
	}
}

// InitMetricsProvider initializes the OpenTelemetry metrics provider
// Returns a shutdown function and any initialization error
func InitMetricsProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	meterMu.Lock()
	defer meterMu.Unlock()

	noopShutdown := func(context.Context) error { return nil }

	if !cfg.Enabled {
		globalMeterProvider = otel.GetMeterProvider()
		globalMetricsShutdown = noopShutdown
		return globalMetricsShutdown, nil
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource for metrics: %w", err)
	}

	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	if exporter == nil {
		globalMeterProvider = otel.GetMeterProvider()
		globalMetricsShutdown = noopShutdown
	} else {
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))),
		)
		globalMeterProvider = mp
		otel.SetMeterProvider(mp)
		globalMetricsShutdown = mp.Shutdown
	}

	if err := initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return globalMetricsShutdown, nil
}

// initMetrics creates all instruments on the current meter provider
func initMetrics() error {
	var initErr error
	metricsOnce.Do(func() {
		meter := globalMeterProvider.Meter("github.com/felixgeelhaar/specplan")

		m := &Metrics{}

		m.Decompositions, initErr = meter.Int64Counter(
			"specplan.decompositions",
			metric.WithDescription("Total number of decomposition runs"),
			metric.WithUnit("{run}"),
		)
		if initErr != nil {
			return
		}

		m.StageDuration, initErr = meter.Float64Histogram(
			"specplan.stage.duration",
			metric.WithDescription("Pipeline stage duration in seconds"),
			metric.WithUnit("s"),
		)
		if initErr != nil {
			return
		}

		m.Tasks, initErr = meter.Int64Counter(
			"specplan.tasks",
			metric.WithDescription("Total number of synthesized tasks"),
			metric.WithUnit("{task}"),
		)
		if initErr != nil {
			return
		}

		metrics = m
	})

	return initErr
}

// GetMetrics returns the initialized metrics instance
// Returns empty (noop) metrics if not initialized
func GetMetrics() *Metrics {
	meterMu.RLock()
	defer meterMu.RUnlock()

	if metrics != nil {
		return metrics
	}
	return &Metrics{}
}

// RecordDecomposition counts one decomposition run
func RecordDecomposition(ctx context.Context, success bool) {
	m := GetMetrics()
	if m.Decompositions == nil {
		return
	}
	m.Decompositions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordStageDuration records how long a pipeline stage took
func RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	m := GetMetrics()
	if m.StageDuration == nil {
		return
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordTasks counts synthesized tasks of one kind
func RecordTasks(ctx context.Context, kind string, count int) {
	m := GetMetrics()
	if m.Tasks == nil || count == 0 {
		return
	}
	m.Tasks.Add(ctx, int64(count), metric.WithAttributes(attribute.String("kind", kind)))
}

// ShutdownMetrics gracefully shuts down the metrics provider
func ShutdownMetrics(ctx context.Context) error {
	meterMu.RLock()
	shutdown := globalMetricsShutdown
	meterMu.RUnlock()

	if shutdown != nil {
		return shutdown(ctx)
	}
	return nil
}
