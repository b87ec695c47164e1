package telemetry

import (
	"io"
	"os"
)

// Exporter names accepted in Config.Exporter.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// Config holds configuration for the tracer and meter providers
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment (dev, staging, production)
	Environment string

	// Enabled determines whether telemetry is enabled
	// When false, noop providers are used
	Enabled bool

	// Exporter selects "otlp" (default) or "stdout"
	Exporter string

	// Endpoint is the OTLP collector endpoint (optional)
	// If empty with the otlp exporter, nothing is exported
	Endpoint string

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64

	// Writer receives stdout exporter output; defaults to stderr
	Writer io.Writer
}

// DefaultConfig returns a sensible default configuration
// Telemetry disabled by default for CLI tool
func DefaultConfig() Config {
	return Config{
		ServiceName:    "specplan",
		ServiceVersion: "dev",
		Environment:    "development",
		Exporter:       ExporterOTLP,
		SampleRate:     1.0,
	}
}

// ProductionConfig returns a configuration exporting to an OTLP collector
func ProductionConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.ServiceVersion = "unknown"
	cfg.Environment = "production"
	cfg.Enabled = true
	cfg.Endpoint = endpoint
	cfg.SampleRate = 0.1
	return cfg
}

func (c Config) writer() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	return os.Stderr
}
