// Package config handles specplan configuration using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/log"
	"github.com/felixgeelhaar/specplan/internal/plan"
	"github.com/felixgeelhaar/specplan/internal/telemetry"
	"github.com/felixgeelhaar/specplan/internal/version"
)

// EnvPrefix is prepended to every environment override, e.g.
// SPECPLAN_PLANNER_MAX_BATCH_SIZE.
const EnvPrefix = "SPECPLAN"

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = ".specplan"

// Config holds the application configuration.
type Config struct {
	Planner   PlannerConfig   `mapstructure:"planner"`
	Context   ContextConfig   `mapstructure:"context"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// PlannerConfig holds batch planning settings.
type PlannerConfig struct {
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// ContextConfig bounds the per-task context window.
type ContextConfig struct {
	MinLines int `mapstructure:"min_lines"`
	MaxLines int `mapstructure:"max_lines"`
}

// SynthesisConfig controls task synthesis.
type SynthesisConfig struct {
	DefaultSize string `mapstructure:"default_size"`
	DocTasks    bool   `mapstructure:"doc_tasks"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Exporter   string  `mapstructure:"exporter"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// MetricsConfig holds Prometheus settings. When Textfile is set the CLI
// writes the registry there after each command.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from defaults, an optional YAML file and
// SPECPLAN_* environment variables, in increasing precedence. An empty
// path looks for .specplan.yaml in the working directory and tolerates its
// absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultFileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "read config", err).
				WithSuggestion("Check the file passed with --config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("planner.max_batch_size", plan.DefaultMaxBatchSize)
	v.SetDefault("context.min_lines", plan.DefaultMinContextLines)
	v.SetDefault("context.max_lines", plan.DefaultMaxContextLines)
	v.SetDefault("synthesis.default_size", string(domain.SizeM))
	v.SetDefault("synthesis.doc_tasks", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", telemetry.ExporterOTLP)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("metrics.textfile", "")
}

// Validate rejects settings the planner cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Planner.MaxBatchSize < 1 {
		problems = append(problems, fmt.Sprintf("planner.max_batch_size must be at least 1, got %d", c.Planner.MaxBatchSize))
	}
	if c.Context.MinLines < 1 {
		problems = append(problems, fmt.Sprintf("context.min_lines must be at least 1, got %d", c.Context.MinLines))
	}
	if c.Context.MaxLines < c.Context.MinLines {
		problems = append(problems, fmt.Sprintf("context.max_lines (%d) is below context.min_lines (%d)", c.Context.MaxLines, c.Context.MinLines))
	}
	if _, err := c.defaultSize(); err != nil {
		problems = append(problems, fmt.Sprintf("synthesis.default_size: %v", err))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}
	switch c.Telemetry.Exporter {
	case telemetry.ExporterOTLP, telemetry.ExporterStdout:
	default:
		problems = append(problems, fmt.Sprintf("telemetry.exporter %q is not one of otlp, stdout", c.Telemetry.Exporter))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		problems = append(problems, fmt.Sprintf("telemetry.sample_rate must be within [0,1], got %v", c.Telemetry.SampleRate))
	}

	if len(problems) > 0 {
		return errors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) defaultSize() (domain.SizeCategory, error) {
	size, err := domain.ParseSizeCategory(c.Synthesis.DefaultSize)
	if err != nil {
		return "", err
	}
	if err := size.Validate(); err != nil {
		return "", err
	}
	return size, nil
}

// PlanOptions converts the configuration into pipeline options. Events,
// Logger and Metrics are left for the caller.
func (c *Config) PlanOptions() plan.Options {
	opts := plan.DefaultOptions()
	opts.MaxBatchSize = c.Planner.MaxBatchSize
	opts.MinContextLines = c.Context.MinLines
	opts.MaxContextLines = c.Context.MaxLines
	if size, err := c.defaultSize(); err == nil {
		opts.Synthesis.DefaultSize = size
	}
	opts.Synthesis.DocTasks = c.Synthesis.DocTasks
	return opts
}

// LogConfig converts the log section into a logger configuration.
func (c *Config) LogConfig() log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.Log.Level)
	cfg.Format = log.ParseFormat(c.Log.Format)
	cfg.AddSource = cfg.Level == log.LevelDebug
	cfg.ServiceVersion = version.GetInfo().Short()
	return cfg
}

// TelemetryConfig converts the telemetry section into provider settings.
func (c *Config) TelemetryConfig() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = version.GetInfo().Short()
	cfg.Enabled = c.Telemetry.Enabled
	cfg.Exporter = c.Telemetry.Exporter
	cfg.Endpoint = c.Telemetry.Endpoint
	cfg.SampleRate = c.Telemetry.SampleRate
	return cfg
}
