package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specplan/internal/config"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/log"
	"github.com/felixgeelhaar/specplan/internal/metrics"
	"github.com/felixgeelhaar/specplan/internal/telemetry"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg       *config.Config
	logger    *log.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	shutdowns []func(context.Context) error
}

// NewRootCmd builds the specplan command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "specplan",
		Short: "Decompose requirements into a test-first execution plan",
		Long: `specplan turns a requirements document (epics, stories and requirements with
confidence scores) into atomic test, implementation and integration tasks,
validates the resulting dependency graph, and schedules it into ordered
parallel batches with a critical path and a risk report.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is ./.specplan.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newPlanCmd(a),
		newValidateCmd(a),
		newLockCmd(a),
		newReplayCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by main.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration and wires logging, metrics and telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.LogConfig()
	logCfg.Output = cmd.ErrOrStderr()
	a.logger = log.New(logCfg)
	log.SetDefaultLogger(a.logger)

	a.registry, a.metrics = metrics.NewRegistry()

	if !cfg.Telemetry.Enabled {
		return nil
	}

	telemCfg := cfg.TelemetryConfig()
	telemCfg.Writer = cmd.ErrOrStderr()

	traceShutdown, err := telemetry.InitProvider(cmd.Context(), telemCfg)
	if err != nil {
		a.logger.Warn("Failed to initialize telemetry", "error", err)
		return nil
	}
	a.shutdowns = append(a.shutdowns, traceShutdown)

	metricShutdown, err := telemetry.InitMetricsProvider(cmd.Context(), telemCfg)
	if err != nil {
		a.logger.Warn("Failed to initialize telemetry metrics", "error", err)
		return nil
	}
	a.shutdowns = append(a.shutdowns, metricShutdown)
	return nil
}

// command wraps a subcommand body with a span, command metrics and teardown.
func (a *app) command(name string, fn func(ctx context.Context, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		start := time.Now()

		err := fn(ctx, cmd)

		a.metrics.ObserveCommand(name, err == nil, time.Since(start))
		if err != nil {
			telemetry.RecordError(span, err)
			a.metrics.ObserveError(string(errors.CodeOf(err)), "cmd."+name)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()

		a.close(ctx)
		return err
	}
}

// close flushes the metrics textfile and shuts telemetry down. Failures are
// logged, never returned: the command result stands.
func (a *app) close(ctx context.Context) {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path, a.registry); err != nil {
			a.logger.Warn("Failed to write metrics textfile", "path", path, "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, shutdown := range a.shutdowns {
		if err := shutdown(shutdownCtx); err != nil {
			a.logger.Warn("Failed to shut down telemetry", "error", err)
		}
	}
	a.shutdowns = nil
}
