package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/specplan/internal/plan"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

type planFlags struct {
	in       string
	out      string
	maxBatch int
	docTasks bool
	quiet    bool
}

func newPlanCmd(a *app) *cobra.Command {
	f := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build an execution plan from a requirements document",
		Long: `Decompose every requirement into test, implementation and integration tasks,
validate the dependency graph, and schedule it into parallel batches.

The plan is written as JSON and records a digest of the requirements so
'specplan validate --plan' can tell when it has gone stale.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.command("plan", func(ctx context.Context, cmd *cobra.Command) error {
		return runPlan(ctx, cmd, a, f)
	})

	cmd.Flags().StringVar(&f.in, "in", "spec.yaml", "requirements document (YAML or JSON)")
	cmd.Flags().StringVar(&f.out, "out", "plan.json", "where to write the plan")
	cmd.Flags().IntVar(&f.maxBatch, "max-batch", 0, "maximum tasks per batch (default from config)")
	cmd.Flags().BoolVar(&f.docTasks, "doc-tasks", false, "emit a doc task per requirement")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print the plan summary")
	return cmd
}

func runPlan(ctx context.Context, cmd *cobra.Command, a *app, f *planFlags) error {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("spec_file", f.in),
		attribute.String("plan_file", f.out),
	)

	doc, err := spec.LoadDocument(f.in)
	if err != nil {
		return err
	}

	opts := a.planOptions()
	if f.maxBatch > 0 {
		opts.MaxBatchSize = f.maxBatch
	}
	if cmd.Flags().Changed("doc-tasks") {
		opts.Synthesis.DocTasks = f.docTasks
	}

	res, stages, err := decompose(ctx, doc, opts)
	if err != nil {
		return err
	}

	if err := plan.SaveFile(plan.NewFile(res), f.out); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "plan written", "path", f.out, "tasks", len(res.Tasks))

	if !f.quiet {
		renderSummary(cmd.OutOrStdout(), res, stages)
	}
	return nil
}

// planOptions returns the configured pipeline options wired to this
// invocation's logger and metrics.
func (a *app) planOptions() plan.Options {
	opts := a.cfg.PlanOptions()
	opts.Logger = a.logger
	opts.Metrics = a.metrics
	return opts
}

// decompose runs the pipeline and collects its stage events.
func decompose(ctx context.Context, doc *spec.Document, opts plan.Options) (*plan.Result, []plan.StageCompleted, error) {
	events := make(chan plan.StageCompleted, len(plan.Stages))
	opts.Events = events

	res, err := plan.Decompose(ctx, doc, opts)
	close(events)
	if err != nil {
		return nil, nil, err
	}

	stages := make([]plan.StageCompleted, 0, len(plan.Stages))
	for ev := range events {
		stages = append(stages, ev)
	}
	return res, stages, nil
}
