package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/log"
	"github.com/felixgeelhaar/specplan/internal/metrics"
	"github.com/felixgeelhaar/specplan/internal/spec"
	"github.com/felixgeelhaar/specplan/internal/telemetry"
)

// Stage names a step of the decomposition pipeline.
type Stage string

const (
	StageNormalize    Stage = "normalize"
	StageSynthesize   Stage = "synthesize"
	StageGraph        Stage = "graph"
	StageCriticalPath Stage = "critical_path"
	StageBatches      Stage = "batches"
	StageContext      Stage = "context"
	StageAnalysis     Stage = "analysis"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{
	StageNormalize, StageSynthesize, StageGraph, StageCriticalPath,
	StageBatches, StageContext, StageAnalysis,
}

// StageCompleted is sent on Options.Events after each stage succeeds.
type StageCompleted struct {
	RunID    string
	Stage    Stage
	Duration time.Duration
	// Items is the number of records the stage produced.
	Items int
}

// Options configures a decomposition run
type Options struct {
	MaxBatchSize    int
	MinContextLines int
	MaxContextLines int
	Synthesis       SynthesisOptions

	// Events, when set, receives one StageCompleted per stage. Sends block
	// until received or the context is done.
	Events chan<- StageCompleted

	// Logger defaults to the process logger
	Logger *log.Logger
	// Metrics may be nil
	Metrics *metrics.Metrics
}

// DefaultOptions returns the stock planner settings
func DefaultOptions() Options {
	return Options{
		MaxBatchSize:    DefaultMaxBatchSize,
		MinContextLines: DefaultMinContextLines,
		MaxContextLines: DefaultMaxContextLines,
		Synthesis:       SynthesisOptions{DefaultSize: domain.SizeM},
	}
}

// Result is the complete output of one decomposition run. Everything but
// RunID is a pure function of the input requirements and options.
type Result struct {
	RunID        string
	Requirements []spec.Requirement
	Tasks        []Task
	Graph        *Graph
	Plan         ExecutionPlan
	Report       AnalysisReport
	SpecDigest   string
}

// Decompose normalizes doc and runs the full pipeline.
func Decompose(ctx context.Context, doc *spec.Document, opts Options) (*Result, error) {
	r := newRun(ctx, opts)
	return r.finish(r.execute(doc, nil))
}

// DecomposeRequirements runs the pipeline on already-normalized requirements.
func DecomposeRequirements(ctx context.Context, reqs []spec.Requirement, opts Options) (*Result, error) {
	r := newRun(ctx, opts)
	return r.finish(r.execute(nil, reqs))
}

type run struct {
	ctx   context.Context
	opts  Options
	id    string
	log   *log.Logger
	start time.Time
	end   func()
}

func newRun(ctx context.Context, opts Options) *run {
	id := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, id)
	ctx, span := telemetry.StartDecompositionSpan(ctx, id)

	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &run{
		ctx:   ctx,
		opts:  opts,
		id:    id,
		log:   logger.WithContext(ctx).With("component", "planner"),
		start: time.Now(),
		end:   func() { span.End() },
	}
}

func (r *run) execute(doc *spec.Document, reqs []spec.Requirement) (*Result, error) {
	res := &Result{RunID: r.id}
	var err error

	if doc != nil {
		err = r.stage(StageNormalize, func() (int, error) {
			reqs, err = spec.Normalize(doc)
			return len(reqs), err
		})
		if err != nil {
			return nil, err
		}
	}
	res.Requirements = reqs

	res.SpecDigest, err = spec.Digest(reqs)
	if err != nil {
		return nil, fmt.Errorf("digest requirements: %w", err)
	}

	var tasks []Task
	if err := r.stage(StageSynthesize, func() (int, error) {
		tasks, err = Synthesize(reqs, r.opts.Synthesis)
		return len(tasks), err
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageGraph, func() (int, error) {
		res.Graph, err = BuildGraph(tasks)
		if err != nil {
			return 0, err
		}
		return len(res.Graph.Edges()), nil
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageCriticalPath, func() (int, error) {
		cp := AnalyzeCriticalPath(res.Graph)
		res.Plan.CriticalPath = cp.Path
		res.Plan.TotalCriticalDurationMinutes = cp.DurationMinutes
		return len(cp.Path), nil
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageBatches, func() (int, error) {
		res.Plan.Batches, err = PlanBatches(res.Graph, r.opts.MaxBatchSize)
		return len(res.Plan.Batches), err
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageContext, func() (int, error) {
		alloc, err := NewContextAllocator(r.opts.MinContextLines, r.opts.MaxContextLines)
		if err != nil {
			return 0, errors.NewConfigInvalidError(err.Error())
		}
		res.Tasks = alloc.Apply(res.Graph.Tasks())
		res.Graph = res.Graph.withTasks(res.Tasks)
		return len(res.Tasks), nil
	}); err != nil {
		return nil, err
	}

	if err := r.stage(StageAnalysis, func() (int, error) {
		res.Report = Analyze(reqs, res.Tasks, res.Plan)
		return len(res.Report.Warnings), nil
	}); err != nil {
		return nil, err
	}

	return res, nil
}

// stage runs fn inside a span and reports its completion.
func (r *run) stage(name Stage, fn func() (int, error)) error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, span := telemetry.StartStageSpan(r.ctx, string(name))
	defer span.End()

	start := time.Now()
	items, err := fn()
	elapsed := time.Since(start)

	r.opts.Metrics.ObserveStage(string(name), elapsed)
	telemetry.RecordStageDuration(ctx, string(name), elapsed)

	if err != nil {
		telemetry.RecordError(span, err)
		r.opts.Metrics.ObserveError(string(errors.CodeOf(err)), string(name))
		return fmt.Errorf("%s: %w", name, err)
	}

	telemetry.RecordSuccess(span, attribute.Int("items", items))
	r.log.DebugContext(ctx, "stage completed",
		"stage", string(name),
		"duration_ms", elapsed.Milliseconds(),
		"items", items,
	)

	if r.opts.Events == nil {
		return nil
	}
	select {
	case r.opts.Events <- StageCompleted{RunID: r.id, Stage: name, Duration: elapsed, Items: items}:
		return nil
	case <-r.ctx.Done():
		return fmt.Errorf("%s: %w", name, r.ctx.Err())
	}
}

func (r *run) finish(res *Result, err error) (*Result, error) {
	defer r.end()
	elapsed := time.Since(r.start)

	telemetry.RecordDecomposition(r.ctx, err == nil)

	if err != nil {
		r.opts.Metrics.ObserveDecomposition(elapsed, nil)
		r.log.LogErrorContext(r.ctx, err)
		return nil, err
	}

	r.opts.Metrics.ObserveDecomposition(elapsed, summarize(res))
	for _, kind := range domain.AllTaskKinds {
		telemetry.RecordTasks(r.ctx, kind.String(), countKind(res.Tasks, kind))
	}

	r.log.InfoContext(r.ctx, "decomposition completed",
		"requirements", len(res.Requirements),
		"tasks", len(res.Tasks),
		"batches", len(res.Plan.Batches),
		"critical_path_minutes", res.Plan.TotalCriticalDurationMinutes,
		"warnings", len(res.Report.Warnings),
		"duration_ms", elapsed.Milliseconds(),
	)
	for _, w := range res.Report.Warnings {
		r.log.WarnContext(r.ctx, w.Message, "warning", string(w.Code), "subject", w.Subject)
	}

	return res, nil
}

func summarize(res *Result) *metrics.Decomposition {
	s := &metrics.Decomposition{
		Requirements:        len(res.Requirements),
		TasksByKind:         make(map[string]int),
		LowConfidenceByKind: make(map[string]int),
		Batches:             len(res.Plan.Batches),
		CriticalPathMinutes: res.Plan.TotalCriticalDurationMinutes,
	}
	for _, t := range res.Tasks {
		s.TasksByKind[t.Kind.String()]++
		if t.Confidence.IsLow() {
			s.LowConfidenceByKind[t.Kind.String()]++
		}
	}
	for _, w := range res.Report.Warnings {
		s.Warnings = append(s.Warnings, string(w.Code))
	}
	return s
}

func countKind(tasks []Task, kind domain.TaskKind) int {
	n := 0
	for _, t := range tasks {
		if t.Kind == kind {
			n++
		}
	}
	return n
}
