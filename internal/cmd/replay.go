package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/journal"
	"github.com/felixgeelhaar/specplan/internal/lifecycle"
	"github.com/felixgeelhaar/specplan/internal/plan"
)

// Event is one entry of a replay file. Action is a target state name or
// one of start, pause, resume, resolve.
type Event struct {
	Task   string `yaml:"task"`
	Action string `yaml:"action"`
}

type replayFlags struct {
	planPath   string
	eventsPath string
	journal    string
	write      bool
	strict     bool
}

func newReplayCmd(a *app) *cobra.Command {
	f := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply task progress events to a saved plan",
		Long: `Feed a YAML list of task events through the lifecycle state machine and
print every resulting change, including dependents blocked by a failure or
released when their dependencies finish, followed by the batches still to run.

Rejected transitions are reported and skipped; use --strict to fail on them.
With --journal, applied and rejected events are appended to a JSON Lines
audit trail.`,
		Example: `  # events.yaml
  - {task: T001, action: start}
  - {task: T001, action: TEST_FAILING}
  - {task: T002, action: FAILED}

  specplan replay --plan plan.json --events events.yaml --write`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.command("replay", func(ctx context.Context, cmd *cobra.Command) error {
		return runReplay(ctx, cmd, a, f)
	})

	cmd.Flags().StringVar(&f.planPath, "plan", "plan.json", "saved plan file")
	cmd.Flags().StringVar(&f.eventsPath, "events", "events.yaml", "YAML list of {task, action} events")
	cmd.Flags().StringVar(&f.journal, "journal", "", "append every change to this JSON Lines journal")
	cmd.Flags().BoolVar(&f.write, "write", false, "store the resulting task states back into the plan file")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on the first rejected event")
	return cmd
}

func runReplay(ctx context.Context, cmd *cobra.Command, a *app, f *replayFlags) error {
	pf, err := plan.LoadFile(f.planPath)
	if err != nil {
		return err
	}
	g, err := pf.Graph()
	if err != nil {
		return err
	}
	events, err := loadEvents(f.eventsPath)
	if err != nil {
		return err
	}

	mgr := lifecycle.NewManager(g, pf.Plan,
		lifecycle.WithMetrics(a.metrics),
		lifecycle.WithLogger(a.logger),
	)

	j, err := journal.Open(journal.Config{Path: f.journal, Enabled: f.journal != ""})
	if err != nil {
		return err
	}
	defer j.Close()
	if err := j.LogSessionStart(f.planPath, len(pf.Tasks)); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, styles.Title.Render("Changes"))

	start := time.Now()
	rejected := 0
	for i, ev := range events {
		changes, err := applyEvent(mgr, ev)
		if err != nil {
			if !isRecoverable(err) || f.strict {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
			rejected++
			a.logger.WarnContext(ctx, "event rejected", "index", i+1, "task", ev.Task, "action", ev.Action, "error", err)
			fmt.Fprintln(w, styles.Error.Render(fmt.Sprintf("  ✗ event %d: %v", i+1, err)))
			if id, parseErr := domain.ParseTaskID(ev.Task); parseErr == nil {
				if logErr := j.LogRejected(id, ev.Action, err); logErr != nil {
					return logErr
				}
			}
			continue
		}
		if err := j.LogChanges(ev.Action, changes); err != nil {
			return err
		}
		renderChanges(w, changes)
	}

	if err := j.LogSessionComplete(len(events)-rejected, rejected, time.Since(start)); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Title.Render("Pending batches"))
	renderBatches(w, mgr.PendingBatches())

	a.logger.InfoContext(ctx, "replay finished", "events", len(events), "rejected", rejected, "session", j.SessionID())

	if f.write {
		pf.Tasks = mgr.Snapshot()
		if err := plan.SaveFile(pf, f.planPath); err != nil {
			return err
		}
	}
	return nil
}

func loadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("events file not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read events file", err)
	}

	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	return events, nil
}

func applyEvent(mgr *lifecycle.Manager, ev Event) ([]lifecycle.Change, error) {
	id, err := domain.ParseTaskID(ev.Task)
	if err != nil {
		return nil, &errors.UnknownTaskError{TaskID: ev.Task}
	}
	return mgr.Apply(id, ev.Action)
}

// isRecoverable reports whether a replay can continue past err.
func isRecoverable(err error) bool {
	var ist *errors.InvalidStateTransition
	var unknown *errors.UnknownTaskError
	return errors.As(err, &ist) || errors.As(err, &unknown)
}
