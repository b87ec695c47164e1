package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/lifecycle"
	"github.com/felixgeelhaar/specplan/internal/plan"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// Styles contains lipgloss styles for terminal output
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")), // Blue
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")), // Gray
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")), // Green
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")), // Yellow
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("1")), // Red
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
	}
}

var styles = DefaultStyles()

// renderSummary prints the plan overview: batches, critical path and report.
func renderSummary(w io.Writer, res *plan.Result, stages []plan.StageCompleted) {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Execution Plan") + "\n\n")

	counts := map[domain.TaskKind]int{}
	for _, t := range res.Tasks {
		counts[t.Kind]++
	}
	var kinds []string
	for _, k := range domain.AllTaskKinds {
		if counts[k] > 0 {
			kinds = append(kinds, fmt.Sprintf("%d %s", counts[k], k))
		}
	}
	stats := []string{
		styles.Label.Render("Requirements: ") + fmt.Sprint(len(res.Requirements)),
		styles.Label.Render("Tasks:        ") + fmt.Sprintf("%d (%s)", len(res.Tasks), strings.Join(kinds, ", ")),
		styles.Label.Render("Batches:      ") + fmt.Sprint(len(res.Plan.Batches)),
		styles.Label.Render("Critical path: ") + fmt.Sprintf("%s (%d min)", joinIDs(res.Plan.CriticalPath, " → "), res.Plan.TotalCriticalDurationMinutes),
	}
	b.WriteString(styles.Border.Render(strings.Join(stats, "\n")) + "\n\n")

	byID := make(map[domain.TaskID]plan.Task, len(res.Tasks))
	for _, t := range res.Tasks {
		byID[t.ID] = t
	}
	critical := make(map[domain.TaskID]bool, len(res.Plan.CriticalPath))
	for _, id := range res.Plan.CriticalPath {
		critical[id] = true
	}

	for i, batch := range res.Plan.Batches {
		b.WriteString(styles.Header.Render(fmt.Sprintf("Batch %d", i+1)) + "\n")
		for _, id := range batch {
			b.WriteString("  " + renderTask(byID[id], critical[id]) + "\n")
		}
	}

	if len(res.Report.Warnings) > 0 {
		b.WriteString("\n" + styles.Header.Render("Warnings") + "\n")
		for _, w := range res.Report.Warnings {
			b.WriteString(styles.Warning.Render("  ⚠ "+string(w.Code)) + " " + w.Message + "\n")
		}
	}

	if len(stages) > 0 {
		var parts []string
		for _, s := range stages {
			parts = append(parts, fmt.Sprintf("%s %s", s.Stage, s.Duration.Round(time.Microsecond)))
		}
		b.WriteString("\n" + styles.Muted.Render("stages: "+strings.Join(parts, ", ")) + "\n")
	}

	fmt.Fprint(w, b.String())
}

func renderTask(t plan.Task, critical bool) string {
	marker := " "
	if critical {
		marker = styles.Error.Render("*")
	}
	conf := fmt.Sprintf("%3.0f%%", t.Confidence.Float())
	if t.Confidence.IsLow() {
		conf = styles.Warning.Render(conf)
	}
	return fmt.Sprintf("%s %s %-11s %-2s %s %s %s",
		marker,
		t.ID,
		t.Kind,
		t.SizeCategory,
		conf,
		styles.Label.Render(fmt.Sprintf("ctx=%d", t.ContextSize)),
		t.Title,
	)
}

// renderDrift prints requirement-level differences against a lock.
func renderDrift(w io.Writer, d spec.Drift) {
	section := func(title string, ids []domain.RequirementID, style lipgloss.Style) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintln(w, style.Render(title))
		for _, id := range ids {
			fmt.Fprintf(w, "  - %s\n", id)
		}
	}
	section("Added:", d.Added, styles.Success)
	section("Removed:", d.Removed, styles.Error)
	section("Changed:", d.Changed, styles.Warning)
}

// renderChanges prints lifecycle changes, marking propagated ones.
func renderChanges(w io.Writer, changes []lifecycle.Change) {
	for _, c := range changes {
		line := fmt.Sprintf("%s %s → %s", c.TaskID, c.From, c.To)
		if c.Propagated {
			line = styles.Muted.Render(line + " (propagated)")
		}
		fmt.Fprintln(w, "  "+line)
	}
}

// renderBatches prints batches one per line.
func renderBatches(w io.Writer, batches []plan.Batch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("  nothing left to schedule"))
		return
	}
	for i, b := range batches {
		fmt.Fprintf(w, "  %d: %s\n", i+1, joinIDs(b, " "))
	}
}

func joinIDs(ids []domain.TaskID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, sep)
}
