package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specplan/internal/plan"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

func newValidateCmd(a *app) *cobra.Command {
	var in, planPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a requirements document without writing a plan",
		Long: `Run the full decomposition in memory and report any fatal error: malformed
requirements, out-of-range confidence, oversized work, dependency cycles,
dangling references or conflicting resource ownership.

With --plan, also check that a saved plan file is well formed and was built
from the current requirements.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.command("validate", func(ctx context.Context, cmd *cobra.Command) error {
		doc, err := spec.LoadDocument(in)
		if err != nil {
			return err
		}

		res, _, err := decompose(ctx, doc, a.planOptions())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, styles.Success.Render("✓ "+in+" is valid")+
			fmt.Sprintf(": %d requirements, %d tasks, %d batches",
				len(res.Requirements), len(res.Tasks), len(res.Plan.Batches)))
		for _, w := range res.Report.Warnings {
			fmt.Fprintln(out, styles.Warning.Render("  ⚠ "+string(w.Code))+" "+w.Message)
		}

		if planPath == "" {
			return nil
		}
		f, err := plan.LoadFile(planPath)
		if err != nil {
			return err
		}
		if err := f.CheckFreshness(res.Requirements); err != nil {
			return err
		}
		fmt.Fprintln(out, styles.Success.Render("✓ "+planPath+" is up to date"))
		return nil
	})

	cmd.Flags().StringVar(&in, "in", "spec.yaml", "requirements document (YAML or JSON)")
	cmd.Flags().StringVar(&planPath, "plan", "", "saved plan to check against the document")
	return cmd
}
