package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/spec"
	"github.com/felixgeelhaar/specplan/internal/version"
)

func newLockCmd(a *app) *cobra.Command {
	var in, out string
	var check bool

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Fingerprint the requirements of a document",
		Long: `Write a lock file holding a canonical hash of every normalized requirement
plus a digest of the whole set.

With --check, compare the document against an existing lock instead and
fail when any requirement was added, removed, changed or reordered.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.command("lock", func(ctx context.Context, cmd *cobra.Command) error {
		doc, err := spec.LoadDocument(in)
		if err != nil {
			return err
		}
		reqs, err := spec.Normalize(doc)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if check {
			return checkLock(ctx, a, w, reqs, out)
		}

		lock, err := spec.NewLock(reqs, version.GetInfo().Short())
		if err != nil {
			return err
		}
		if err := spec.SaveLock(lock, out); err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "lock written", "path", out, "requirements", len(reqs))
		fmt.Fprintln(w, styles.Success.Render("✓ locked "+fmt.Sprint(len(reqs))+" requirements")+" → "+out)
		return nil
	})

	cmd.Flags().StringVar(&in, "in", "spec.yaml", "requirements document (YAML or JSON)")
	cmd.Flags().StringVar(&out, "out", "spec.lock.json", "lock file")
	cmd.Flags().BoolVar(&check, "check", false, "verify the document against the lock instead of writing it")
	return cmd
}

func checkLock(ctx context.Context, a *app, w io.Writer, reqs []spec.Requirement, path string) error {
	lock, err := spec.LoadLock(path)
	if err != nil {
		return err
	}

	drift, err := lock.Compare(reqs)
	if err != nil {
		return err
	}
	digest, err := spec.Digest(reqs)
	if err != nil {
		return err
	}

	if drift.IsEmpty() && digest == lock.Digest {
		fmt.Fprintln(w, styles.Success.Render("✓ requirements match "+path))
		return nil
	}

	renderDrift(w, drift)
	a.logger.WarnContext(ctx, "requirements drifted from lock",
		"added", len(drift.Added),
		"removed", len(drift.Removed),
		"changed", len(drift.Changed),
	)
	msg := "requirements differ from the lock"
	if drift.IsEmpty() {
		msg = "requirements were reordered since the lock was written"
	}
	return errors.New(errors.ErrCodeSpecLockMismatch, msg).
		WithSuggestion("Re-run 'specplan lock' once the changes are intended")
}
