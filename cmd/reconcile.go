package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snaphist/snaphist/internal/config"
	"github.com/snaphist/snaphist/internal/git"
	"github.com/snaphist/snaphist/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fold the latest git commit into snapshot history",
	Long: `Run one reconciliation pass against the repository in the current
directory. If a new commit has completed since the last pass, the latest
snapshot of every file the commit touched is labeled with the commit
message; with reconcile.auto_cleanup enabled, older snapshots of those
files are pruned.

A dirty working tree or index skips the pass.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	workspace, err := workspaceDir()
	if err != nil {
		return err
	}
	if !git.IsRepo(workspace) {
		return fmt.Errorf("not a git repository")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	r := reconcile.New(st, reconcile.GitInspector{}, workspace, config.GetAutoCleanup(), logrus.StandardLogger())
	if err := r.Tick(); err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Println("✓ Reconciliation pass complete")
	return nil
}
