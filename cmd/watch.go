package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snaphist/snaphist/internal/config"
	"github.com/snaphist/snaphist/internal/git"
	"github.com/snaphist/snaphist/internal/reconcile"
	"github.com/snaphist/snaphist/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and snapshot saves automatically",
	Long: `Watch the current directory for file saves, feeding each one through the
admission policy. When the workspace is a git repository, a reconciler runs
alongside on reconcile.interval_seconds, folding completed commits into the
snapshot history.

Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	workspace, err := workspaceDir()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log := logrus.StandardLogger()
	manager := newManager(st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.New(workspace, config.GetWatchIgnore(), manager.Events(), log)
	if err != nil {
		return err
	}
	defer watcher.Close()

	go manager.Run(ctx)

	if git.IsRepo(workspace) {
		r := reconcile.New(st, reconcile.GitInspector{}, workspace, config.GetAutoCleanup(), log)
		go r.Run(ctx, config.GetReconcileInterval())
	} else {
		log.Info("not a git repository, commit reconciliation disabled")
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", workspace)
	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watcher failed: %w", err)
	}
	return nil
}
