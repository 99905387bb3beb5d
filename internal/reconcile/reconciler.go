package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snaphist/snaphist/internal/git"
	"github.com/snaphist/snaphist/internal/store"
)

// Inspector is the version-control inspection facility the reconciler reads
// from. internal/git provides the real one; tests substitute a fake.
type Inspector interface {
	Head(dir string) (string, error)
	HasUncommittedChanges(dir string) (bool, error)
	ChangedFiles(dir, from, to string) ([]string, error)
	CommitFiles(dir, hash string) ([]string, error)
	LastCommitMessage(dir string) (string, error)
}

// GitInspector adapts the internal/git exec wrappers to the Inspector
// interface.
type GitInspector struct{}

func (GitInspector) Head(dir string) (string, error) { return git.Head(dir) }
func (GitInspector) HasUncommittedChanges(dir string) (bool, error) {
	return git.HasUncommittedChanges(dir)
}
func (GitInspector) ChangedFiles(dir, from, to string) ([]string, error) {
	return git.ChangedFiles(dir, from, to)
}
func (GitInspector) CommitFiles(dir, hash string) ([]string, error) {
	return git.CommitFiles(dir, hash)
}
func (GitInspector) LastCommitMessage(dir string) (string, error) {
	return git.LastCommitMessage(dir)
}

// Reconciler folds completed git commits back into snapshot history: the
// latest snapshot of every file a commit touched gets the commit message as
// its label, and with auto-cleanup enabled its older snapshots are pruned.
// Files paths in the store are expected to be repo-root relative, matching
// what git reports.
type Reconciler struct {
	store       *store.Store
	inspector   Inspector
	repoPath    string
	autoCleanup bool
	log         *logrus.Logger

	busy atomic.Bool
}

// New creates a reconciler for the repository at repoPath.
func New(st *store.Store, inspector Inspector, repoPath string, autoCleanup bool, log *logrus.Logger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{
		store:       st,
		inspector:   inspector,
		repoPath:    repoPath,
		autoCleanup: autoCleanup,
		log:         log,
	}
}

// Run ticks the reconciler on the given interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				r.log.WithError(err).Warn("reconciliation tick skipped")
			}
		}
	}
}

// Tick runs one reconciliation pass. A tick that finds nothing to do is not
// an error. If the inspector fails, the cursor is left unchanged so the same
// commit range is retried on the next tick. Ticks never overlap: a tick
// arriving while another is still running is dropped.
func (r *Reconciler) Tick() error {
	if !r.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer r.busy.Store(false)

	head, err := r.inspector.Head(r.repoPath)
	if err != nil {
		return fmt.Errorf("failed to inspect repository: %w", err)
	}

	dirty, err := r.inspector.HasUncommittedChanges(r.repoPath)
	if err != nil {
		return fmt.Errorf("failed to inspect repository: %w", err)
	}
	if dirty {
		return nil
	}

	cursor, err := r.store.CommitCursor(r.repoPath)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if cursor == head {
		return nil
	}

	// Resolving: determine the files touched since the cursor.
	var changed []string
	if cursor == "" {
		changed, err = r.inspector.CommitFiles(r.repoPath, head)
	} else {
		changed, err = r.inspector.ChangedFiles(r.repoPath, cursor, head)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve changed files: %w", err)
	}

	message, err := r.inspector.LastCommitMessage(r.repoPath)
	if err != nil {
		return fmt.Errorf("failed to read commit message: %w", err)
	}

	// Applying: label each touched file's latest snapshot; per-file failures
	// are logged and do not stop the pass.
	for _, path := range changed {
		if err := r.applyToFile(path, message); err != nil {
			r.log.WithError(err).WithField("path", path).Warn("failed to reconcile file")
		}
	}

	if err := r.store.SetCommitCursor(r.repoPath, head); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) applyToFile(path, message string) error {
	file, err := r.store.GetFile(path)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	latest, err := r.store.LatestSnapshot(file.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	content := ApplyLabel(StripLabel(latest.Content), message)
	if err := r.store.UpdateSnapshotContentAndLabel(latest.ID, content, message); err != nil {
		return err
	}

	if r.autoCleanup {
		if _, err := r.store.DeleteOtherSnapshots(file.ID, latest.ID); err != nil {
			return err
		}
	}
	return nil
}

var _ Inspector = GitInspector{}
