package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/snaphist/snaphist/internal/history"
)

// Watcher turns filesystem write events under a workspace into SaveEvents on
// the lifecycle manager's inbound queue. The .git directory is always
// ignored, on top of the configured ignore globs.
type Watcher struct {
	workspace string
	ignore    []string
	events    chan<- history.SaveEvent
	log       *logrus.Logger
	fsw       *fsnotify.Watcher
}

// New creates a watcher rooted at workspace.
func New(workspace string, ignore []string, events chan<- history.SaveEvent, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		workspace: workspace,
		ignore:    ignore,
		events:    events,
		log:       log,
		fsw:       fsw,
	}, nil
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run watches the workspace until ctx is cancelled. Watcher errors are
// logged; they never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.workspace); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel, err := filepath.Rel(w.workspace, ev.Name)
	if err != nil || Ignored(rel, w.ignore) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if ev.Op.Has(fsnotify.Create) {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.WithError(err).WithField("path", rel).Warn("failed to watch new directory")
			}
		}
		return
	}

	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return
	}

	content, err := os.ReadFile(ev.Name)
	if err != nil {
		w.log.WithError(err).WithField("path", rel).Warn("failed to read saved file")
		return
	}

	select {
	case w.events <- history.SaveEvent{Path: filepath.ToSlash(rel), Content: string(content)}:
	case <-ctx.Done():
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.workspace, path)
		if err != nil {
			return err
		}
		if rel != "." && Ignored(rel, w.ignore) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Ignored reports whether a workspace-relative path matches the ignore list.
// The .git tree is always ignored; globs match against the path's base name
// and each of its segments.
func Ignored(rel string, ignore []string) bool {
	rel = filepath.ToSlash(rel)
	segments := strings.Split(rel, "/")
	if segments[0] == ".git" {
		return true
	}
	for _, pattern := range ignore {
		for _, seg := range segments {
			if ok, err := filepath.Match(pattern, seg); err == nil && ok {
				return true
			}
		}
	}
	return false
}
