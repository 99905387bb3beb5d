package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/snaphist/snaphist/internal/models"
	"github.com/snaphist/snaphist/internal/policy"
	"github.com/snaphist/snaphist/internal/store"
)

// SaveEvent is one save notification from a file-change source: a workspace
// relative path and the file's full content at save time.
type SaveEvent struct {
	Path    string
	Content string
}

// Manager orchestrates snapshot lifecycle operations on behalf of callers.
// Admission and creation for a file never overlap with a bulk operation
// touching it; producers feed SaveEvents through a single inbound queue.
type Manager struct {
	store    *store.Store
	admitter *policy.Admitter
	log      *logrus.Logger

	mu     sync.Mutex
	events chan SaveEvent
}

// New creates a manager around a store and an admission policy.
func New(st *store.Store, admitter *policy.Admitter, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		store:    st,
		admitter: admitter,
		log:      log,
		events:   make(chan SaveEvent, 64),
	}
}

// Events is the inbound save queue. Watchers and other event sources push
// into it; Run drains it.
func (m *Manager) Events() chan<- SaveEvent {
	return m.events
}

// Run consumes the save queue until ctx is cancelled. Admission failures are
// logged, never fatal.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			if _, _, err := m.SaveCurrent(ev.Path, ev.Content); err != nil {
				m.log.WithError(err).WithField("path", ev.Path).Error("failed to save snapshot")
			}
		}
	}
}

// SaveCurrent runs the admission policy for (path, content) and persists a
// snapshot when it admits. The bool reports whether a snapshot was created.
// Saving identical content twice creates exactly one snapshot.
func (m *Manager) SaveCurrent(path, content string) (*models.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := m.store.GetFile(path)
	if errors.Is(err, store.ErrNotFound) {
		file, err = m.store.CreateFile(path)
		if errors.Is(err, store.ErrDuplicateKey) {
			file, err = m.store.GetFile(path)
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve file %s: %w", path, err)
	}

	var prev *string
	latest, err := m.store.LatestSnapshot(file.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	if latest != nil {
		prev = &latest.Content
	}

	if !m.admitter.Admit(prev, content) {
		return nil, false, nil
	}

	snap, err := m.store.CreateSnapshot(file.ID, content)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// QuickClean deletes all but the most recent snapshot of every file that has
// more than one. Per-file failures are collected; the sweep keeps going.
// Returns the number of snapshots removed.
func (m *Manager) QuickClean() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := m.store.ListFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, f := range files {
		if f.CurrentSnapshotID == nil {
			continue
		}
		count, err := m.store.SnapshotCount(f.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		if count <= 1 {
			continue
		}
		n, err := m.store.DeleteOtherSnapshots(f.ID, *f.CurrentSnapshotID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		removed += n
	}
	return removed, errors.Join(errs...)
}

// ClearAll deletes every snapshot of every file. File records remain as empty
// history entries. Returns the number of snapshots removed.
func (m *Manager) ClearAll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := m.store.ListFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, f := range files {
		n, err := m.store.DeleteSnapshotsForFile(f.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, err))
			continue
		}
		removed += n
	}
	return removed, errors.Join(errs...)
}

// DeleteOne removes a single snapshot. No policy check applies.
func (m *Manager) DeleteOne(snapshotID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.DeleteSnapshot(snapshotID)
}
