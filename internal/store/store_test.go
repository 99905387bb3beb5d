package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateFile(t *testing.T) {
	s := newTestStore(t)

	f, err := s.CreateFile("a.txt")
	if err != nil {
		t.Fatalf("CreateFile() error: %v", err)
	}
	if f.Path != "a.txt" {
		t.Errorf("Path = %s, want a.txt", f.Path)
	}
	if f.CurrentSnapshotID != nil {
		t.Error("new file should have no current snapshot")
	}

	if _, err := s.CreateFile("a.txt"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate CreateFile() error = %v, want ErrDuplicateKey", err)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetFile("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFile() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetFileByID(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFileByID() error = %v, want ErrNotFound", err)
	}
}

func TestCreateSnapshot_VersionNumbering(t *testing.T) {
	s := newTestStore(t)

	f, err := s.CreateFile("a.txt")
	if err != nil {
		t.Fatal(err)
	}

	contents := []string{"one", "two", "three"}
	var lastID int64
	for i, c := range contents {
		snap, err := s.CreateSnapshot(f.ID, c)
		if err != nil {
			t.Fatalf("CreateSnapshot(%d) error: %v", i, err)
		}
		if snap.Version != int64(i+1) {
			t.Errorf("snapshot %d version = %d, want %d", i, snap.Version, i+1)
		}
		lastID = snap.ID
	}

	got, err := s.GetFile("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentSnapshotID == nil || *got.CurrentSnapshotID != lastID {
		t.Errorf("current pointer = %v, want %d", got.CurrentSnapshotID, lastID)
	}
}

func TestCreateSnapshot_UnknownFile(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateSnapshot(99, "content"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestListSnapshots_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	for _, c := range []string{"v1", "v2", "v3"} {
		if _, err := s.CreateSnapshot(f.ID, c); err != nil {
			t.Fatal(err)
		}
	}

	snaps, err := s.ListSnapshots(f.ID, 0)
	if err != nil {
		t.Fatalf("ListSnapshots() error: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	for i, want := range []int64{3, 2, 1} {
		if snaps[i].Version != want {
			t.Errorf("snaps[%d].Version = %d, want %d", i, snaps[i].Version, want)
		}
	}

	limited, err := s.ListSnapshots(f.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d snapshots with limit 2, want 2", len(limited))
	}
}

func TestDeleteSnapshot_NonCurrent(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	first, _ := s.CreateSnapshot(f.ID, "v1")
	second, _ := s.CreateSnapshot(f.ID, "v2")

	if err := s.DeleteSnapshot(first.ID); err != nil {
		t.Fatalf("DeleteSnapshot() error: %v", err)
	}

	got, _ := s.GetFile("a.txt")
	if got.CurrentSnapshotID == nil || *got.CurrentSnapshotID != second.ID {
		t.Errorf("current pointer changed, got %v want %d", got.CurrentSnapshotID, second.ID)
	}

	// No renumbering: the survivor keeps version 2.
	snap, err := s.GetSnapshot(second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 2 {
		t.Errorf("surviving version = %d, want 2", snap.Version)
	}
}

func TestDeleteSnapshot_Current(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	first, _ := s.CreateSnapshot(f.ID, "v1")
	second, _ := s.CreateSnapshot(f.ID, "v2")

	if err := s.DeleteSnapshot(second.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetFile("a.txt")
	if got.CurrentSnapshotID == nil || *got.CurrentSnapshotID != first.ID {
		t.Errorf("current pointer = %v, want %d", got.CurrentSnapshotID, first.ID)
	}
}

func TestDeleteSnapshot_LastOne(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	only, _ := s.CreateSnapshot(f.ID, "v1")

	if err := s.DeleteSnapshot(only.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetFile("a.txt")
	if got.CurrentSnapshotID != nil {
		t.Errorf("current pointer = %v, want nil", got.CurrentSnapshotID)
	}
}

func TestDeleteSnapshot_NotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteSnapshot(123); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSnapshot() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteOtherSnapshots(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	s.CreateSnapshot(f.ID, "v1")
	s.CreateSnapshot(f.ID, "v2")
	keep, _ := s.CreateSnapshot(f.ID, "v3")

	removed, err := s.DeleteOtherSnapshots(f.ID, keep.ID)
	if err != nil {
		t.Fatalf("DeleteOtherSnapshots() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, _ := s.SnapshotCount(f.ID)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	got, _ := s.GetFile("a.txt")
	if got.CurrentSnapshotID == nil || *got.CurrentSnapshotID != keep.ID {
		t.Errorf("current pointer = %v, want %d", got.CurrentSnapshotID, keep.ID)
	}
}

func TestDeleteSnapshotsForFile(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	s.CreateSnapshot(f.ID, "v1")
	s.CreateSnapshot(f.ID, "v2")

	removed, err := s.DeleteSnapshotsForFile(f.ID)
	if err != nil {
		t.Fatalf("DeleteSnapshotsForFile() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// The file record remains as an empty history entry.
	got, err := s.GetFile("a.txt")
	if err != nil {
		t.Fatalf("file record should survive: %v", err)
	}
	if got.CurrentSnapshotID != nil {
		t.Errorf("current pointer = %v, want nil", got.CurrentSnapshotID)
	}
}

func TestUpdateSnapshotContentAndLabel(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	snap, _ := s.CreateSnapshot(f.ID, "original")

	if err := s.UpdateSnapshotContentAndLabel(snap.ID, "rewritten", "fix bug"); err != nil {
		t.Fatalf("UpdateSnapshotContentAndLabel() error: %v", err)
	}

	got, err := s.GetSnapshot(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "rewritten" {
		t.Errorf("Content = %q, want %q", got.Content, "rewritten")
	}
	if got.Label != "fix bug" {
		t.Errorf("Label = %q, want %q", got.Label, "fix bug")
	}
	if got.ContentHash != ContentHash("rewritten") {
		t.Errorf("ContentHash not refreshed")
	}
	if got.Version != snap.Version {
		t.Errorf("Version changed from %d to %d", snap.Version, got.Version)
	}

	if err := s.UpdateSnapshotContentAndLabel(999, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of missing snapshot error = %v, want ErrNotFound", err)
	}
}

func TestCommitCursor(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CommitCursor("/repo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CommitCursor() error = %v, want ErrNotFound", err)
	}

	if err := s.SetCommitCursor("/repo", "aaa111"); err != nil {
		t.Fatalf("SetCommitCursor() error: %v", err)
	}
	hash, err := s.CommitCursor("/repo")
	if err != nil {
		t.Fatal(err)
	}
	if hash != "aaa111" {
		t.Errorf("hash = %s, want aaa111", hash)
	}

	// Upsert overwrites.
	if err := s.SetCommitCursor("/repo", "bbb222"); err != nil {
		t.Fatal(err)
	}
	hash, _ = s.CommitCursor("/repo")
	if hash != "bbb222" {
		t.Errorf("hash = %s, want bbb222", hash)
	}
}

func TestVersionNumbering_GapAfterDeletion(t *testing.T) {
	s := newTestStore(t)

	f, _ := s.CreateFile("a.txt")
	s.CreateSnapshot(f.ID, "v1")
	middle, _ := s.CreateSnapshot(f.ID, "v2")
	s.CreateSnapshot(f.ID, "v3")

	if err := s.DeleteSnapshot(middle.ID); err != nil {
		t.Fatal(err)
	}

	// The next snapshot continues after the highest surviving version.
	snap, err := s.CreateSnapshot(f.ID, "v4")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Version != 4 {
		t.Errorf("version = %d, want 4", snap.Version)
	}
}
