package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/xxh3"

	"github.com/snaphist/snaphist/internal/models"
)

// DefaultListLimit bounds ListSnapshots when the caller passes no limit.
const DefaultListLimit = 10

// Store is the snapshot repository backed by a SQLite database.
//
// All mutations run inside a transaction and behind a single writer lock, so
// read-modify-write sequences (version assignment, current-pointer updates)
// never interleave. The store is the only component that touches persisted
// state; everything else goes through its methods.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the database at dbPath and ensures the schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		current_snapshot_id INTEGER
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		version INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		UNIQUE(file_id, version),
		FOREIGN KEY(file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	CREATE TABLE IF NOT EXISTS commit_cursors (
		repo_path TEXT PRIMARY KEY,
		commit_hash TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ContentHash returns the fingerprint stored alongside snapshot content.
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(content))
}

// CreateFile registers a new tracked path. Returns ErrDuplicateKey if the
// path already exists; callers treat that as get-existing.
func (s *Store) CreateFile(path string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int64
	err := s.db.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("path %s: %w", path, ErrDuplicateKey)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check path: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO files (path) VALUES (?)`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new file id: %w", err)
	}
	return &models.File{ID: id, Path: path}, nil
}

// GetFile looks a file up by its workspace path.
func (s *Store) GetFile(path string) (*models.File, error) {
	return s.scanFile(s.db.QueryRow(
		`SELECT id, path, current_snapshot_id FROM files WHERE path = ?`, path))
}

// GetFileByID looks a file up by id.
func (s *Store) GetFileByID(id int64) (*models.File, error) {
	return s.scanFile(s.db.QueryRow(
		`SELECT id, path, current_snapshot_id FROM files WHERE id = ?`, id))
}

func (s *Store) scanFile(row *sql.Row) (*models.File, error) {
	var f models.File
	var current sql.NullInt64
	if err := row.Scan(&f.ID, &f.Path, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file record: %w", err)
	}
	if current.Valid {
		f.CurrentSnapshotID = &current.Int64
	}
	return &f, nil
}

// ListFiles returns every tracked file ordered by path.
func (s *Store) ListFiles() ([]*models.File, error) {
	rows, err := s.db.Query(`SELECT id, path, current_snapshot_id FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		var f models.File
		var current sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Path, &current); err != nil {
			return nil, fmt.Errorf("failed to read file record: %w", err)
		}
		if current.Valid {
			f.CurrentSnapshotID = &current.Int64
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// CreateSnapshot persists a new content state for fileID and moves the file's
// current pointer to it. Version assignment and the pointer update commit as
// one transaction.
func (s *Store) CreateSnapshot(fileID int64, content string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRow(`SELECT id FROM files WHERE id = ?`, fileID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %d: %w", fileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check file: %w", err)
	}

	var version int64
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE file_id = ?`,
		fileID).Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to compute next version: %w", err)
	}

	snap := &models.Snapshot{
		FileID:      fileID,
		Content:     content,
		ContentHash: ContentHash(content),
		CreatedAt:   time.Now().UTC(),
		Version:     version,
	}
	res, err := tx.Exec(
		`INSERT INTO snapshots (file_id, content, content_hash, created_at, version, label)
		 VALUES (?, ?, ?, ?, ?, '')`,
		snap.FileID, snap.Content, snap.ContentHash, snap.CreatedAt, snap.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	snap.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new snapshot id: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE files SET current_snapshot_id = ? WHERE id = ?`, snap.ID, fileID); err != nil {
		return nil, fmt.Errorf("failed to update current pointer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap, nil
}

const snapshotColumns = `id, file_id, content, content_hash, created_at, version, label`

// GetSnapshot returns one snapshot by id.
func (s *Store) GetSnapshot(id int64) (*models.Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id))
}

// LatestSnapshot returns the newest surviving snapshot of a file, or
// ErrNotFound when the file has none.
func (s *Store) LatestSnapshot(fileID int64) (*models.Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE file_id = ? ORDER BY version DESC LIMIT 1`,
		fileID))
}

func (s *Store) scanSnapshot(row *sql.Row) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := row.Scan(&snap.ID, &snap.FileID, &snap.Content, &snap.ContentHash,
		&snap.CreatedAt, &snap.Version, &snap.Label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return &snap, nil
}

// ListSnapshots returns up to limit snapshots of a file, newest first.
// A non-positive limit falls back to DefaultListLimit.
func (s *Store) ListSnapshots(fileID int64, limit int) ([]*models.Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(
		`SELECT `+snapshotColumns+` FROM snapshots WHERE file_id = ? ORDER BY version DESC LIMIT ?`,
		fileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(&snap.ID, &snap.FileID, &snap.Content, &snap.ContentHash,
			&snap.CreatedAt, &snap.Version, &snap.Label); err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// SnapshotCount returns how many snapshots a file currently has.
func (s *Store) SnapshotCount(fileID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE file_id = ?`, fileID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// DeleteSnapshot removes one snapshot. Siblings keep their version numbers.
// If the deleted snapshot was the file's current one, the pointer moves to
// the next most recent survivor, or to none.
func (s *Store) DeleteSnapshot(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fileID int64
	if err := tx.QueryRow(`SELECT file_id FROM snapshots WHERE id = ?`, id).Scan(&fileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	var current sql.NullInt64
	if err := tx.QueryRow(
		`SELECT current_snapshot_id FROM files WHERE id = ?`, fileID).Scan(&current); err != nil {
		return fmt.Errorf("failed to read current pointer: %w", err)
	}
	if current.Valid && current.Int64 == id {
		var next sql.NullInt64
		if err := tx.QueryRow(
			`SELECT id FROM snapshots WHERE file_id = ? ORDER BY version DESC LIMIT 1`,
			fileID).Scan(&next); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to find replacement snapshot: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE files SET current_snapshot_id = ? WHERE id = ?`, next, fileID); err != nil {
			return fmt.Errorf("failed to update current pointer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}
	return nil
}

// DeleteOtherSnapshots removes every snapshot of a file except keepID and
// points the file's current pointer at the survivor. Returns the number of
// snapshots removed.
func (s *Store) DeleteOtherSnapshots(fileID, keepID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`DELETE FROM snapshots WHERE file_id = ? AND id != ?`, fileID, keepID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deletions: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE files SET current_snapshot_id = ? WHERE id = ?`, keepID, fileID); err != nil {
		return 0, fmt.Errorf("failed to update current pointer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return int(removed), nil
}

// DeleteSnapshotsForFile removes every snapshot of a file and clears its
// current pointer. The file record itself stays.
func (s *Store) DeleteSnapshotsForFile(fileID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM snapshots WHERE file_id = ?`, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deletions: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE files SET current_snapshot_id = NULL WHERE id = ?`, fileID); err != nil {
		return 0, fmt.Errorf("failed to clear current pointer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return int(removed), nil
}

// UpdateSnapshotContentAndLabel rewrites a snapshot in place. Only the commit
// reconciler calls this, and only against a file's most recent snapshot.
func (s *Store) UpdateSnapshotContentAndLabel(id int64, content, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE snapshots SET content = ?, content_hash = ?, label = ? WHERE id = ?`,
		content, ContentHash(content), label, id)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	return nil
}

// CommitCursor returns the last reconciled commit hash for a repository, or
// ErrNotFound if the repository has never been reconciled.
func (s *Store) CommitCursor(repoPath string) (string, error) {
	var hash string
	if err := s.db.QueryRow(
		`SELECT commit_hash FROM commit_cursors WHERE repo_path = ?`, repoPath).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read commit cursor: %w", err)
	}
	return hash, nil
}

// SetCommitCursor upserts the last reconciled commit hash for a repository.
func (s *Store) SetCommitCursor(repoPath, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO commit_cursors (repo_path, commit_hash, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(repo_path) DO UPDATE SET commit_hash=excluded.commit_hash, updated_at=excluded.updated_at`,
		repoPath, hash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set commit cursor: %w", err)
	}
	return nil
}
