package models

import "time"

// File is a tracked workspace file and the root of its snapshot history.
// CurrentSnapshotID points at the most recently created surviving snapshot,
// or is nil when the file has no snapshots left.
type File struct {
	ID                int64  `json:"id"`
	Path              string `json:"path"`
	CurrentSnapshotID *int64 `json:"current_snapshot_id,omitempty"`
}

// Snapshot is one captured content state of a file.
// Version numbers are per-file, starting at 1 and increasing by 1 in creation
// order; deleting an intermediate snapshot leaves a gap and never renumbers.
type Snapshot struct {
	ID          int64     `json:"id"`
	FileID      int64     `json:"file_id"`
	Content     string    `json:"content"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	Version     int64     `json:"version"`
	Label       string    `json:"label,omitempty"`
}

// CommitCursor records the last git commit hash reconciled for a repository.
type CommitCursor struct {
	RepoPath   string    `json:"repo_path"`
	CommitHash string    `json:"commit_hash"`
	UpdatedAt  time.Time `json:"updated_at"`
}
