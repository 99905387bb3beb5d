package history

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snaphist/snaphist/internal/models"
)

// DefaultExportFilename is appended when the export destination is a directory.
const DefaultExportFilename = "snapshot.txt"

// ExportBlock renders the human-readable block written by export and append.
func ExportBlock(path, content string) string {
	return fmt.Sprintf("Version from %s\n\n%s", path, content)
}

// ExportSnapshot writes a snapshot's block to dest, replacing whatever was
// there. Returns the resolved destination path.
func (m *Manager) ExportSnapshot(snap *models.Snapshot, dest string) (string, error) {
	return m.writeSnapshot(snap, dest, false)
}

// AppendSnapshot appends a snapshot's block to dest, creating it if needed.
// Returns the resolved destination path.
func (m *Manager) AppendSnapshot(snap *models.Snapshot, dest string) (string, error) {
	return m.writeSnapshot(snap, dest, true)
}

func (m *Manager) writeSnapshot(snap *models.Snapshot, dest string, appendTo bool) (string, error) {
	file, err := m.store.GetFileByID(snap.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve snapshot owner: %w", err)
	}

	target, err := resolveDestination(dest)
	if err != nil {
		return "", err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	out, err := os.OpenFile(target, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open destination: %w", err)
	}
	defer out.Close()

	if _, err := out.WriteString(ExportBlock(file.Path, snap.Content)); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return target, nil
}

// resolveDestination maps a configured destination onto a concrete file path:
// directories get the default filename appended, anything else is taken as a
// file path whose parent directory is created on demand.
func resolveDestination(dest string) (string, error) {
	info, err := os.Stat(dest)
	if err == nil && info.IsDir() {
		return filepath.Join(dest, DefaultExportFilename), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}
	return dest, nil
}
