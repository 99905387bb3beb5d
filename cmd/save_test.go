package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// setupWorkspace points the CLI at a fresh database and working directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	viper.Set("storage.path", filepath.Join(dir, "history.db"))
	viper.Set("admission.mode", "always")
	t.Cleanup(viper.Reset)

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })

	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSaveCreatesSnapshot(t *testing.T) {
	dir := setupWorkspace(t)
	writeFile(t, dir, "main.go", "package main\n")

	if err := runSave(nil, []string{"main.go"}); err != nil {
		t.Fatalf("save command failed: %v", err)
	}

	st, err := openStore()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	file, err := st.GetFile("main.go")
	if err != nil {
		t.Fatalf("file not tracked: %v", err)
	}
	count, _ := st.SnapshotCount(file.ID)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSaveTwiceSameContent(t *testing.T) {
	dir := setupWorkspace(t)
	writeFile(t, dir, "a.txt", "unchanged content\n")

	if err := runSave(nil, []string{"a.txt"}); err != nil {
		t.Fatal(err)
	}
	if err := runSave(nil, []string{"a.txt"}); err != nil {
		t.Fatal(err)
	}

	st, err := openStore()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	file, err := st.GetFile("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	count, _ := st.SnapshotCount(file.ID)
	if count != 1 {
		t.Errorf("count = %d, want 1 (identical save must not stack)", count)
	}
}

func TestSaveMissingFile(t *testing.T) {
	setupWorkspace(t)

	if err := runSave(nil, []string{"does-not-exist.txt"}); err == nil {
		t.Error("save of a missing file should fail")
	}
}

func TestSaveSignificantModeRejectsSmallFile(t *testing.T) {
	dir := setupWorkspace(t)
	viper.Set("admission.mode", "significant")
	writeFile(t, dir, "one.txt", "one line only")

	if err := runSave(nil, []string{"one.txt"}); err != nil {
		t.Fatal(err)
	}

	st, err := openStore()
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	file, err := st.GetFile("one.txt")
	if err != nil {
		t.Fatal(err)
	}
	count, _ := st.SnapshotCount(file.ID)
	if count != 0 {
		t.Errorf("count = %d, want 0 (below admission bar)", count)
	}
}

func seedSnapshots(t *testing.T, dir string, path string, contents ...string) {
	t.Helper()
	for _, c := range contents {
		writeFile(t, dir, path, c)
		if err := runSave(nil, []string{path}); err != nil {
			t.Fatal(err)
		}
	}
}
