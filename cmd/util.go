package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/snaphist/snaphist/internal/config"
	"github.com/snaphist/snaphist/internal/history"
	"github.com/snaphist/snaphist/internal/store"
)

// openStore opens the configured snapshot database
func openStore() (*store.Store, error) {
	st, err := store.Open(config.GetStoragePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return st, nil
}

// newManager builds a lifecycle manager around an open store
func newManager(st *store.Store) *history.Manager {
	return history.New(st, config.NewAdmitter(), nil)
}

// parseSnapshotID parses a snapshot id argument
func parseSnapshotID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot id %q", arg)
	}
	return id, nil
}

// workspaceDir returns the directory snapshots are keyed against
func workspaceDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return dir, nil
}
