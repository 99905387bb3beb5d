package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a snapshot of a file's current content",
	Long: `Run the admission policy against a file's current on-disk content and
persist a snapshot when the change is significant enough.

Identical content never creates a snapshot, so re-running save is harmless.

Example:
  snaphist save main.go`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	path := filepath.ToSlash(filepath.Clean(args[0]))

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, admitted, err := newManager(st).SaveCurrent(path, string(content))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if !admitted {
		fmt.Printf("No snapshot created for %s (change below admission threshold)\n", path)
		return nil
	}

	fmt.Printf("✓ Snapshot %d created: %s v%d\n", snap.ID, path, snap.Version)
	return nil
}
