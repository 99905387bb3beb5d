package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <snapshot-id>",
	Short: "Delete one snapshot",
	Long: `Delete a single snapshot. Sibling snapshots keep their version numbers.
If the deleted snapshot was the file's current one, the next most recent
snapshot becomes current.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseSnapshotID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := newManager(st).DeleteOne(id); err != nil {
		return fmt.Errorf("failed to delete snapshot %d: %w", id, err)
	}

	fmt.Printf("✓ Snapshot %d deleted\n", id)
	return nil
}
