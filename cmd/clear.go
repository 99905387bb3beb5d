package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every snapshot of every file",
	Long: `Delete all snapshot history. Tracked file entries remain, with empty
histories. This cannot be undone; pass --force to confirm.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolVar(&clearForce, "force", false, "Actually delete all snapshots")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Println("This would delete all snapshot history. Re-run with --force to confirm.")
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := newManager(st).ClearAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: some files could not be cleared: %v\n", err)
	}

	fmt.Printf("✓ Removed %d snapshot(s)\n", removed)
	return nil
}
