package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Keep only the latest snapshot of every file",
	Long: `Delete all but the single most recent snapshot for every file that has
more than one. Files with zero or one snapshot are untouched.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := newManager(st).QuickClean()
	if err != nil {
		// Partial success: report what failed, keep what succeeded.
		fmt.Fprintf(os.Stderr, "Warning: some files could not be cleaned: %v\n", err)
	}

	fmt.Printf("✓ Removed %d snapshot(s)\n", removed)
	return nil
}
