package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snaphist/snaphist/internal/config"
)

var exportAppend bool

var exportCmd = &cobra.Command{
	Use:   "export <snapshot-id> [destination]",
	Short: "Write a snapshot to a file as a readable block",
	Long: `Write a snapshot to a destination as a human-readable block:

  Version from <path>

  <content>

The destination may be a directory (a default filename is appended) or a
file. Without a destination argument the configured export.destination is
used. With --append the block is appended instead of replacing the file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append to the destination instead of overwriting")
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := parseSnapshotID(args[0])
	if err != nil {
		return err
	}

	dest := config.GetExportDestination()
	if len(args) > 1 {
		dest = args[1]
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.GetSnapshot(id)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %d: %w", id, err)
	}

	m := newManager(st)
	var target string
	if exportAppend {
		target, err = m.AppendSnapshot(snap, dest)
	} else {
		target, err = m.ExportSnapshot(snap, dest)
	}
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}

	fmt.Printf("✓ Snapshot %d written to %s\n", id, target)
	return nil
}
