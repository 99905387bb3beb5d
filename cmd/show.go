package cmd

import (
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <snapshot-id>",
	Short: "Print one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text|toon")
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseSnapshotID(args[0])
	if err != nil {
		return err
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
	file, err := st.GetFileByID(snap.FileID)
	if err != nil {
		return fmt.Errorf("failed to load owning file: %w", err)
	}

	if showFormat == "toon" {
		output, err := gotoon.Encode(snap)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Snapshot %d\n", snap.ID)
	fmt.Printf("  File:    %s\n", file.Path)
	fmt.Printf("  Version: %d\n", snap.Version)
	fmt.Printf("  Created: %s\n", snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if snap.Label != "" {
		fmt.Printf("  Label:   %s\n", snap.Label)
	}
	fmt.Printf("\n%s\n", snap.Content)
	return nil
}
