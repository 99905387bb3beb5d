package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/snaphist/snaphist/internal/config"
	"github.com/snaphist/snaphist/internal/models"
)

var (
	listLimit  int
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List tracked files, or the snapshots of one file",
	Long: `Without an argument, list every tracked file with its snapshot count.
With a file argument, list that file's snapshots newest first.

Examples:
  snaphist list
  snaphist list main.go
  snaphist list main.go --limit 25 --format toon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum snapshots to show (default from config)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text|toon")
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		files, err := st.ListFiles()
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		if len(files) == 0 {
			fmt.Println("No files tracked")
			return nil
		}

		type fileRow struct {
			ID        int64  `json:"id"`
			Path      string `json:"path"`
			Snapshots int    `json:"snapshots"`
		}
		rows := make([]fileRow, 0, len(files))
		for _, f := range files {
			count, err := st.SnapshotCount(f.ID)
			if err != nil {
				return fmt.Errorf("failed to count snapshots: %w", err)
			}
			rows = append(rows, fileRow{ID: f.ID, Path: f.Path, Snapshots: count})
		}

		if listFormat == "toon" {
			output, err := gotoon.Encode(rows)
			if err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
			fmt.Println(output)
			return nil
		}

		fmt.Printf("Tracking %d file(s):\n\n", len(rows))
		for _, row := range rows {
			fmt.Printf("  %-4d %s (%d snapshot(s))\n", row.ID, row.Path, row.Snapshots)
		}
		return nil
	}

	path := filepath.ToSlash(filepath.Clean(args[0]))
	file, err := st.GetFile(path)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", path, err)
	}

	limit := listLimit
	if limit <= 0 {
		limit = config.GetListLimit()
	}
	snaps, err := st.ListSnapshots(file.ID, limit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Printf("No snapshots for %s\n", path)
		return nil
	}

	if listFormat == "toon" {
		output, err := gotoon.Encode(snaps)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("%s — %d snapshot(s):\n\n", path, len(snaps))
	for _, s := range snaps {
		printSnapshotLine(s, file)
	}
	return nil
}

func printSnapshotLine(s *models.Snapshot, file *models.File) {
	marker := " "
	if file.CurrentSnapshotID != nil && *file.CurrentSnapshotID == s.ID {
		marker = "*"
	}
	fmt.Printf("  %s v%-3d id=%-4d %s  %s", marker, s.Version, s.ID,
		s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.ContentHash[:8])
	if s.Label != "" {
		label := s.Label
		if len(label) > 50 {
			label = label[:50] + "..."
		}
		fmt.Printf("  %q", label)
	}
	fmt.Println()
}
