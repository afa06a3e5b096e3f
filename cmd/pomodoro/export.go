// ABOUTME: CLI command for exporting the cycle log.
// ABOUTME: Supports JSON, YAML, CSV, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Export the cycle log",
	Long: `Export every recorded cycle plus the daily aggregates.

FORMATS:

  json       Full JSON export (default, suitable for backup/restore)
  yaml       YAML export grouped by session type
  csv        One row per cycle
  markdown   Daily table and cycle log (for notes/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include data since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  pomodoro export                            # JSON to stdout
  pomodoro export json -o backup.json        # Save to file
  pomodoro export csv -o cycles.csv          # Spreadsheet friendly
  pomodoro export markdown --since 2025-01-01`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: storage.Formats,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "json"
		if len(args) == 1 {
			format = args[0]
		}

		var data []byte
		var err error

		if (format == "markdown" || format == "md") && exportSince != "" {
			t, perr := time.ParseInLocation(models.DateLayout, exportSince, time.Local)
			if perr != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
			all, gerr := repo.GetAllData()
			if gerr != nil {
				return fmt.Errorf("export failed: %w", gerr)
			}
			data = []byte(storage.ExportMarkdown(all, &t))
		} else {
			data, err = storage.Export(repo, format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
}
