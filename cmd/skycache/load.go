package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"skycache/pkg/merger"
	"skycache/pkg/ui"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <file.parquet>...",
	Short: "Load Parquet files and print a summary",
	Long: `Concatenate the given Parquet files in order and print the row count
and schema of the result. Missing files and files whose schema differs from
the first one are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := merger.Load(cmd.Context(), args, log)
		if err != nil {
			return err
		}
		if t == nil {
			ui.PrintWarning("None of the files exist")
			return nil
		}

		ui.PrintInfo("Rows", fmt.Sprintf("%d", t.NumRows()))
		ui.PrintInfo("Columns", fmt.Sprintf("%d", t.NumColumns()))
		for _, c := range t.Schema {
			ui.PrintInfo("  "+c.Name, string(c.Type))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
