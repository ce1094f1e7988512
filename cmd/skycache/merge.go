package main

import (
	"github.com/spf13/cobra"
	"skycache/pkg/ui"
)

var (
	mergeDataset string
	mergeSource  string
	mergeOutput  string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge downloaded files into one Parquet file",
	Long: `Read every raw file of a dataset in name order and append it to a
single Parquet file. The first readable file fixes the schema; files with a
different schema are skipped, and unreadable files are reported.

If the output already exists nothing is done.`,
	Example: `  # Merge the configured dataset
  skycache merge

  # Merge an arbitrary directory
  skycache merge --source ./incoming --output ./incoming.parquet`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeDataset, "dataset", "d", "", "dataset name (default from config)")
	mergeCmd.Flags().StringVar(&mergeSource, "source", "", "directory of raw files (default <data-dir>/raw/<dataset>)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output file (default <data-dir>/merged/<dataset>.parquet)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	dataset := datasetName(mergeDataset)
	source := mergeSource
	if source == "" {
		source = cfg.RawDir(dataset)
	}
	output := mergeOutput
	if output == "" {
		output = cfg.MergedPath(dataset)
	}
	return merge(cmd, source, output)
}

func merge(cmd *cobra.Command, source, output string) error {
	ui.PrintInfo("Source", source)
	ui.PrintInfo("Output", output)

	path, rep, err := newMerger().Merge(cmd.Context(), source, output)
	if err != nil {
		for _, o := range rep.Outcomes {
			ui.PrintOutcome(o)
		}
		return err
	}
	if len(rep.Outcomes) == 0 {
		ui.PrintWarning("Output already exists, skipping", path)
		return nil
	}
	finish(rep)
	ui.PrintSuccess("Merged into " + path)
	return nil
}
