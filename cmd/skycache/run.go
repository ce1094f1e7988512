package main

import (
	"github.com/spf13/cobra"
	"skycache/pkg/ui"
)

var runDataset string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download a dataset and merge it",
	Long: `Run the download stage for the configured listing and then merge the
downloaded files. The merge starts only if the listing could be read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataset := datasetName(runDataset)

		ui.PrintHighlight("[1/2] download")
		if _, err := download(cmd, cfg.Gaia.BaseURL, dataset); err != nil {
			return err
		}

		ui.PrintHighlight("[2/2] merge")
		return merge(cmd, cfg.RawDir(dataset), cfg.MergedPath(dataset))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runDataset, "dataset", "d", "", "dataset name (default from config)")
}
