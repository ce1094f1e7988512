package main

import (
	"github.com/spf13/cobra"
	"skycache/pkg/report"
	"skycache/pkg/ui"
)

var downloadDataset string

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [listing-url]",
	Short: "Mirror the files of an HTTP directory listing",
	Long: `Fetch an HTML directory listing, keep the links that end in the
configured suffix (.csv.gz by default) and download each file into
<data-dir>/raw/<dataset>. Files that already exist locally are skipped, and
a file that fails does not stop the others.`,
	Example: `  # Mirror the configured Gaia listing
  skycache download

  # Mirror another listing into its own dataset directory
  skycache download https://cdn.gea.esac.esa.int/Gaia/gdr3/Astrophysical_parameters/astrophysical_parameters/ --dataset ap`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadDataset, "dataset", "d", "", "dataset name (default from config)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	baseURL := cfg.Gaia.BaseURL
	if len(args) == 1 {
		baseURL = args[0]
	}
	_, err := download(cmd, baseURL, datasetName(downloadDataset))
	return err
}

func download(cmd *cobra.Command, baseURL, dataset string) (*report.Report, error) {
	dest := cfg.RawDir(dataset)
	ui.PrintInfo("Listing", baseURL)
	ui.PrintInfo("Destination", dest)

	_, rep, err := newDownloader().Download(cmd.Context(), baseURL, dest)
	for i, o := range rep.Outcomes {
		ui.PrintHighlight(ui.Bar(i+1, len(rep.Outcomes)))
		ui.PrintOutcome(o)
	}
	if err != nil {
		return rep, err
	}
	finish(rep)
	return rep, nil
}

func datasetName(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Gaia.Dataset
}
