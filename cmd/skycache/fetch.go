package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"skycache/pkg/catalog"
	"skycache/pkg/ui"
)

var fetchForce bool

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [catalog-id...]",
	Short: "Cache VizieR catalogs as Parquet files",
	Long: `Query each VizieR catalog for all columns and all rows and save the
result as <data-dir>/catalogs/<id>.parquet, with "/" in the id replaced by "_".

Catalogs that are already cached are skipped unless --force is given. When no
ids are passed, the catalogs from the configuration are fetched.`,
	Example: `  # Fetch the configured catalogs
  skycache fetch

  # Fetch two catalogs, refreshing any cached copy
  skycache fetch B/vsx/vsx I/239/hip_main --force`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "re-download catalogs that are already cached")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ids := catalog.Specs(args)
	if len(args) == 0 {
		ids = catalog.Specs(cfg.Vizier.Catalogs)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no catalogs given and none configured")
	}

	ui.PrintInfo("Catalogs", fmt.Sprintf("%d", len(ids)))
	ui.PrintInfo("Cache", cfg.CatalogDir())

	rep, err := newFetcher().Fetch(cmd.Context(), ids, cfg.CatalogDir(), fetchForce)
	for _, o := range rep.Outcomes {
		ui.PrintOutcome(o)
	}
	if err != nil {
		return err
	}
	finish(rep)
	return nil
}
