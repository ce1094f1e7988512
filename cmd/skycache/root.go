package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"skycache/pkg/config"
	"skycache/pkg/logger"
	"skycache/pkg/report"
	"skycache/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	dataDir     string
	noColor     bool
	quiet       bool
	writeReport bool

	// Set by PersistentPreRunE for every command that needs them
	cfg *config.Config
	log logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skycache",
	Short: "Fetch, cache and merge astronomical catalog data",
	Long: `skycache keeps a local copy of public astronomical catalogs.

Stages:
  - fetch     query VizieR catalogs and cache each one as a Parquet file
  - download  mirror the .csv.gz files of a Gaia directory listing
  - merge     combine the downloaded files into one Parquet file
  - publish   upload cached and merged files to object storage

Every stage is idempotent: files that already exist are skipped.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet {
			ui.SetQuietMode(true)
			if !cmd.Flags().Changed("log-level") {
				logLevel = "error"
			}
		}
		if noColor {
			ui.SetColorEnabled(false)
		}

		if skipsSetup(cmd) {
			return nil
		}

		loaded, err := config.Load(configFile, setFlags(cmd))
		if err != nil {
			return err
		}
		if err := logger.Initialize(&loaded.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		log = logger.GetLogger().WithField("command", cmd.Name())
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.skycache.yaml or ~/.config/skycache/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "root of the local data layout (default ./data)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&writeReport, "report", false, "write a JSON run report under <data-dir>/reports")

	rootCmd.SetVersionTemplate(`skycache {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// skipsSetup lists commands that work without a valid configuration
func skipsSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "init", "validate":
		return true
	}
	return false
}

// setFlags collects the global flags that were given explicitly
func setFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if noColor {
		flags["no-color"] = true
	}
	if f := cmd.Flags().Lookup("bucket"); f != nil && f.Changed {
		flags["bucket"] = f.Value.String()
	}
	return flags
}

// finish prints the summary of a stage and saves its report if requested
func finish(rep *report.Report) {
	rep.Finish()
	ui.PrintSummary(rep)

	if !writeReport {
		return
	}
	path := filepath.Join(cfg.ReportDir(), rep.FileName())
	if err := rep.Save(path); err != nil {
		log.WithError(err).Error("Failed to save run report")
		ui.PrintWarning("Could not save report", err)
		return
	}
	ui.PrintInfo("Report", path)
}
