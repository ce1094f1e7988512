package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"skycache/pkg/ui"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintLogo()
		ui.PrintInfo("Version", version)
		ui.PrintInfo("Commit", gitCommit)
		ui.PrintInfo("Built", buildDate)
		ui.PrintInfo("Go", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
