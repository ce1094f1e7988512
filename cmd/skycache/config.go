package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"skycache/pkg/config"
	"skycache/pkg/ui"
)

const defaultConfigPath = ".skycache.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage skycache configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (SKYCACHE_*)
  - A .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write the default configuration as YAML to ./.skycache.yaml, or to the
path given with --config. An existing file is never overwritten.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and check it. Each invalid
field is listed on its own line.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	ui.PrintInfo("Next", "edit the file, then run 'skycache config validate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	source := configFile
	if source == "" {
		source = "(search path)"
	}
	ui.PrintInfo("Validating configuration", source)

	loaded, err := config.Load(configFile, setFlags(cmd))
	if err != nil {
		ui.PrintError("Configuration has errors")
		for _, line := range problemLines(err) {
			ui.PrintError("  - " + line)
		}
		return errors.New("invalid configuration")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Data directory", loaded.Storage.DataDir)
	ui.PrintInfo("Catalogs", strings.Join(loaded.Vizier.Catalogs, ", "))
	ui.PrintInfo("Listing", loaded.Gaia.BaseURL)
	ui.PrintInfo("Rate limit", fmt.Sprintf("%d requests/minute", loaded.RateLimit.RequestsPerMinute))
	ui.PrintInfo("Max attempts", fmt.Sprintf("%d", loaded.Retry.MaxAttempts))
	return nil
}

// problemLines splits a joined validation error into one line per field
func problemLines(err error) []string {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
