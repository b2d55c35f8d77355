package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/termgraph/internal/config"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
	Long: `Show or initialize termgraph configuration.

Configuration is layered: built-in defaults, then the global file
($XDG_CONFIG_HOME/termgraph/config.yml), then the nearest termgraph.yml at
or above the working directory, then TERMGRAPH_* environment variables
(also read from .env), then command-line flags.

Usage:
  termgraph config show          # Effective configuration
  termgraph config path          # Config file locations
  termgraph config init          # Write defaults to the global file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		if !humanOutput {
			return outputJSON(cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

// ConfigPathResponse is the response for config path.
type ConfigPathResponse struct {
	Global      string `json:"global"`
	GlobalFound bool   `json:"global_found"`
	Local       string `json:"local"`
	LocalFound  bool   `json:"local_found"`
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := ConfigPathResponse{
			Global: config.GlobalConfigPath(),
			Local:  config.LocalConfigPath(flagConfigDir),
		}
		resp.GlobalFound = fileExists(resp.Global)
		resp.LocalFound = fileExists(resp.Local)

		if !humanOutput {
			return outputJSON(resp)
		}
		outputHuman("%s %s %s\n", Subtle.Sprint("global:"), resp.Global, foundMark(resp.GlobalFound))
		outputHuman("%s  %s %s\n", Subtle.Sprint("local:"), resp.Local, foundMark(resp.LocalFound))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the global config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GlobalConfigPath()
		if path == "" {
			exitWithError(ExitConfigError, "cannot determine config directory")
		}
		if fileExists(path) && !configInitForce {
			exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
		}

		cfg := config.Default()
		applyFlags(cfg)
		if err := cfg.Save(path); err != nil {
			exitWithError(ExitError, "%v", err)
		}

		if !humanOutput {
			return outputJSON(StatusResponse{Status: "created", Path: path})
		}
		outputHuman("%s %s\n", Good.Sprint("Created"), path)
		return nil
	},
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func foundMark(found bool) string {
	if found {
		return Good.Sprint("(found)")
	}
	return Subtle.Sprint("(missing)")
}
