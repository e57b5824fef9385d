package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpaw/pawdeck/pkg/config"
	"github.com/openpaw/pawdeck/pkg/utils"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pawdeck",
	Short: "pawdeck - local control console for the OpenPaw agent backend",
	Long: `pawdeck keeps conversations, tasks, knowledge, agents and skills of an
OpenPaw backend in sync and exposes them to a local rendering layer.

Examples:
  pawdeck serve                     # Start the console on 127.0.0.1:8090
  pawdeck status                    # Probe backend health and counters
  pawdeck tasks --status pending    # List tasks`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tasksCmd)

	rootCmd.PersistentFlags().String("backend", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend.BaseURL = &v
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	level := cfg.LogLevel()
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		level = v
	}
	utils.SetLevel(level)
	utils.GetLogger().Debug("config loaded", "path", path)
	return cfg, nil
}
