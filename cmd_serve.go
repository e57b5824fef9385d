package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openpaw/pawdeck/pkg/config"
	"github.com/openpaw/pawdeck/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the console server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := config.EnsureDefaultConfig(); err != nil {
		utils.GetLogger().Warn("failed to write default config", "error", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = &port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return NewServer(cfg).Start(ctx)
}
