package cmd

import (
	"context"
	"log/slog"

	"github.com/openmint/issuer-node/internal/config"
	"github.com/openmint/issuer-node/pkg/logger"
	"github.com/openmint/issuer-node/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:  "openmint",
	Long: `OpenMint issuer node: a role-gated multi-token issuance authority with HTTP APIs and webhook notifications`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g.  `./config.yaml`")

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger: %v", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands and handlers
	rootCmd.AddCommand(
		NewRunCommand(),
		NewInitCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
		NewExportCommand(),
	)

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute root command", slogx.Error(err))
	}
}
