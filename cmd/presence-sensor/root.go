package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sweeney/presence-sensor/internal/config"
	"github.com/sweeney/presence-sensor/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	provider *config.Provider
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "presence-sensor",
	Short:         "Debounced PIR motion alarm with webhook and MQTT notifications",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if provider != nil {
			return nil
		}

		p, err := config.NewProvider(cfgFile, zerolog.Nop())
		if err != nil {
			return err
		}

		cfg := p.Current()
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger = logging.NewLogger(cfg.Logging)
		p.SetLogger(logger)

		provider = p
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func getProvider() *config.Provider {
	if provider == nil {
		panic("configuration not loaded; PersistentPreRunE not executed")
	}
	return provider
}
