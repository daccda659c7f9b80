package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodtune/kdict/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
	email      string
	password   string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kdict",
	Short: "kdict - English dictionary lookups with usage statistics",
	Long: `kdict looks up English words in a public dictionary and keeps statistics
of what you searched: how many distinct words per day, how often each word,
and the history of any date. Statistics live in a local snapshot, or in a
per-user Redis store when you sign in with --email and --password.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded

		logger = setupLogger(cfg.Logging, os.Stderr)
		log.Logger = logger

		if password == "" {
			password = os.Getenv("KDICT_PASSWORD")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "Sign in to remote statistics with this account")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Account password (or set KDICT_PASSWORD)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "kdict.yaml"
	}
	return filepath.Join(dir, "kdict", "config.yaml")
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig, out *os.File) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(out).With().Timestamp().Logger()
}
