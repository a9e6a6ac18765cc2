// Package cmd provides the CLI commands for patternmatch.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/uigen/patternmatch/internal/config"
	"github.com/uigen/patternmatch/internal/logging"
	"github.com/uigen/patternmatch/pkg/version"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patternmatch",
		Short: "Hybrid retrieval over a curated UI pattern corpus",
		Long: `Patternmatch ranks curated UI component patterns against a structured
requirement query using hybrid retrieval: field-weighted BM25 keyword
matching fused with embedding cosine similarity, with per-result
confidence and matched-field explanations.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("patternmatch version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newCorpusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads configuration and applies CLI overrides, then sets
// up the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, _, err := logging.Setup(logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.FilePath,
		WriteToStderr: true,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}
