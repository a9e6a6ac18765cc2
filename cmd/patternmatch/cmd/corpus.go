package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uigen/patternmatch/internal/config"
	"github.com/uigen/patternmatch/internal/corpus"
	"github.com/uigen/patternmatch/internal/output"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect and validate the pattern corpus",
	}
	cmd.AddCommand(newCorpusValidateCmd())
	cmd.AddCommand(newCorpusStatsCmd())
	cmd.AddCommand(newCorpusWatchCmd())
	return cmd
}

func newCorpusWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus file and revalidate on every change",
		Long: `Watch the corpus file and revalidate on every change.

Useful while curating patterns: each save is loaded, validated, and
reported, so a broken edit is caught immediately instead of at the next
engine start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			loader := corpus.NewLoader(cfg.Corpus.Path)
			holder := corpus.NewHolder()

			snap, err := loader.Load()
			if err != nil {
				return err
			}
			holder.Publish(snap)
			out.Success(fmt.Sprintf("Watching %s (%d patterns)", cfg.Corpus.Path, snap.Len()))

			watcher := corpus.NewWatcher(loader, func(ctx context.Context, snap *corpus.Snapshot) error {
				holder.Publish(snap)
				out.Success(fmt.Sprintf("Reloaded: %d patterns, generation %d", snap.Len(), snap.Generation()))
				return nil
			}, config.Duration(cfg.Corpus.WatchDebounce, corpus.DefaultDebounce), nil)

			return watcher.Run(cmd.Context())
		},
	}
}

func newCorpusValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the corpus file without starting a search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := output.New(cmd.OutOrStdout())

			snap, err := corpus.NewLoader(cfg.Corpus.Path).Load()
			if err != nil {
				return fmt.Errorf("corpus invalid: %w", err)
			}

			stats := snap.Stats()
			out.Success(fmt.Sprintf("Corpus valid: %d patterns, %d embedded (%d dims)",
				stats.Patterns, stats.Embedded, stats.Dimensions))
			if stats.Embedded < stats.Patterns {
				out.Warning(fmt.Sprintf("%d patterns have no embedding and are invisible to semantic search",
					stats.Patterns-stats.Embedded))
			}
			return nil
		},
	}
}

func newCorpusStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			snap, err := corpus.NewLoader(cfg.Corpus.Path).Load()
			if err != nil {
				return err
			}
			stats := snap.Stats()

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			out := output.New(cmd.OutOrStdout())
			out.Statusf("", "patterns:   %d", stats.Patterns)
			out.Statusf("", "embedded:   %d", stats.Embedded)
			out.Statusf("", "dimensions: %d", stats.Dimensions)
			for _, p := range snap.Patterns() {
				out.Statusf("", "  %-24s %s (%s)", p.ID, p.Name, p.Category)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
