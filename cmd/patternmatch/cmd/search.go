package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uigen/patternmatch/internal/config"
	"github.com/uigen/patternmatch/internal/corpus"
	"github.com/uigen/patternmatch/internal/embed"
	"github.com/uigen/patternmatch/internal/output"
	"github.com/uigen/patternmatch/internal/search"
	"github.com/uigen/patternmatch/internal/store"
)

// timeRounding keeps printed latencies readable.
const timeRounding = time.Millisecond

type searchOptions struct {
	props         []string
	variants      []string
	events        []string
	states        []string
	accessibility []string
	topK          int
	format        string // "text", "json"
	showCode      bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <component-type>",
		Short: "Rank corpus patterns against a requirement query",
		Long: `Rank corpus patterns against a structured requirement query.

Examples:
  patternmatch search Button --props variant,size
  patternmatch search Modal --props open,onClose --accessibility "focus trap,aria-modal"
  patternmatch search Dropdown --variants searchable --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentType := ""
			if len(args) > 0 {
				componentType = args[0]
			}
			return runSearch(cmd.Context(), cmd, componentType, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.props, "props", nil, "Required prop names (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&opts.variants, "variants", nil, "Required variants")
	cmd.Flags().StringSliceVar(&opts.events, "events", nil, "Required events")
	cmd.Flags().StringSliceVar(&opts.states, "states", nil, "Required states")
	cmd.Flags().StringSliceVar(&opts.accessibility, "accessibility", nil, "Required accessibility features")
	cmd.Flags().IntVarP(&opts.topK, "top", "n", 0, "Number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.showCode, "code", false, "Include the pattern's reference code")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, componentType string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	query := search.RequirementQuery{
		ComponentType: componentType,
		Props:         opts.props,
		Variants:      opts.variants,
		Events:        opts.events,
		States:        opts.states,
		Accessibility: opts.accessibility,
	}

	topK := opts.topK
	if topK <= 0 {
		topK = cfg.Search.TopK
	}

	matches, meta, err := engine.Retrieve(ctx, query, topK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	switch opts.format {
	case "json":
		return formatJSON(cmd, matches, meta)
	default:
		return formatText(output.New(cmd.OutOrStdout()), matches, meta, opts.showCode)
	}
}

// buildEngine assembles the retrieval engine from configuration and
// loads the corpus file.
func buildEngine(ctx context.Context, cfg *config.Config) (*search.Engine, error) {
	embedder, err := embed.NewEmbedder(embed.FactoryConfig{
		Provider: embed.ParseProvider(cfg.Embeddings.Provider),
		OpenAI: embed.OpenAIConfig{
			APIKey:     cfg.Embeddings.APIKey,
			BaseURL:    cfg.Embeddings.BaseURL,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
		},
		CacheSize: cfg.Embeddings.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	engineConfig := engineConfigFrom(cfg)
	engine := search.NewEngine(embedder, engineConfig, search.WithLogger(slog.Default()))

	loader := corpus.NewLoader(cfg.Corpus.Path)
	snap, err := loader.Load()
	if err != nil {
		return nil, err
	}
	holder := corpus.NewHolder()
	holder.Publish(snap)
	if err := engine.LoadCorpus(ctx, holder.Load()); err != nil {
		return nil, err
	}
	return engine, nil
}

func engineConfigFrom(cfg *config.Config) search.EngineConfig {
	ec := search.DefaultEngineConfig()
	ec.Weights = search.Weights{Lexical: cfg.Search.LexicalWeight, Semantic: cfg.Search.SemanticWeight}
	ec.Thresholds = search.ConfidenceThresholds{High: cfg.Search.ConfidenceHigh, Medium: cfg.Search.ConfidenceMedium}
	ec.DefaultTopK = cfg.Search.TopK
	ec.MaxTopK = cfg.Search.MaxTopK
	ec.OverallTimeout = config.Duration(cfg.Search.OverallTimeout, ec.OverallTimeout)
	ec.BM25 = store.BM25Config{K1: cfg.Search.BM25K1, B: cfg.Search.BM25B}
	ec.BM25Backend = cfg.Search.BM25Backend
	ec.MultiQuery = cfg.Search.MultiQuery
	ec.Retry.MaxAttempts = cfg.Embeddings.RetryAttempts
	ec.Retry.BaseDelay = config.Duration(cfg.Embeddings.RetryBaseDelay, ec.Retry.BaseDelay)
	ec.Retry.CallTimeout = config.Duration(cfg.Embeddings.EmbedTimeout, ec.Retry.CallTimeout)
	return ec
}

func formatText(out *output.Writer, matches []search.ScoredMatch, meta search.RetrievalMetadata, showCode bool) error {
	if meta.Degraded {
		out.Warning(meta.DegradedReason)
	}
	if len(matches) == 0 {
		out.Status("", fmt.Sprintf("No matches (%d patterns searched).", meta.TotalPatternsSearched))
		return nil
	}

	out.Statusf("🔍", "%d matches from %d patterns (%s, %v):",
		len(matches), meta.TotalPatternsSearched, strings.Join(meta.MethodsUsed, "+"), meta.Latency.Round(timeRounding))
	out.Newline()

	for i, m := range matches {
		out.Statusf("", "%d. %s [%s] score=%.3f confidence=%s", i+1, m.Name, m.PatternID, m.WeightedScore, m.Confidence)
		out.Status("", "   "+m.Explanation.MatchReason)
		if len(m.Explanation.MatchedProps) > 0 {
			out.Status("", "   props: "+strings.Join(m.Explanation.MatchedProps, ", "))
		}
		if len(m.Explanation.MatchedVariants) > 0 {
			out.Status("", "   variants: "+strings.Join(m.Explanation.MatchedVariants, ", "))
		}
		if len(m.Explanation.MatchedAccessibility) > 0 {
			out.Status("", "   accessibility: "+strings.Join(m.Explanation.MatchedAccessibility, ", "))
		}
		if showCode && m.Code != "" {
			out.Code(m.Code)
		}
		out.Newline()
	}
	return nil
}

func formatJSON(cmd *cobra.Command, matches []search.ScoredMatch, meta search.RetrievalMetadata) error {
	payload := struct {
		Matches  []search.ScoredMatch     `json:"matches"`
		Metadata search.RetrievalMetadata `json:"metadata"`
	}{Matches: matches, Metadata: meta}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
