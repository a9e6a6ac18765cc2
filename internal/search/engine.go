package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uigen/patternmatch/internal/corpus"
	"github.com/uigen/patternmatch/internal/embed"
	apperrors "github.com/uigen/patternmatch/internal/errors"
	"github.com/uigen/patternmatch/internal/store"
)

// DegradedReasonSemantic is the user-visible explanation attached to a
// response produced without the semantic signal.
const DegradedReasonSemantic = "semantic search unavailable, results based on keyword match only"

// DegradedReasonEmptyQuery marks a response to an all-empty requirement
// query. The engine still answers, but nothing anchors the ranking.
const DegradedReasonEmptyQuery = "empty requirement query, results are not ranked by relevance"

// corpusIndex bundles one snapshot with the indexes built from it. The
// bundle is swapped atomically on reload so an in-flight query always
// sees a snapshot and its indexes from the same generation.
type corpusIndex struct {
	snapshot *corpus.Snapshot
	bm25     store.BM25Index
	vectors  store.VectorStore
}

// Engine is the retrieval orchestrator. One Retrieve call walks
// build-query, parallel retrieval, fusion, and explanation under a
// single deadline, degrading to lexical-only when the semantic branch
// fails. Concurrent queries share only the immutable corpusIndex.
type Engine struct {
	config   EngineConfig
	embedder embed.Embedder
	logger   *slog.Logger

	builder     *QueryBuilder
	explainer   *Explainer
	paraphraser Paraphraser

	index atomic.Pointer[corpusIndex]
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParaphraser supplies the paraphrase generator for the multi-query
// semantic strategy. Only consulted when config.MultiQuery is set.
func WithParaphraser(p Paraphraser) EngineOption {
	return func(e *Engine) { e.paraphraser = p }
}

// NewEngine creates an engine. The embedder may be nil, in which case
// every query runs lexical-only and is flagged degraded.
func NewEngine(embedder embed.Embedder, config EngineConfig, opts ...EngineOption) *Engine {
	if config.OverallTimeout <= 0 {
		config.OverallTimeout = DefaultEngineConfig().OverallTimeout
	}
	if config.MaxTopK <= 0 {
		config.MaxTopK = DefaultEngineConfig().MaxTopK
	}
	config.Weights = config.Weights.Normalized()

	e := &Engine{
		config:    config,
		embedder:  embedder,
		logger:    slog.Default(),
		builder:   NewQueryBuilder(),
		explainer: NewExplainer(config.Thresholds),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadCorpus builds fresh indexes from the snapshot and publishes them
// atomically. In-flight queries keep the previous bundle; there is no
// partially-updated state to observe. The previous bundle is left to
// the garbage collector because queries may still hold it.
func (e *Engine) LoadCorpus(ctx context.Context, snap *corpus.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	bm25, err := store.NewBM25Index(e.config.BM25Backend, e.config.BM25)
	if err != nil {
		return fmt.Errorf("create bm25 index: %w", err)
	}

	patterns := snap.Patterns()
	docs := make([]*store.Document, 0, len(patterns))
	for _, p := range patterns {
		docs = append(docs, &store.Document{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Props:       p.Metadata.Props,
			Variants:    p.Metadata.Variants,
			Description: p.Description,
		})
	}
	if err := bm25.Index(ctx, docs); err != nil {
		return fmt.Errorf("index patterns: %w", err)
	}

	var vectors store.VectorStore
	if snap.Dimensions() > 0 {
		hnswStore, err := store.NewHNSWStore(store.DefaultHNSWConfig(snap.Dimensions()))
		if err != nil {
			return fmt.Errorf("create vector store: %w", err)
		}
		// Patterns() is ID-ordered, so insertion order is stable
		// across reloads of the same corpus.
		ids := make([]string, 0, len(patterns))
		embeddings := make([][]float32, 0, len(patterns))
		for _, p := range patterns {
			if vec := snap.Embedding(p.ID); vec != nil {
				ids = append(ids, p.ID)
				embeddings = append(embeddings, vec)
			}
		}
		if err := hnswStore.Add(ctx, ids, embeddings); err != nil {
			return fmt.Errorf("add pattern embeddings: %w", err)
		}
		vectors = hnswStore
	}

	e.index.Store(&corpusIndex{snapshot: snap, bm25: bm25, vectors: vectors})

	stats := snap.Stats()
	e.logger.Info("corpus published",
		slog.Int("patterns", stats.Patterns),
		slog.Int("embedded", stats.Embedded),
		slog.Int("dimensions", stats.Dimensions),
		slog.Uint64("generation", stats.Generation))
	return nil
}

// Snapshot returns the currently published corpus snapshot, or nil.
func (e *Engine) Snapshot() *corpus.Snapshot {
	if idx := e.index.Load(); idx != nil {
		return idx.snapshot
	}
	return nil
}

// Retrieve runs one query end to end and returns the topK explained
// matches. Only an unbuilt corpus produces an error; every other
// failure is absorbed into a degraded response so the downstream
// generation step always has something to act on.
func (e *Engine) Retrieve(ctx context.Context, query RequirementQuery, topK int) ([]ScoredMatch, RetrievalMetadata, error) {
	start := time.Now()
	meta := RetrievalMetadata{MethodsUsed: []string{}}

	idx := e.index.Load()
	if idx == nil {
		return nil, meta, apperrors.RetrievalUnavailable(apperrors.CorpusNotReady())
	}
	meta.TotalPatternsSearched = idx.snapshot.Len()
	meta.CorpusGeneration = idx.snapshot.Generation()

	if idx.snapshot.Len() == 0 {
		meta.Latency = time.Since(start)
		return []ScoredMatch{}, meta, nil
	}
	if topK > e.config.MaxTopK {
		topK = e.config.MaxTopK
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.OverallTimeout)
	defer cancel()

	queryEmpty := query.IsEmpty()
	if queryEmpty {
		e.logger.Debug("empty requirement query, proceeding with degraded signal")
	}
	terms, semanticText := e.builder.Build(query)
	e.logger.Debug("query built",
		slog.Int("lexical_terms", len(terms)),
		slog.String("semantic_text", semanticText))

	lex, sem, semErr, lexErr := e.retrieve(ctx, idx, terms, semanticText)
	if lexErr != nil {
		return nil, meta, apperrors.RetrievalUnavailable(lexErr)
	}

	meta.MethodsUsed = append(meta.MethodsUsed, "bm25")
	if semErr != nil || sem == nil {
		meta.Degraded = true
		meta.DegradedReason = DegradedReasonSemantic
		sem = nil
		if semErr != nil {
			e.logger.Warn("semantic retrieval degraded",
				slog.String("code", apperrors.Code(semErr)),
				slog.String("error", semErr.Error()))
		}
	} else {
		meta.MethodsUsed = append(meta.MethodsUsed, "semantic")
	}

	fused := Fuse(lex, sem, e.config.Weights)
	e.logger.Debug("scores fused",
		slog.Int("candidates", len(fused)),
		slog.Bool("degraded", meta.Degraded))

	matches := e.explainer.Explain(fused, query, idx.snapshot, topK, e.config.Weights)

	if queryEmpty {
		// Nothing to match against: every score is noise, so the whole
		// response is flagged and capped at low confidence.
		meta.Degraded = true
		meta.DegradedReason = DegradedReasonEmptyQuery
		for i := range matches {
			matches[i].Confidence = ConfidenceLow
		}
	}

	meta.Latency = time.Since(start)
	e.logger.Info("retrieval complete",
		slog.Int("results", len(matches)),
		slog.Int("patterns_searched", meta.TotalPatternsSearched),
		slog.Bool("degraded", meta.Degraded),
		slog.Duration("latency", meta.Latency))
	return matches, meta, nil
}

// retrieve runs the two retrievers concurrently and waits for both to
// settle. Branch errors are captured instead of failing the group so a
// semantic failure never cancels the lexical branch.
func (e *Engine) retrieve(ctx context.Context, idx *corpusIndex, terms []string, semanticText string) (lex, sem []RawScore, semErr, lexErr error) {
	lexical := NewLexicalRetriever(idx.bm25)
	strategy := e.semanticStrategy(idx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results, err := lexical.Search(gctx, terms)
		if err != nil {
			lexErr = err
			return nil
		}
		lex = results
		return nil
	})

	switch {
	case strategy == nil:
		semErr = apperrors.SemanticUnavailable(fmt.Errorf("no embedder or pattern embeddings configured"))
	case semanticText == "":
		// An empty text embeds to a zero vector, which has no cosine
		// similarity to anything. Skip the branch instead.
		semErr = apperrors.SemanticUnavailable(fmt.Errorf("no query text to embed"))
	default:
		g.Go(func() error {
			results, err := strategy.Search(gctx, semanticText)
			if err != nil {
				semErr = err
				return nil
			}
			sem = results
			return nil
		})
	}

	_ = g.Wait()
	return lex, sem, semErr, lexErr
}

// semanticStrategy assembles the semantic branch for one query, or nil
// when the branch cannot run at all.
func (e *Engine) semanticStrategy(idx *corpusIndex) SemanticStrategy {
	if e.embedder == nil || idx.vectors == nil || idx.vectors.Count() == 0 {
		return nil
	}
	var strategy SemanticStrategy = NewSemanticRetriever(e.embedder, idx.vectors, e.config.Retry, e.logger)
	if e.config.MultiQuery && e.paraphraser != nil {
		strategy = NewMultiQueryStrategy(strategy, e.paraphraser, 0, e.logger)
	}
	return strategy
}

// Close releases the published indexes and the embedder. Only call
// after all queries have drained.
func (e *Engine) Close() error {
	var firstErr error
	if idx := e.index.Swap(nil); idx != nil {
		if err := idx.bm25.Close(); err != nil {
			firstErr = err
		}
		if idx.vectors != nil {
			if err := idx.vectors.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
