package search

import (
	"context"
	"log/slog"

	"github.com/uigen/patternmatch/internal/embed"
	apperrors "github.com/uigen/patternmatch/internal/errors"
	"github.com/uigen/patternmatch/internal/store"
)

// SemanticStrategy ranks patterns by semantic similarity to a query
// text. The default strategy embeds the text once and searches the
// vector store; MultiQueryStrategy is the swappable paraphrase variant.
type SemanticStrategy interface {
	Search(ctx context.Context, text string) ([]RawScore, error)
}

// SemanticRetriever is the default strategy: embed the query under the
// retry policy, then rank every stored pattern vector by cosine
// similarity. A failure after retries surfaces as SemanticUnavailable;
// the orchestrator, not this component, decides the fallback.
type SemanticRetriever struct {
	embedder embed.Embedder
	vectors  store.VectorStore
	retry    embed.RetryPolicy
	logger   *slog.Logger
}

// NewSemanticRetriever wraps an embedder and a built vector store.
func NewSemanticRetriever(embedder embed.Embedder, vectors store.VectorStore, retry embed.RetryPolicy, logger *slog.Logger) *SemanticRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticRetriever{
		embedder: embedder,
		vectors:  vectors,
		retry:    retry,
		logger:   logger,
	}
}

// Search embeds the text and ranks all patterns with stored embeddings.
// Patterns without an embedding are simply absent from the result, not
// an error. Ranks are 1-based with the pattern-ID tie-break.
func (r *SemanticRetriever) Search(ctx context.Context, text string) ([]RawScore, error) {
	if r.vectors == nil || r.vectors.Count() == 0 {
		return []RawScore{}, nil
	}

	vector, err := r.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	hits, err := r.vectors.Search(ctx, vector, 0)
	if err != nil {
		return nil, apperrors.SemanticUnavailable(err)
	}

	scores := make([]RawScore, 0, len(hits))
	for _, hit := range hits {
		scores = append(scores, RawScore{PatternID: hit.ID, Score: float64(hit.Score)})
	}
	assignRanks(scores)
	return scores, nil
}

func (r *SemanticRetriever) embedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := embed.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		v, embedErr := r.embedder.Embed(ctx, text)
		if embedErr != nil {
			r.logger.Debug("embedding attempt failed",
				slog.String("code", apperrors.Code(embedErr)),
				slog.String("error", embedErr.Error()))
			return embedErr
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, apperrors.SemanticUnavailable(err)
	}
	return vector, nil
}

var _ SemanticStrategy = (*SemanticRetriever)(nil)
