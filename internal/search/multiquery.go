package search

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Paraphraser rewrites a query text into alternative phrasings. An LLM
// client typically backs this; tests inject a canned implementation.
type Paraphraser interface {
	Paraphrase(ctx context.Context, text string, n int) ([]string, error)
}

// MultiQueryStrategy is the experimental alternate semantic strategy:
// generate paraphrases of the query text, run the base strategy for
// each phrasing in parallel, and merge the rankings with reciprocal
// rank fusion so patterns favored across phrasings rise. Off by
// default; the plain single-query SemanticRetriever remains the core
// contract.
type MultiQueryStrategy struct {
	base        SemanticStrategy
	paraphraser Paraphraser
	numQueries  int
	rrfK        int
	logger      *slog.Logger
}

// NewMultiQueryStrategy wraps a base strategy with query paraphrasing.
func NewMultiQueryStrategy(base SemanticStrategy, paraphraser Paraphraser, numQueries int, logger *slog.Logger) *MultiQueryStrategy {
	if numQueries <= 0 {
		numQueries = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiQueryStrategy{
		base:        base,
		paraphraser: paraphraser,
		numQueries:  numQueries,
		rrfK:        DefaultRRFConstant,
		logger:      logger,
	}
}

// Search runs the original text plus its paraphrases and fuses the
// rankings. Paraphrase failure is not fatal: the original query alone
// still produces a valid ranking. A branch failure on the original
// text propagates like the base strategy's error would.
func (m *MultiQueryStrategy) Search(ctx context.Context, text string) ([]RawScore, error) {
	queries := []string{text}
	if m.paraphraser != nil {
		paraphrases, err := m.paraphraser.Paraphrase(ctx, text, m.numQueries-1)
		if err != nil {
			m.logger.Warn("paraphrase generation failed, using original query only",
				slog.String("error", err.Error()))
		} else {
			queries = append(queries, paraphrases...)
		}
	}

	lists := make([][]RawScore, len(queries))
	var mu sync.Mutex
	var originalErr error

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			scores, err := m.base.Search(gctx, q)
			if err != nil {
				// Only the original query's failure is load-bearing;
				// a bad paraphrase just contributes nothing.
				if i == 0 {
					mu.Lock()
					originalErr = err
					mu.Unlock()
				} else {
					m.logger.Debug("paraphrase branch failed",
						slog.Int("branch", i),
						slog.String("error", err.Error()))
				}
				return nil
			}
			mu.Lock()
			lists[i] = scores
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if originalErr != nil {
		return nil, originalErr
	}

	nonEmpty := make([][]RawScore, 0, len(lists))
	for _, list := range lists {
		if len(list) > 0 {
			nonEmpty = append(nonEmpty, list)
		}
	}
	if len(nonEmpty) == 0 {
		return []RawScore{}, nil
	}
	if len(nonEmpty) == 1 {
		return nonEmpty[0], nil
	}
	return rrfFuse(nonEmpty, m.rrfK), nil
}

var _ SemanticStrategy = (*MultiQueryStrategy)(nil)
