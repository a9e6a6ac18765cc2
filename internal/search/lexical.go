package search

import (
	"context"
	"sort"

	"github.com/uigen/patternmatch/internal/store"
)

// LexicalRetriever ranks every pattern in the corpus by field-weighted
// BM25. Pure computation over the in-memory index: no failure modes
// beyond the index itself, and an empty corpus yields an empty list.
type LexicalRetriever struct {
	index store.BM25Index
}

// NewLexicalRetriever wraps a built BM25 index.
func NewLexicalRetriever(index store.BM25Index) *LexicalRetriever {
	return &LexicalRetriever{index: index}
}

// Search scores all patterns against the terms, ordered by descending
// score with ties broken by ascending pattern ID. Ranks are 1-based.
func (r *LexicalRetriever) Search(ctx context.Context, terms []string) ([]RawScore, error) {
	hits, err := r.index.Search(ctx, terms, 0)
	if err != nil {
		return nil, err
	}
	return toRawScores(hits), nil
}

func toRawScores(hits []*store.LexicalResult) []RawScore {
	scores := make([]RawScore, 0, len(hits))
	for _, hit := range hits {
		scores = append(scores, RawScore{PatternID: hit.DocID, Score: hit.Score})
	}
	assignRanks(scores)
	return scores
}

// assignRanks sorts descending by score with the pattern-ID tie-break
// and stamps 1-based ranks. Shared by both retrievers so their rank
// semantics cannot drift apart.
func assignRanks(scores []RawScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PatternID < scores[j].PatternID
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
}
