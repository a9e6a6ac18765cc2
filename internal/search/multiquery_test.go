package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedStrategy returns a fixed ranking per query text.
type cannedStrategy struct {
	mu      sync.Mutex
	results map[string][]RawScore
	errors  map[string]error
	queries []string
}

func (s *cannedStrategy) Search(ctx context.Context, text string) ([]RawScore, error) {
	s.mu.Lock()
	s.queries = append(s.queries, text)
	s.mu.Unlock()
	if err := s.errors[text]; err != nil {
		return nil, err
	}
	return s.results[text], nil
}

type cannedParaphraser struct {
	phrases []string
	err     error
}

func (p *cannedParaphraser) Paraphrase(ctx context.Context, text string, n int) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.phrases) > n {
		return p.phrases[:n], nil
	}
	return p.phrases, nil
}

func TestMultiQuery_ConsensusBoost(t *testing.T) {
	base := &cannedStrategy{results: map[string][]RawScore{
		"original": {
			{PatternID: "niche", Score: 0.9, Rank: 1},
			{PatternID: "steady", Score: 0.8, Rank: 2},
		},
		"alt-1": {
			{PatternID: "steady", Score: 0.7, Rank: 1},
		},
		"alt-2": {
			{PatternID: "steady", Score: 0.6, Rank: 1},
			{PatternID: "other", Score: 0.5, Rank: 2},
		},
	}}
	strategy := NewMultiQueryStrategy(base, &cannedParaphraser{phrases: []string{"alt-1", "alt-2"}}, 3, nil)

	scores, err := strategy.Search(context.Background(), "original")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	// "steady" is ranked by every phrasing and overtakes the single
	// rank-1 placement of "niche".
	assert.Equal(t, "steady", scores[0].PatternID)
	assert.ElementsMatch(t, []string{"original", "alt-1", "alt-2"}, base.queries)
}

func TestMultiQuery_ParaphraseFailureFallsBackToOriginal(t *testing.T) {
	want := []RawScore{{PatternID: "a", Score: 0.9, Rank: 1}}
	base := &cannedStrategy{results: map[string][]RawScore{"original": want}}
	strategy := NewMultiQueryStrategy(base, &cannedParaphraser{err: errors.New("llm down")}, 3, nil)

	scores, err := strategy.Search(context.Background(), "original")
	require.NoError(t, err)
	assert.Equal(t, want, scores)
	assert.Equal(t, []string{"original"}, base.queries)
}

func TestMultiQuery_ParaphraseBranchFailureIsNotFatal(t *testing.T) {
	want := []RawScore{{PatternID: "a", Score: 0.9, Rank: 1}}
	base := &cannedStrategy{
		results: map[string][]RawScore{"original": want},
		errors:  map[string]error{"alt-1": errors.New("timeout")},
	}
	strategy := NewMultiQueryStrategy(base, &cannedParaphraser{phrases: []string{"alt-1"}}, 2, nil)

	scores, err := strategy.Search(context.Background(), "original")
	require.NoError(t, err)
	assert.Equal(t, want, scores)
}

func TestMultiQuery_OriginalFailurePropagates(t *testing.T) {
	cause := errors.New("embedder unavailable")
	base := &cannedStrategy{
		results: map[string][]RawScore{"alt-1": {{PatternID: "a", Score: 0.5, Rank: 1}}},
		errors:  map[string]error{"original": cause},
	}
	strategy := NewMultiQueryStrategy(base, &cannedParaphraser{phrases: []string{"alt-1"}}, 2, nil)

	_, err := strategy.Search(context.Background(), "original")
	assert.ErrorIs(t, err, cause)
}

func TestMultiQuery_AllEmptyRankings(t *testing.T) {
	base := &cannedStrategy{results: map[string][]RawScore{}}
	strategy := NewMultiQueryStrategy(base, &cannedParaphraser{phrases: []string{"alt-1"}}, 2, nil)

	scores, err := strategy.Search(context.Background(), "original")
	require.NoError(t, err)
	assert.Empty(t, scores)
}
