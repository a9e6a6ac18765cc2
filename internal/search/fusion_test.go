package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse_BoundsAndOrdering(t *testing.T) {
	lex := []RawScore{
		{PatternID: "a", Score: 9.2, Rank: 1},
		{PatternID: "b", Score: 4.1, Rank: 2},
		{PatternID: "c", Score: 0.5, Rank: 3},
	}
	sem := []RawScore{
		{PatternID: "b", Score: 0.91, Rank: 1},
		{PatternID: "a", Score: 0.83, Rank: 2},
		{PatternID: "c", Score: 0.40, Rank: 3},
	}

	fused := Fuse(lex, sem, DefaultWeights())
	require.Len(t, fused, 3)

	for i, f := range fused {
		assert.GreaterOrEqual(t, f.WeightedScore, 0.0)
		assert.LessOrEqual(t, f.WeightedScore, 1.0)
		assert.False(t, f.Degraded)
		if i > 0 {
			assert.GreaterOrEqual(t, fused[i-1].WeightedScore, f.WeightedScore)
		}
	}

	// "c" is last in both lists, so it must fuse to the bottom.
	assert.Equal(t, "c", fused[2].PatternID)
	assert.Zero(t, fused[2].WeightedScore)
}

func TestFuse_AllEqualScoresMapToMidpoint(t *testing.T) {
	lex := []RawScore{
		{PatternID: "a", Score: 2.0, Rank: 1},
		{PatternID: "b", Score: 2.0, Rank: 2},
	}

	fused := Fuse(lex, nil, DefaultWeights())
	require.Len(t, fused, 2)
	for _, f := range fused {
		assert.Equal(t, 0.5, f.WeightedScore)
	}
}

func TestFuse_SingleSignalFlaggedDegraded(t *testing.T) {
	lex := []RawScore{
		{PatternID: "a", Score: 3.0, Rank: 1},
		{PatternID: "b", Score: 1.0, Rank: 2},
	}
	sem := []RawScore{
		{PatternID: "a", Score: 0.9, Rank: 1},
		{PatternID: "c", Score: 0.7, Rank: 2},
	}

	fused := Fuse(lex, sem, DefaultWeights())
	require.Len(t, fused, 3)

	byID := make(map[string]FusedScore, len(fused))
	for _, f := range fused {
		byID[f.PatternID] = f
	}

	assert.False(t, byID["a"].Degraded)
	assert.True(t, byID["b"].Degraded)
	assert.Zero(t, byID["b"].SemanticRank)
	assert.True(t, byID["c"].Degraded)
	assert.Zero(t, byID["c"].LexicalRank)

	// Single-signal entries renormalize over the present weight, so they
	// still land in [0,1] instead of being crushed by the missing signal.
	assert.Equal(t, 1.0, byID["a"].WeightedScore)
	assert.Zero(t, byID["b"].WeightedScore)
	assert.Zero(t, byID["c"].WeightedScore)
}

func TestFuse_WeightSensitivity(t *testing.T) {
	lex := []RawScore{
		{PatternID: "lex-winner", Score: 8.0, Rank: 1},
		{PatternID: "sem-winner", Score: 2.0, Rank: 2},
	}
	sem := []RawScore{
		{PatternID: "sem-winner", Score: 0.95, Rank: 1},
		{PatternID: "lex-winner", Score: 0.55, Rank: 2},
	}

	lexOnly := Fuse(lex, sem, Weights{Lexical: 1, Semantic: 0})
	assert.Equal(t, "lex-winner", lexOnly[0].PatternID)

	semOnly := Fuse(lex, sem, Weights{Lexical: 0, Semantic: 1})
	assert.Equal(t, "sem-winner", semOnly[0].PatternID)
}

func TestFuse_TieBreakByPatternID(t *testing.T) {
	lex := []RawScore{
		{PatternID: "zz", Score: 1.0, Rank: 1},
		{PatternID: "aa", Score: 1.0, Rank: 2},
	}

	fused := Fuse(lex, nil, DefaultWeights())
	require.Len(t, fused, 2)
	assert.Equal(t, "aa", fused[0].PatternID)
	assert.Equal(t, "zz", fused[1].PatternID)
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil, DefaultWeights()))
	assert.Empty(t, Fuse([]RawScore{}, []RawScore{}, DefaultWeights()))
}

func TestWeights_Normalized(t *testing.T) {
	w := Weights{Lexical: 3, Semantic: 1}.Normalized()
	assert.InDelta(t, 0.75, w.Lexical, 1e-9)
	assert.InDelta(t, 0.25, w.Semantic, 1e-9)

	// Negative weights clamp to zero.
	w = Weights{Lexical: -1, Semantic: 2}.Normalized()
	assert.Zero(t, w.Lexical)
	assert.Equal(t, 1.0, w.Semantic)

	// Both zero falls back to the default split.
	assert.Equal(t, DefaultWeights(), Weights{}.Normalized())
}

func TestConfidenceThresholds_Tier(t *testing.T) {
	th := DefaultConfidenceThresholds()
	assert.Equal(t, ConfidenceHigh, th.Tier(0.75))
	assert.Equal(t, ConfidenceHigh, th.Tier(0.99))
	assert.Equal(t, ConfidenceMedium, th.Tier(0.50))
	assert.Equal(t, ConfidenceMedium, th.Tier(0.749))
	assert.Equal(t, ConfidenceLow, th.Tier(0.499))
	assert.Equal(t, ConfidenceLow, th.Tier(0))
}
