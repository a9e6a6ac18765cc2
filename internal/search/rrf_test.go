package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRFFuse_ConsensusWins(t *testing.T) {
	lists := [][]RawScore{
		{
			{PatternID: "a", Score: 0.9, Rank: 1},
			{PatternID: "b", Score: 0.8, Rank: 2},
		},
		{
			{PatternID: "a", Score: 0.7, Rank: 1},
			{PatternID: "c", Score: 0.6, Rank: 2},
		},
		{
			{PatternID: "b", Score: 0.9, Rank: 1},
			{PatternID: "a", Score: 0.5, Rank: 2},
		},
	}

	merged := rrfFuse(lists, DefaultRRFConstant)
	require.Len(t, merged, 3)

	// "a" appears in all three lists, twice at rank 1.
	assert.Equal(t, "a", merged[0].PatternID)
	assert.Equal(t, 1, merged[0].Rank)
	assert.InDelta(t, 1.0/61+1.0/61+1.0/62, merged[0].Score, 1e-12)
	assert.Equal(t, "b", merged[1].PatternID)
	assert.Equal(t, "c", merged[2].PatternID)
}

func TestRRFFuse_TieBreakByID(t *testing.T) {
	lists := [][]RawScore{
		{{PatternID: "z", Score: 0.9, Rank: 1}},
		{{PatternID: "a", Score: 0.9, Rank: 1}},
	}

	merged := rrfFuse(lists, 0) // non-positive k falls back to the default
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].PatternID)
	assert.Equal(t, "z", merged[1].PatternID)
	assert.Equal(t, merged[0].Score, merged[1].Score)
}

func TestRRFFuse_Empty(t *testing.T) {
	assert.Empty(t, rrfFuse(nil, DefaultRRFConstant))
	assert.Empty(t, rrfFuse([][]RawScore{{}, {}}, DefaultRRFConstant))
}
