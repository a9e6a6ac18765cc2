package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHNSWStore_SearchOrdersBySimilarity(t *testing.T) {
	s, err := NewHNSWStore(DefaultHNSWConfig(3))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Add(context.Background(), []string{"x", "y", "z"}, [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	})
	require.NoError(t, err)
	require.Equal(t, 3, s.Count())

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "x", results[0].ID)
	assert.Equal(t, "y", results[1].ID)
	assert.Equal(t, "z", results[2].ID)

	// Exact match has similarity ~1, orthogonal vector ~0.5 under the
	// cosine-distance mapping score = 1 - d/2.
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
	assert.InDelta(t, 0.5, float64(results[2].Score), 1e-5)
}

func TestHNSWStore_DimensionMismatch(t *testing.T) {
	s, err := NewHNSWStore(DefaultHNSWConfig(4))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Add(context.Background(), []string{"a"}, [][]float32{{1, 2}})
	var dimErr ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)

	_, err = s.Search(context.Background(), []float32{1, 2, 3}, 1)
	assert.ErrorAs(t, err, &dimErr)
}

func TestHNSWStore_RejectsZeroVectors(t *testing.T) {
	s, err := NewHNSWStore(DefaultHNSWConfig(2))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// Cosine distance against a zero vector is NaN, so zero vectors are
	// rejected on both paths.
	err = s.Add(context.Background(), []string{"a"}, [][]float32{{0, 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero-magnitude")
	assert.Zero(t, s.Count())

	require.NoError(t, s.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}}))
	_, err = s.Search(context.Background(), []float32{0, 0}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero-magnitude")
}

func TestHNSWStore_EmptySearch(t *testing.T) {
	s, err := NewHNSWStore(DefaultHNSWConfig(2))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	results, err := s.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSWStore_ReplaceVector(t *testing.T) {
	s, err := NewHNSWStore(DefaultHNSWConfig(2))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}}))
	require.NoError(t, s.Add(context.Background(), []string{"a"}, [][]float32{{0, 1}}))
	assert.Equal(t, 1, s.Count())

	results, err := s.Search(context.Background(), []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}
