package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBleveBM25_SearchMatches(t *testing.T) {
	idx, err := NewBleveBM25Index()
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	require.NoError(t, idx.Index(context.Background(), testDocuments()))
	require.Equal(t, 3, idx.Len())

	results, err := idx.Search(context.Background(), []string{"button"}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "pat-button", results[0].DocID)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestBleveBM25_ReindexKeepsLen(t *testing.T) {
	idx, err := NewBleveBM25Index()
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	require.NoError(t, idx.Index(context.Background(), []*Document{
		{ID: "pat-button", Name: "Button"},
	}))
	require.NoError(t, idx.Index(context.Background(), []*Document{
		{ID: "pat-button", Name: "IconButton"},
	}))

	// Re-indexing an existing ID replaces the document, not adds one.
	assert.Equal(t, 1, idx.Len())

	results, err := idx.Search(context.Background(), []string{"icon"}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "pat-button", results[0].DocID)
}

func TestBleveBM25_EmptyTermsAndEmptyIndex(t *testing.T) {
	idx, err := NewBleveBM25Index()
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	results, err := idx.Search(context.Background(), []string{"button"}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, idx.Index(context.Background(), testDocuments()))
	results, err = idx.Search(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
