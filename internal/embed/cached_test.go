package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records how many times the inner provider is hit.
type countingEmbedder struct {
	inner      Embedder
	embedCalls int
	batchTexts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embedCalls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batchTexts += len(texts)
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int                    { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string                  { return c.inner.ModelName() }
func (c *countingEmbedder) Available(ctx context.Context) bool { return c.inner.Available(ctx) }
func (c *countingEmbedder) Close() error                       { return c.inner.Close() }

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder()}
	cached := NewCachedEmbedder(counting, 10)
	defer func() { _ = cached.Close() }()

	first, err := cached.Embed(context.Background(), "button")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "button")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.embedCalls)

	_, err = cached.Embed(context.Background(), "modal")
	require.NoError(t, err)
	assert.Equal(t, 2, counting.embedCalls)
}

func TestCachedEmbedder_BatchReusesPartialOverlap(t *testing.T) {
	counting := &countingEmbedder{inner: NewStaticEmbedder()}
	cached := NewCachedEmbedder(counting, 10)
	defer func() { _ = cached.Close() }()

	_, err := cached.EmbedBatch(context.Background(), []string{"button", "modal"})
	require.NoError(t, err)
	assert.Equal(t, 2, counting.batchTexts)

	vecs, err := cached.EmbedBatch(context.Background(), []string{"modal", "card"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, 3, counting.batchTexts) // only "card" went to the inner embedder
}

func TestCachedEmbedder_DelegatesMetadata(t *testing.T) {
	cached := NewCachedEmbedder(NewStaticEmbedder(), 0)
	defer func() { _ = cached.Close() }()

	assert.Equal(t, StaticDimensions, cached.Dimensions())
	assert.Equal(t, "static", cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
	assert.IsType(t, (*StaticEmbedder)(nil), cached.Inner())
}
