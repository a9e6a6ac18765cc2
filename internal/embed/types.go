// Package embed provides query embedding behind a single Embedder
// interface: a remote OpenAI provider, a deterministic static fallback,
// and an LRU-cached wrapper. The engine treats providers as black
// boxes; transient failures are handled by the retry policy consumed by
// the semantic retriever.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultDimensions matches text-embedding-3-small.
	DefaultDimensions = 1536

	// StaticDimensions is the dimensionality of the static fallback.
	StaticDimensions = 256

	// DefaultEmbedTimeout bounds a single embedding call. Exceeding it
	// counts as a transient failure for retry purposes.
	DefaultEmbedTimeout = 300 * time.Millisecond
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimensionality.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks whether the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
