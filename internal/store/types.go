// Package store provides the in-memory indexes behind both retrievers:
// a field-weighted BM25 keyword index and an HNSW vector store. Indexes
// are built per corpus snapshot and are read-only afterwards.
package store

import "context"

// Document is a pattern materialized for lexical indexing. Field values
// keep their identity so the index can apply per-field weights.
type Document struct {
	ID          string   // Pattern ID
	Name        string   // Pattern name (strongest signal)
	Category    string   // Pattern category / component type
	Props       []string // Prop names
	Variants    []string // Variant names
	Description string   // Free-text description
}

// Field weights for the lexical pseudo-document. Tokens of each field
// are repeated proportionally before indexing, which biases BM25 term
// frequency without touching the scoring formula.
const (
	WeightName        = 3.0
	WeightCategory    = 2.0
	WeightProps       = 1.5
	WeightVariants    = 1.5
	WeightDescription = 1.0
)

// LexicalResult is a single BM25 hit.
type LexicalResult struct {
	DocID        string
	Score        float64
	MatchedTerms []string
}

// BM25Index scores documents against query terms.
type BM25Index interface {
	// Index adds documents. Safe to call multiple times before Search.
	Index(ctx context.Context, docs []*Document) error

	// Search scores documents against the terms, ordered by descending
	// score with ties broken by ascending document ID.
	Search(ctx context.Context, terms []string, limit int) ([]*LexicalResult, error)

	// Len returns the number of indexed documents.
	Len() int

	// Close releases index resources.
	Close() error
}

// BM25Config configures BM25 scoring.
type BM25Config struct {
	// K1 is the term-frequency saturation parameter.
	K1 float64

	// B is the length-normalization parameter.
	B float64
}

// DefaultBM25Config returns the engine's standard parameters.
func DefaultBM25Config() BM25Config {
	return BM25Config{K1: 1.5, B: 0.75}
}

// VectorResult is a single nearest-neighbor hit.
type VectorResult struct {
	ID       string  // Pattern ID
	Distance float32 // Cosine distance (0-2)
	Score    float32 // Similarity (0-1)
}

// VectorStore ranks stored vectors by similarity to a query vector.
type VectorStore interface {
	// Add inserts vectors with their IDs.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search finds the k nearest neighbors to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Count returns the number of stored vectors.
	Count() int

	// Close releases resources.
	Close() error
}
