// Package search implements hybrid pattern retrieval: a field-weighted
// BM25 lexical ranking and an embedding cosine ranking run concurrently,
// fused by weighted min-max normalization, explained per result, and
// orchestrated under one deadline with graceful degradation.
package search

import (
	"time"

	"github.com/uigen/patternmatch/internal/embed"
	"github.com/uigen/patternmatch/internal/store"
)

// RequirementQuery is the structured requirement object produced
// upstream. Read-only input; all set-valued fields may be empty.
type RequirementQuery struct {
	ComponentType string   `json:"component_type"`
	Props         []string `json:"props,omitempty"`
	Variants      []string `json:"variants,omitempty"`
	Events        []string `json:"events,omitempty"`
	States        []string `json:"states,omitempty"`
	Accessibility []string `json:"accessibility,omitempty"`
}

// RawScore is one retriever's score for one pattern. Rank is the
// 1-based position in that retriever's own ordering, ties broken by
// ascending pattern ID.
type RawScore struct {
	PatternID string  `json:"pattern_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// FusedScore combines both retrieval signals for one pattern. A rank of
// 0 means the pattern was absent from that retriever's list; Degraded
// marks entries whose weighted score was computed from a single signal.
type FusedScore struct {
	PatternID     string  `json:"pattern_id"`
	LexicalScore  float64 `json:"lexical_score"`
	LexicalRank   int     `json:"lexical_rank"`
	SemanticScore float64 `json:"semantic_score"`
	SemanticRank  int     `json:"semantic_rank"`
	WeightedScore float64 `json:"weighted_score"`
	Degraded      bool    `json:"degraded,omitempty"`
}

// Confidence is the calibrated trust tier for a match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Weights are the fusion coefficients. They are normalized to sum to 1
// before use so the weighted score stays in [0,1].
type Weights struct {
	Lexical  float64 `json:"lexical"`
	Semantic float64 `json:"semantic"`
}

// DefaultWeights favors the semantic signal, which generalizes better
// across paraphrased requirements; the lexical weight corrects for
// exact-keyword queries.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.3, Semantic: 0.7}
}

// Normalized returns weights scaled to sum to 1. Non-positive weights
// are clamped to zero; if both end up zero, the default split is used.
func (w Weights) Normalized() Weights {
	if w.Lexical < 0 {
		w.Lexical = 0
	}
	if w.Semantic < 0 {
		w.Semantic = 0
	}
	sum := w.Lexical + w.Semantic
	if sum == 0 {
		return DefaultWeights()
	}
	return Weights{Lexical: w.Lexical / sum, Semantic: w.Semantic / sum}
}

// Explanation justifies one returned match at the feature level.
type Explanation struct {
	MatchedProps         []string `json:"matched_props"`
	MatchedVariants      []string `json:"matched_variants"`
	MatchedAccessibility []string `json:"matched_accessibility"`
	MatchReason          string   `json:"match_reason"`
	WeightBreakdown      Weights  `json:"weight_breakdown"`
}

// ScoredMatch is the final per-pattern output: the fused score plus
// confidence, explanation, and the pattern's reference code for the
// downstream generation step.
type ScoredMatch struct {
	FusedScore
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Confidence  Confidence  `json:"confidence"`
	Explanation Explanation `json:"explanation"`
	Code        string      `json:"code"`
}

// RetrievalMetadata describes how a response was produced. MethodsUsed
// is ["bm25","semantic"] for a full hybrid response and ["bm25"] when
// the semantic path was unavailable.
type RetrievalMetadata struct {
	Latency               time.Duration `json:"latency_ns"`
	MethodsUsed           []string      `json:"methods_used"`
	TotalPatternsSearched int           `json:"total_patterns_searched"`
	Degraded              bool          `json:"degraded"`
	DegradedReason        string        `json:"degraded_reason,omitempty"`
	CorpusGeneration      uint64        `json:"corpus_generation,omitempty"`
}

// ConfidenceThresholds map weighted scores to confidence tiers. They
// are configuration so calibration never needs a code change.
type ConfidenceThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

// DefaultConfidenceThresholds returns the standard tiers.
func DefaultConfidenceThresholds() ConfidenceThresholds {
	return ConfidenceThresholds{High: 0.75, Medium: 0.50}
}

// Tier maps a weighted score to its confidence label.
func (t ConfidenceThresholds) Tier(score float64) Confidence {
	switch {
	case score >= t.High:
		return ConfidenceHigh
	case score >= t.Medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// EngineConfig configures the retrieval engine.
type EngineConfig struct {
	// Weights are the fusion coefficients.
	Weights Weights

	// Thresholds map weighted scores to confidence tiers.
	Thresholds ConfidenceThresholds

	// DefaultTopK is the result count transports use when the caller
	// does not set a limit. Retrieve itself treats topK <= 0 as
	// "return nothing".
	DefaultTopK int

	// MaxTopK caps the result count per query.
	MaxTopK int

	// OverallTimeout is the per-query deadline covering retrieval,
	// fusion, and explanation.
	OverallTimeout time.Duration

	// Retry governs embedding calls in the semantic retriever.
	Retry embed.RetryPolicy

	// BM25 holds the lexical scoring parameters.
	BM25 store.BM25Config

	// BM25Backend selects the lexical index implementation.
	BM25Backend string

	// MultiQuery enables the paraphrase + reciprocal-rank-fusion
	// semantic strategy. Off by default; requires a Paraphraser.
	MultiQuery bool
}

// DefaultEngineConfig returns production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights:        DefaultWeights(),
		Thresholds:     DefaultConfidenceThresholds(),
		DefaultTopK:    5,
		MaxTopK:        50,
		OverallTimeout: 5 * time.Second,
		Retry:          embed.DefaultRetryPolicy(),
		BM25:           store.DefaultBM25Config(),
		BM25Backend:    string(store.BM25BackendMemory),
	}
}
