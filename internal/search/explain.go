package search

import (
	"fmt"
	"strings"

	"github.com/uigen/patternmatch/internal/corpus"
)

// Explainer computes confidence labels and feature-level justifications
// for the top fused results. Pure computation; thresholds are injected
// so calibration is a config change.
type Explainer struct {
	thresholds ConfidenceThresholds
}

// NewExplainer creates an explainer with the given thresholds.
func NewExplainer(thresholds ConfidenceThresholds) *Explainer {
	return &Explainer{thresholds: thresholds}
}

// Explain truncates the fused ranking to topK and builds a ScoredMatch
// for each surviving entry. Truncation happens first so explanations
// are only computed for entries that will be returned. topK <= 0 yields
// an empty list. Fused entries whose pattern vanished from the snapshot
// are skipped; that can only happen if a caller mixes snapshots.
func (e *Explainer) Explain(fused []FusedScore, query RequirementQuery, snap *corpus.Snapshot, topK int, weights Weights) []ScoredMatch {
	if topK <= 0 || len(fused) == 0 {
		return []ScoredMatch{}
	}
	if len(fused) > topK {
		fused = fused[:topK]
	}

	weights = weights.Normalized()
	matches := make([]ScoredMatch, 0, len(fused))
	for _, f := range fused {
		pattern := snap.Get(f.PatternID)
		if pattern == nil {
			continue
		}

		matchedProps := intersect(query.Props, pattern.Metadata.Props)
		matchedVariants := intersect(query.Variants, pattern.Metadata.Variants)
		matchedAccessibility := intersect(query.Accessibility, pattern.Metadata.Accessibility)

		matches = append(matches, ScoredMatch{
			FusedScore: f,
			Name:       pattern.Name,
			Category:   pattern.Category,
			Confidence: e.thresholds.Tier(f.WeightedScore),
			Explanation: Explanation{
				MatchedProps:         matchedProps,
				MatchedVariants:      matchedVariants,
				MatchedAccessibility: matchedAccessibility,
				MatchReason:          matchReason(query, matchedProps, matchedVariants, matchedAccessibility),
				WeightBreakdown:      weights,
			},
			Code: pattern.Code,
		})
	}
	return matches
}

// intersect returns the query values present in the pattern's metadata,
// compared case-insensitively. Order and casing follow the query, which
// reads better in the explanation ("you asked for X and the pattern has
// it") than the pattern's internal spelling.
func intersect(queryValues, patternValues []string) []string {
	out := make([]string, 0, len(queryValues))
	if len(queryValues) == 0 || len(patternValues) == 0 {
		return out
	}
	have := make(map[string]struct{}, len(patternValues))
	for _, v := range patternValues {
		have[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	seen := make(map[string]struct{}, len(queryValues))
	for _, v := range queryValues {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := have[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// matchReason renders the short templated justification, e.g.
// "Matches 3/4 requested props and 2/2 accessibility requirements."
func matchReason(query RequirementQuery, props, variants, accessibility []string) string {
	var clauses []string
	if n := countNonEmpty(query.Props); n > 0 {
		clauses = append(clauses, fmt.Sprintf("%d/%d requested props", len(props), n))
	}
	if n := countNonEmpty(query.Variants); n > 0 {
		clauses = append(clauses, fmt.Sprintf("%d/%d requested variants", len(variants), n))
	}
	if n := countNonEmpty(query.Accessibility); n > 0 {
		clauses = append(clauses, fmt.Sprintf("%d/%d accessibility requirements", len(accessibility), n))
	}
	if len(clauses) == 0 {
		if strings.TrimSpace(query.ComponentType) != "" {
			return fmt.Sprintf("Ranked by similarity to %q.", query.ComponentType)
		}
		return "Ranked by overall similarity."
	}
	return "Matches " + joinClauses(clauses) + "."
}

func countNonEmpty(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key != "" {
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 1:
		return clauses[0]
	case 2:
		return clauses[0] + " and " + clauses[1]
	default:
		return strings.Join(clauses[:len(clauses)-1], ", ") + " and " + clauses[len(clauses)-1]
	}
}
