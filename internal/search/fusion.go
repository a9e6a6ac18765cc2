package search

import "sort"

// Fuse combines the two raw score lists into one ranking. Each list is
// min-max normalized independently to [0,1] using its own bounds (a
// list whose scores are all equal maps to 0.5 for every entry), then
// combined as wLex*normLex + wSem*normSem with the weights normalized
// to sum to 1.
//
// A pattern present in only one list keeps its available signal: the
// weighted score is computed over the present signals' weights alone
// and the entry is flagged degraded, so a pattern is never excluded
// just because one retriever missed it. Output is sorted descending by
// weighted score, ties broken by ascending pattern ID. Pure and
// deterministic; empty inputs yield an empty list.
func Fuse(lex, sem []RawScore, weights Weights) []FusedScore {
	if len(lex) == 0 && len(sem) == 0 {
		return []FusedScore{}
	}

	weights = weights.Normalized()
	normLex := normalizeScores(lex)
	normSem := normalizeScores(sem)

	fused := make(map[string]*FusedScore, len(lex)+len(sem))
	for _, s := range lex {
		fused[s.PatternID] = &FusedScore{
			PatternID:    s.PatternID,
			LexicalScore: s.Score,
			LexicalRank:  s.Rank,
		}
	}
	for _, s := range sem {
		f, ok := fused[s.PatternID]
		if !ok {
			f = &FusedScore{PatternID: s.PatternID}
			fused[s.PatternID] = f
		}
		f.SemanticScore = s.Score
		f.SemanticRank = s.Rank
	}

	results := make([]FusedScore, 0, len(fused))
	for id, f := range fused {
		var sum, denom float64
		if f.LexicalRank > 0 {
			sum += weights.Lexical * normLex[id]
			denom += weights.Lexical
		}
		if f.SemanticRank > 0 {
			sum += weights.Semantic * normSem[id]
			denom += weights.Semantic
		}
		if denom > 0 {
			f.WeightedScore = sum / denom
		}
		f.Degraded = f.LexicalRank == 0 || f.SemanticRank == 0
		results = append(results, *f)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].WeightedScore != results[j].WeightedScore {
			return results[i].WeightedScore > results[j].WeightedScore
		}
		return results[i].PatternID < results[j].PatternID
	})
	return results
}

// normalizeScores min-max scales a score list into [0,1] keyed by
// pattern ID. All-equal lists (including singletons) map to 0.5, the
// neutral midpoint, instead of dividing by zero.
func normalizeScores(scores []RawScore) map[string]float64 {
	norm := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return norm
	}

	minScore, maxScore := scores[0].Score, scores[0].Score
	for _, s := range scores[1:] {
		if s.Score < minScore {
			minScore = s.Score
		}
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}

	spread := maxScore - minScore
	for _, s := range scores {
		if spread == 0 {
			norm[s.PatternID] = 0.5
		} else {
			norm[s.PatternID] = (s.Score - minScore) / spread
		}
	}
	return norm
}
