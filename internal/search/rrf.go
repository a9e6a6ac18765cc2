package search

// DefaultRRFConstant is the standard dampening constant for reciprocal
// rank fusion. Larger values flatten the difference between adjacent
// ranks.
const DefaultRRFConstant = 60

// rrfFuse merges several rankings of the same corpus with reciprocal
// rank fusion: each list contributes 1/(k+rank) for every pattern it
// ranked, so patterns that appear high across many lists accumulate
// the most credit. Used by the multi-query strategy to combine the
// per-paraphrase semantic rankings; scores are RRF scores, not cosine
// similarities, which is fine because fusion min-max normalizes per
// list anyway.
func rrfFuse(lists [][]RawScore, k int) []RawScore {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	accum := make(map[string]float64)
	for _, list := range lists {
		for _, s := range list {
			accum[s.PatternID] += 1.0 / float64(k+s.Rank)
		}
	}

	merged := make([]RawScore, 0, len(accum))
	for id, score := range accum {
		merged = append(merged, RawScore{PatternID: id, Score: score})
	}
	assignRanks(merged)
	return merged
}
