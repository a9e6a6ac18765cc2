package search

import (
	"strings"

	"github.com/uigen/patternmatch/internal/store"
)

// QueryBuilder turns a RequirementQuery into the two retrieval inputs:
// a deduplicated lowercase term list for BM25 and a natural-language
// sentence for embedding. Embedding models trained on prose score
// better against a sentence than against raw structured fields, so the
// sentence form exists purely to improve semantic recall.
type QueryBuilder struct{}

// NewQueryBuilder creates a query builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Build produces (lexicalTerms, semanticText). Field weighting is not
// applied here; it happens at index level in the lexical retriever.
// Empty fields are simply omitted, so an all-empty query yields empty
// outputs rather than an error.
func (b *QueryBuilder) Build(q RequirementQuery) ([]string, string) {
	return b.lexicalTerms(q), b.semanticText(q)
}

func (b *QueryBuilder) lexicalTerms(q RequirementQuery) []string {
	var terms []string
	collect := func(values ...string) {
		for _, v := range values {
			terms = append(terms, store.Tokenize(v)...)
		}
	}
	collect(q.ComponentType)
	collect(q.Props...)
	collect(q.Variants...)
	collect(q.Events...)
	collect(q.States...)
	collect(q.Accessibility...)
	return store.DedupeTerms(terms)
}

func (b *QueryBuilder) semanticText(q RequirementQuery) string {
	var parts []string
	if strings.TrimSpace(q.ComponentType) != "" {
		parts = append(parts, "A "+strings.TrimSpace(q.ComponentType)+" component")
	} else {
		parts = append(parts, "A UI component")
	}
	appendFacet := func(label string, values []string) {
		joined := joinNonEmpty(values)
		if joined != "" {
			parts = append(parts, label+": "+joined)
		}
	}
	appendFacet("with props", q.Props)
	appendFacet("variants", q.Variants)
	appendFacet("handling events", q.Events)
	appendFacet("with states", q.States)
	appendFacet("requiring accessibility features", q.Accessibility)

	if len(parts) == 1 && strings.TrimSpace(q.ComponentType) == "" {
		// Nothing to describe at all.
		return ""
	}
	return strings.Join(parts, ", ") + "."
}

func joinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}

// IsEmpty reports whether every field of the query is empty. An empty
// query is still served (degraded signal, low confidence) rather than
// rejected, but callers may want to log it.
func (q RequirementQuery) IsEmpty() bool {
	if strings.TrimSpace(q.ComponentType) != "" {
		return false
	}
	for _, set := range [][]string{q.Props, q.Variants, q.Events, q.States, q.Accessibility} {
		if joinNonEmpty(set) != "" {
			return false
		}
	}
	return true
}
