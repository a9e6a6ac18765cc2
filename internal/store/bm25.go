package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryBM25Index is the default lexical backend: a transparent BM25
// implementation over weighted pseudo-documents. For a corpus of tens of
// patterns an inverted index buys nothing, and holding the term
// frequencies directly keeps the k1/b parameters and the all-documents
// scoring contract exact. Larger corpora can switch to the bleve
// backend via the factory.
type MemoryBM25Index struct {
	mu     sync.RWMutex
	config BM25Config

	docs     map[string]*indexedDoc // doc ID -> weighted term frequencies
	docIDs   []string               // ascending, rebuilt on Index
	df       map[string]int         // term -> number of docs containing it
	totalLen float64                // sum of weighted doc lengths
	closed   bool
}

type indexedDoc struct {
	tf     map[string]float64 // weighted term frequency
	length float64            // sum of weighted frequencies
}

// NewMemoryBM25Index creates an empty index with the given parameters.
func NewMemoryBM25Index(config BM25Config) *MemoryBM25Index {
	if config.K1 <= 0 {
		config.K1 = DefaultBM25Config().K1
	}
	if config.B < 0 || config.B > 1 {
		config.B = DefaultBM25Config().B
	}
	return &MemoryBM25Index{
		config: config,
		docs:   make(map[string]*indexedDoc),
		df:     make(map[string]int),
	}
}

// Index adds documents, materializing each into a weighted
// pseudo-document. Re-indexing an existing ID replaces it.
func (m *MemoryBM25Index) Index(ctx context.Context, docs []*Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("index is closed")
	}

	for _, doc := range docs {
		if doc == nil || doc.ID == "" {
			continue
		}
		if old, exists := m.docs[doc.ID]; exists {
			m.removeLocked(doc.ID, old)
		}
		idx := buildPseudoDocument(doc)
		m.docs[doc.ID] = idx
		m.totalLen += idx.length
		for term := range idx.tf {
			m.df[term]++
		}
	}

	m.docIDs = m.docIDs[:0]
	for id := range m.docs {
		m.docIDs = append(m.docIDs, id)
	}
	sort.Strings(m.docIDs)

	return nil
}

func (m *MemoryBM25Index) removeLocked(id string, doc *indexedDoc) {
	m.totalLen -= doc.length
	for term := range doc.tf {
		if m.df[term] <= 1 {
			delete(m.df, term)
		} else {
			m.df[term]--
		}
	}
	delete(m.docs, id)
}

// buildPseudoDocument accumulates weighted term frequencies per field.
// A weight of 1.5 counts each occurrence as 1.5 repetitions, which is
// the fractional generalization of token repetition.
func buildPseudoDocument(doc *Document) *indexedDoc {
	idx := &indexedDoc{tf: make(map[string]float64)}
	add := func(weight float64, texts ...string) {
		for _, text := range texts {
			for _, term := range Tokenize(text) {
				idx.tf[term] += weight
				idx.length += weight
			}
		}
	}
	add(WeightName, doc.Name)
	add(WeightCategory, doc.Category)
	add(WeightProps, doc.Props...)
	add(WeightVariants, doc.Variants...)
	add(WeightDescription, doc.Description)
	return idx
}

// Search scores every indexed document against the query terms. Results
// are ordered by descending score, ties broken by ascending document ID
// for reproducibility. A non-positive limit returns all documents.
func (m *MemoryBM25Index) Search(ctx context.Context, terms []string, limit int) ([]*LexicalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if len(m.docs) == 0 {
		return []*LexicalResult{}, nil
	}

	terms = DedupeTerms(terms)
	n := float64(len(m.docs))
	avgLen := m.totalLen / n

	results := make([]*LexicalResult, 0, len(m.docs))
	for _, id := range m.docIDs {
		doc := m.docs[id]
		var score float64
		var matched []string
		for _, term := range terms {
			tf, ok := doc.tf[term]
			if !ok {
				continue
			}
			matched = append(matched, term)
			df := float64(m.df[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - m.config.B + m.config.B*(doc.length/avgLen)
			score += idf * tf * (m.config.K1 + 1) / (tf + m.config.K1*norm)
		}
		results = append(results, &LexicalResult{
			DocID:        id,
			Score:        score,
			MatchedTerms: matched,
		})
	}

	// docIDs are ascending, so a stable sort on score preserves the ID
	// tie-break without a compound comparator.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Len returns the number of indexed documents.
func (m *MemoryBM25Index) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Close marks the index closed.
func (m *MemoryBM25Index) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ BM25Index = (*MemoryBM25Index)(nil)
