package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search"
)

const (
	patternTokenizerName = "pattern_tokenizer"
	patternAnalyzerName  = "pattern_analyzer"
)

func init() {
	registry.RegisterTokenizer(patternTokenizerName, patternTokenizerConstructor)
}

// BleveBM25Index is the alternate lexical backend, backed by an
// in-memory bleve index. Field weighting is applied by whole-number
// token repetition (weights scaled x2 so the 1.5 tiers stay integral),
// and bleve manages its own BM25 parameters. Unlike the memory backend
// it only returns documents with at least one matching term.
type BleveBM25Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	ids    map[string]struct{}
	closed bool
}

type bleveDocument struct {
	Content string `json:"content"`
}

// NewBleveBM25Index creates an in-memory bleve index with the pattern
// analyzer.
func NewBleveBM25Index() (*BleveBM25Index, error) {
	indexMapping, err := createPatternMapping()
	if err != nil {
		return nil, fmt.Errorf("create index mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &BleveBM25Index{index: idx, ids: make(map[string]struct{})}, nil
}

func createPatternMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(patternAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     patternTokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = patternAnalyzerName
	return indexMapping, nil
}

// Index adds documents as weighted pseudo-documents.
func (b *BleveBM25Index) Index(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		if doc == nil || doc.ID == "" {
			continue
		}
		if err := batch.Index(doc.ID, bleveDocument{Content: renderWeightedContent(doc)}); err != nil {
			return fmt.Errorf("index document %s: %w", doc.ID, err)
		}
		// Re-indexing an ID replaces the document, so count by ID.
		b.ids[doc.ID] = struct{}{}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}
	return nil
}

// renderWeightedContent repeats each field's text proportional to its
// weight, scaled by 2 to keep repetitions whole.
func renderWeightedContent(doc *Document) string {
	var b strings.Builder
	repeat := func(weight float64, texts ...string) {
		n := int(weight * 2)
		for _, text := range texts {
			if text == "" {
				continue
			}
			for i := 0; i < n; i++ {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
	}
	repeat(WeightName, doc.Name)
	repeat(WeightCategory, doc.Category)
	repeat(WeightProps, doc.Props...)
	repeat(WeightVariants, doc.Variants...)
	repeat(WeightDescription, doc.Description)
	return b.String()
}

// Search runs a match query over the pseudo-documents.
func (b *BleveBM25Index) Search(ctx context.Context, terms []string, limit int) ([]*LexicalResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	terms = DedupeTerms(terms)
	if len(terms) == 0 || len(b.ids) == 0 {
		return []*LexicalResult{}, nil
	}

	matchQuery := bleve.NewMatchQuery(strings.Join(terms, " "))
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	if limit <= 0 {
		limit = len(b.ids)
	}
	req.Size = limit
	req.IncludeLocations = true

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	results := make([]*LexicalResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, &LexicalResult{
			DocID:        hit.ID,
			Score:        hit.Score,
			MatchedTerms: extractMatchedTerms(hit),
		})
	}
	return results, nil
}

// Len returns the number of indexed documents.
func (b *BleveBM25Index) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ids)
}

// Close closes the underlying bleve index.
func (b *BleveBM25Index) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

func extractMatchedTerms(hit *search.DocumentMatch) []string {
	terms := make(map[string]struct{})
	for field, locations := range hit.Locations {
		if field == "content" {
			for term := range locations {
				terms[term] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(terms))
	for term := range terms {
		out = append(out, term)
	}
	return out
}

var _ BM25Index = (*BleveBM25Index)(nil)

func patternTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &patternTokenizer{}, nil
}

// patternTokenizer adapts Tokenize to bleve's analysis interface.
type patternTokenizer struct{}

func (t *patternTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := Tokenize(text)

	result := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, token := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), token)
		if start == -1 {
			start = offset
		} else {
			start += offset
		}
		end := start + len(token)
		result = append(result, &analysis.Token{
			Term:     []byte(token),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		if end <= len(text) {
			offset = end
		}
	}
	return result
}
