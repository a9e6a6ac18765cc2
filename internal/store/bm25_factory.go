package store

import "fmt"

// BM25Backend selects the lexical index implementation.
type BM25Backend string

const (
	// BM25BackendMemory scores every document with exact k1/b control.
	// Default: right-sized for a corpus of tens of patterns.
	BM25BackendMemory BM25Backend = "memory"

	// BM25BackendBleve uses a bleve inverted index. Only matching
	// documents are returned; useful if the corpus outgrows the memory
	// backend.
	BM25BackendBleve BM25Backend = "bleve"
)

// NewBM25Index creates a BM25Index using the named backend. An empty
// backend selects memory.
func NewBM25Index(backend string, config BM25Config) (BM25Index, error) {
	switch backend {
	case string(BM25BackendMemory), "":
		return NewMemoryBM25Index(config), nil
	case string(BM25BackendBleve):
		return NewBleveBM25Index()
	default:
		return nil, fmt.Errorf("unknown BM25 backend: %s (valid options: memory, bleve)", backend)
	}
}
