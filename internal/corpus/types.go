// Package corpus holds the pattern corpus: the reference implementations
// the retrieval engine ranks against. Patterns are loaded once from a
// corpus file, frozen into an immutable Snapshot, and republished as a
// whole on reload.
package corpus

import "time"

// Pattern is one curated reference implementation. Immutable once loaded.
type Pattern struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata carries the structured facets used for matching and
// explanation. All fields are ordered sets: order is preserved from the
// corpus file, duplicates are removed at load time, and a missing field
// decodes to an empty slice, never nil.
type Metadata struct {
	Props         []string `json:"props"`
	Variants      []string `json:"variants"`
	Events        []string `json:"events"`
	States        []string `json:"states"`
	Accessibility []string `json:"accessibility"`
	Dependencies  []string `json:"dependencies"`
}

// Embedding associates a pre-computed vector with a pattern. Vectors are
// computed from the pattern's canonical text (see Pattern.CanonicalText),
// not from the raw code.
type Embedding struct {
	PatternID string    `json:"pattern_id"`
	Vector    []float32 `json:"vector"`
}

// File is the on-disk corpus interchange format.
type File struct {
	Patterns   []*Pattern   `json:"patterns"`
	Embeddings []*Embedding `json:"embeddings,omitempty"`
}

// Stats summarizes a loaded snapshot.
type Stats struct {
	Patterns   int       `json:"patterns"`
	Embedded   int       `json:"embedded"`
	Dimensions int       `json:"dimensions"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loaded_at"`
}
