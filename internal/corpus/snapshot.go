package corpus

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable view of the corpus. A Snapshot is built once
// and never mutated; readers can hold it across a whole query without
// locking. Reloads build a fresh Snapshot and publish it through a
// Holder.
type Snapshot struct {
	patterns   []*Pattern
	byID       map[string]*Pattern
	embeddings map[string][]float32
	dimensions int
	generation uint64
	loadedAt   time.Time
}

// NewSnapshot validates patterns and embeddings and freezes them into a
// Snapshot. Pattern IDs must be unique and non-empty. Embeddings for
// unknown patterns are rejected; patterns without an embedding are
// allowed (they are simply invisible to semantic search). All embedding
// vectors must share one dimensionality.
func NewSnapshot(patterns []*Pattern, embeddings []*Embedding) (*Snapshot, error) {
	byID := make(map[string]*Pattern, len(patterns))
	ordered := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p == nil {
			continue
		}
		if p.ID == "" {
			return nil, fmt.Errorf("pattern %q: empty id", p.Name)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		frozen := normalizePattern(p)
		byID[frozen.ID] = frozen
		ordered = append(ordered, frozen)
	}

	// Stable pattern order regardless of file order.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	vectors := make(map[string][]float32, len(embeddings))
	dims := 0
	for _, e := range embeddings {
		if e == nil {
			continue
		}
		if _, ok := byID[e.PatternID]; !ok {
			return nil, fmt.Errorf("embedding for unknown pattern id %q", e.PatternID)
		}
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("embedding for pattern %q: empty vector", e.PatternID)
		}
		if dims == 0 {
			dims = len(e.Vector)
		} else if len(e.Vector) != dims {
			return nil, fmt.Errorf("embedding for pattern %q: dimension %d, corpus uses %d",
				e.PatternID, len(e.Vector), dims)
		}
		if _, dup := vectors[e.PatternID]; dup {
			return nil, fmt.Errorf("duplicate embedding for pattern id %q", e.PatternID)
		}
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		vectors[e.PatternID] = vec
	}

	return &Snapshot{
		patterns:   ordered,
		byID:       byID,
		embeddings: vectors,
		dimensions: dims,
		loadedAt:   time.Now(),
	}, nil
}

// normalizePattern returns a defensive copy with deduplicated metadata
// sets. Order of first occurrence is preserved.
func normalizePattern(p *Pattern) *Pattern {
	c := *p
	c.Metadata = Metadata{
		Props:         dedupe(p.Metadata.Props),
		Variants:      dedupe(p.Metadata.Variants),
		Events:        dedupe(p.Metadata.Events),
		States:        dedupe(p.Metadata.States),
		Accessibility: dedupe(p.Metadata.Accessibility),
		Dependencies:  dedupe(p.Metadata.Dependencies),
	}
	return &c
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Patterns returns all patterns in ID order. Callers must not mutate.
func (s *Snapshot) Patterns() []*Pattern { return s.patterns }

// Get returns the pattern with the given ID, or nil.
func (s *Snapshot) Get(id string) *Pattern { return s.byID[id] }

// Embedding returns the vector for a pattern ID, or nil if the pattern
// has no embedding.
func (s *Snapshot) Embedding(id string) []float32 { return s.embeddings[id] }

// Embeddings returns all pattern vectors keyed by pattern ID.
func (s *Snapshot) Embeddings() map[string][]float32 { return s.embeddings }

// Len returns the number of patterns.
func (s *Snapshot) Len() int { return len(s.patterns) }

// Dimensions returns the embedding dimensionality, 0 if no embeddings.
func (s *Snapshot) Dimensions() int { return s.dimensions }

// Generation returns the snapshot generation assigned by the Holder.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Stats returns summary statistics.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Patterns:   len(s.patterns),
		Embedded:   len(s.embeddings),
		Dimensions: s.dimensions,
		Generation: s.generation,
		LoadedAt:   s.loadedAt,
	}
}

// CanonicalText renders the textual serialization a pattern is embedded
// from. The corpus builder and any re-embedding tooling must agree on
// this format, so it lives next to the data model.
func (p *Pattern) CanonicalText() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Category != "" {
		b.WriteString(" (" + p.Category + ")")
	}
	if p.Description != "" {
		b.WriteString(": " + p.Description)
	}
	writeFacet := func(label string, values []string) {
		if len(values) == 0 {
			return
		}
		b.WriteString(". " + label + ": " + strings.Join(values, ", "))
	}
	writeFacet("Props", p.Metadata.Props)
	writeFacet("Variants", p.Metadata.Variants)
	writeFacet("Events", p.Metadata.Events)
	writeFacet("States", p.Metadata.States)
	writeFacet("Accessibility", p.Metadata.Accessibility)
	return b.String()
}

// Holder publishes the current Snapshot with a single atomic pointer.
// In-flight queries keep whatever snapshot they loaded; a reload never
// exposes a partially-built corpus.
type Holder struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
}

// NewHolder returns an empty holder. Load returns nil until the first
// Publish.
func NewHolder() *Holder { return &Holder{} }

// Publish assigns the next generation number and swaps the snapshot in.
func (h *Holder) Publish(s *Snapshot) {
	s.generation = h.generation.Add(1)
	h.current.Store(s)
}

// Load returns the current snapshot, or nil if none has been published.
func (h *Holder) Load() *Snapshot { return h.current.Load() }
