package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_Valid(t *testing.T) {
	patterns := []*Pattern{
		{ID: "pat-modal", Name: "Modal", Category: "overlay"},
		{ID: "pat-button", Name: "Button", Category: "input"},
	}
	embeddings := []*Embedding{
		{PatternID: "pat-button", Vector: []float32{0.1, 0.2, 0.3}},
	}

	snap, err := NewSnapshot(patterns, embeddings)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 3, snap.Dimensions())

	// Patterns come back in ID order regardless of input order.
	ids := make([]string, 0, snap.Len())
	for _, p := range snap.Patterns() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"pat-button", "pat-modal"}, ids)

	assert.NotNil(t, snap.Get("pat-modal"))
	assert.Nil(t, snap.Get("missing"))
	assert.NotNil(t, snap.Embedding("pat-button"))
	assert.Nil(t, snap.Embedding("pat-modal"))
}

func TestNewSnapshot_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		patterns   []*Pattern
		embeddings []*Embedding
		wantErr    string
	}{
		{
			name:     "duplicate pattern id",
			patterns: []*Pattern{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}},
			wantErr:  "duplicate pattern id",
		},
		{
			name:     "empty pattern id",
			patterns: []*Pattern{{Name: "Anonymous"}},
			wantErr:  "empty id",
		},
		{
			name:       "embedding for unknown pattern",
			patterns:   []*Pattern{{ID: "a", Name: "A"}},
			embeddings: []*Embedding{{PatternID: "ghost", Vector: []float32{1}}},
			wantErr:    "unknown pattern",
		},
		{
			name:     "mixed embedding dimensions",
			patterns: []*Pattern{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
			embeddings: []*Embedding{
				{PatternID: "a", Vector: []float32{1, 2}},
				{PatternID: "b", Vector: []float32{1, 2, 3}},
			},
			wantErr: "dimension",
		},
		{
			name:     "duplicate embedding",
			patterns: []*Pattern{{ID: "a", Name: "A"}},
			embeddings: []*Embedding{
				{PatternID: "a", Vector: []float32{1}},
				{PatternID: "a", Vector: []float32{2}},
			},
			wantErr: "duplicate embedding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.patterns, tt.embeddings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewSnapshot_DeduplicatesMetadata(t *testing.T) {
	snap, err := NewSnapshot([]*Pattern{{
		ID:   "pat-button",
		Name: "Button",
		Metadata: Metadata{
			Props:    []string{"size", "Size", " size ", "variant"},
			Variants: []string{"primary", "", "primary"},
		},
	}}, nil)
	require.NoError(t, err)

	p := snap.Get("pat-button")
	assert.Equal(t, []string{"size", "variant"}, p.Metadata.Props)
	assert.Equal(t, []string{"primary"}, p.Metadata.Variants)
}

func TestCanonicalText(t *testing.T) {
	p := &Pattern{
		ID:          "pat-modal",
		Name:        "Modal",
		Category:    "overlay",
		Description: "A modal dialog.",
		Metadata: Metadata{
			Props:         []string{"open", "onClose"},
			Accessibility: []string{"focus-trap"},
		},
	}

	got := p.CanonicalText()
	assert.Equal(t, "Modal (overlay): A modal dialog.. Props: open, onClose. Accessibility: focus-trap", got)

	bare := &Pattern{ID: "x", Name: "Card"}
	assert.Equal(t, "Card", bare.CanonicalText())
}

func TestHolder_Generations(t *testing.T) {
	h := NewHolder()
	assert.Nil(t, h.Load())

	first, err := NewSnapshot([]*Pattern{{ID: "a", Name: "A"}}, nil)
	require.NoError(t, err)
	h.Publish(first)
	assert.Same(t, first, h.Load())
	assert.Equal(t, uint64(1), h.Load().Generation())

	second, err := NewSnapshot([]*Pattern{{ID: "b", Name: "B"}}, nil)
	require.NoError(t, err)
	h.Publish(second)
	assert.Same(t, second, h.Load())
	assert.Equal(t, uint64(2), second.Generation())
}
