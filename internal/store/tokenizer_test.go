package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "camel case component name",
			input: "DatePicker",
			want:  []string{"date", "picker"},
		},
		{
			name:  "kebab case accessibility term",
			input: "aria-label",
			want:  []string{"aria", "label"},
		},
		{
			name:  "acronym run kept together",
			input: "ARIALabel",
			want:  []string{"aria", "label"},
		},
		{
			name:  "sentence with punctuation",
			input: "A modal dialog, with focus trap.",
			want:  []string{"modal", "dialog", "with", "focus", "trap"},
		},
		{
			name:  "single characters dropped",
			input: "a b size",
			want:  []string{"size"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestSplitCamelCase(t *testing.T) {
	assert.Equal(t, []string{"on", "Click"}, SplitCamelCase("onClick"))
	assert.Equal(t, []string{"HTML", "Parser"}, SplitCamelCase("HTMLParser"))
	assert.Equal(t, []string{"Button"}, SplitCamelCase("Button"))
	assert.Equal(t, []string{}, SplitCamelCase(""))
}

func TestDedupeTerms(t *testing.T) {
	got := DedupeTerms([]string{"Size", "size", " variant ", "", "SIZE", "color"})
	assert.Equal(t, []string{"size", "variant", "color"}, got)
}
