package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder_Build(t *testing.T) {
	b := NewQueryBuilder()

	terms, text := b.Build(RequirementQuery{
		ComponentType: "DatePicker",
		Props:         []string{"value", "onChange"},
		Accessibility: []string{"keyboard-navigable"},
	})

	assert.Equal(t, []string{"date", "picker", "value", "on", "change", "keyboard", "navigable"}, terms)
	assert.Equal(t,
		"A DatePicker component, with props: value, onChange, requiring accessibility features: keyboard-navigable.",
		text)
}

func TestQueryBuilder_DeduplicatesTerms(t *testing.T) {
	b := NewQueryBuilder()

	terms, _ := b.Build(RequirementQuery{
		ComponentType: "Button",
		Props:         []string{"buttonSize"},
		Variants:      []string{"size"},
	})

	assert.Equal(t, []string{"button", "size"}, terms)
}

func TestQueryBuilder_EmptyQuery(t *testing.T) {
	b := NewQueryBuilder()

	terms, text := b.Build(RequirementQuery{})
	assert.Empty(t, terms)
	assert.Empty(t, text)
}

func TestQueryBuilder_FacetsWithoutType(t *testing.T) {
	b := NewQueryBuilder()

	_, text := b.Build(RequirementQuery{States: []string{"loading", "error"}})
	assert.Equal(t, "A UI component, with states: loading, error.", text)
}

func TestRequirementQuery_IsEmpty(t *testing.T) {
	assert.True(t, RequirementQuery{}.IsEmpty())
	assert.True(t, RequirementQuery{ComponentType: "  ", Props: []string{"", " "}}.IsEmpty())
	assert.False(t, RequirementQuery{ComponentType: "Button"}.IsEmpty())
	assert.False(t, RequirementQuery{Events: []string{"onClick"}}.IsEmpty())
}
