package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

func TestGraph_Walk(t *testing.T) {
	g := MustCanonical()

	d, err := g.Walk(nil)
	require.NoError(t, err)
	assert.Equal(t, "start", d.ID)

	d, err = g.Walk([]string{"Create the AI", "Keep it contained"})
	require.NoError(t, err)
	assert.Equal(t, "ai-escape", d.ID)

	_, err = g.Walk([]string{"Create the AI", "Offer your expertise"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))

	_, err = g.Walk([]string{"Create the AI", "Grant freedom", "Remain human"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choice is terminal")
}

func TestGraph_Depth(t *testing.T) {
	g := MustCanonical()

	for id, want := range map[string]int{
		"start":        0,
		"ai-rights":    1,
		"intervention": 1,
		"ai-society":   2,
		"reflection":   2,
	} {
		got, ok := g.Depth(id)
		require.True(t, ok, id)
		assert.Equal(t, want, got, id)
	}

	_, ok := g.Depth("nope")
	assert.False(t, ok)
}

func TestGraph_WalkthroughIsDepthFirstInChoiceOrder(t *testing.T) {
	var ids []string
	for _, d := range MustCanonical().Walkthrough() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{
		"start", "ai-rights", "ai-society", "ai-escape",
		"intervention", "legacy", "reflection",
	}, ids)
}

func TestDilemma_ChoiceAndSibling(t *testing.T) {
	d := MustCanonical().Root

	_, ok := d.Choice("free")
	assert.False(t, ok, "choice of another dilemma")

	s, ok := d.Sibling("refuse")
	require.True(t, ok)
	assert.Equal(t, "create", s.ID)

	_, ok = d.Sibling("free")
	assert.False(t, ok)
}

func TestValidate_HandBuiltGraph(t *testing.T) {
	leaf := &Dilemma{ID: "leaf", Question: "Q", Context: "C"}
	leaf.Choices = [2]*Choice{{ID: "x", Text: "X"}, {ID: "y", Text: "Y"}}
	root := &Dilemma{ID: "root", Question: "Q", Context: "C"}
	root.Choices = [2]*Choice{{ID: "a", Text: "A", Next: leaf}, {ID: "b", Text: "B"}}

	g := &Graph{Root: root, Dilemmas: map[string]*Dilemma{"root": root, "leaf": leaf}}
	require.NoError(t, Validate(g))

	// A loop back to the root.
	leaf.Choices[1].Next = root
	err := Validate(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle through dilemma")

	// The same dilemma behind both choices.
	leaf.Choices[1].Next = nil
	root.Choices[1].Next = leaf
	err = Validate(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one path")

	assert.Error(t, Validate(nil))
	assert.Error(t, Validate(&Graph{}))
}
