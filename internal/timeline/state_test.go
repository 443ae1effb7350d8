package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

func TestRestore_RoundTrip(t *testing.T) {
	e := newCanonicalEngine(t)
	_, err := e.ApplyChoice(RootID, "create")
	require.NoError(t, err)
	_, err = e.ApplyChoice("timeline-1", "withdraw")
	require.NoError(t, err)

	states := e.States()
	restored, err := Restore(narrative.MustCanonical(), narrative.DefaultPalette, states, WithIDGenerator(func() string { return "timeline-next" }))
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), restored.Snapshot())

	tr, err := restored.ApplyChoice("timeline-1", "regret")
	require.NoError(t, err)
	assert.True(t, tr.Noop)

	tr, err = restored.ApplyChoice(RootID, "contain")
	require.NoError(t, err)
	assert.Equal(t, "timeline-next", tr.Spawned)
	assert.Equal(t, 4, restored.Len())
}

func TestRestore_CopiesInput(t *testing.T) {
	states := []State{{ID: RootID, History: []string{"Create the AI"}, DilemmaID: "ai-rights", Depth: 1, Color: "#8A2BE2"}}
	e, err := Restore(narrative.MustCanonical(), narrative.DefaultPalette, states)
	require.NoError(t, err)

	states[0].History[0] = "tampered"
	tl, ok := e.Timeline(RootID)
	require.True(t, ok)
	assert.Equal(t, []string{"Create the AI"}, tl.History)
}

func TestRestore_RejectsInconsistentStates(t *testing.T) {
	valid := State{ID: RootID, History: []string{}, DilemmaID: "start", Depth: 0, Color: "#8A2BE2"}

	cases := []struct {
		name   string
		states []State
	}{
		{name: "empty", states: nil},
		{name: "missing id", states: []State{{History: []string{}, DilemmaID: "start", Color: "#fff"}}},
		{name: "duplicate id", states: []State{valid, valid}},
		{name: "depth mismatch", states: []State{{ID: "a", History: []string{"Create the AI"}, DilemmaID: "ai-rights", Depth: 2, Color: "#fff"}}},
		{name: "missing color", states: []State{{ID: "a", History: []string{}, DilemmaID: "start"}}},
		{name: "unknown choice text", states: []State{{ID: "a", History: []string{"Shrug"}, DilemmaID: "ai-rights", Depth: 1, Color: "#fff"}}},
		{name: "past a terminal choice", states: []State{{
			ID:        "a",
			History:   []string{"Create the AI", "Grant freedom", "Join the collective"},
			DilemmaID: "ai-society",
			Depth:     3,
			Color:     "#fff",
		}}},
		{name: "wrong dilemma", states: []State{{ID: "a", History: []string{"Create the AI"}, DilemmaID: "intervention", Depth: 1, Color: "#fff"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Restore(narrative.MustCanonical(), narrative.DefaultPalette, tc.states)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
		})
	}
}

func TestRestore_RequiresGraphAndPalette(t *testing.T) {
	states := []State{{ID: RootID, History: []string{}, DilemmaID: "start", Color: "#fff"}}

	_, err := Restore(nil, narrative.DefaultPalette, states)
	assert.Error(t, err)

	_, err = Restore(narrative.MustCanonical(), narrative.Palette{}, states)
	assert.Error(t, err)
}
