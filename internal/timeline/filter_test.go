package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFunc func(vars map[string]any) (bool, error)

func (f matchFunc) Match(vars map[string]any) (bool, error) { return f(vars) }

func TestVars(t *testing.T) {
	e := newCanonicalEngine(t)
	_, err := e.ApplyChoice(RootID, "create")
	require.NoError(t, err)

	s := e.Snapshot()
	vars := Vars(1, s.Timelines[1])

	assert.Equal(t, "timeline-1", vars["id"])
	assert.Equal(t, 1, vars["index"])
	assert.Equal(t, "B", vars["label"])
	assert.Equal(t, 1, vars["depth"])
	assert.Equal(t, "#FF1493", vars["color"])
	assert.Equal(t, "intervention", vars["dilemma"])
	assert.Equal(t, false, vars["endpoint"])
	assert.Equal(t, []any{"Refuse to create it"}, vars["history"])
}

func TestFilter_KeepsDisplayPosition(t *testing.T) {
	e := newCanonicalEngine(t)
	_, err := e.ApplyChoice(RootID, "create")
	require.NoError(t, err)
	_, err = e.ApplyChoice(RootID, "free")
	require.NoError(t, err)

	got, err := Filter(e.Snapshot(), matchFunc(func(vars map[string]any) (bool, error) {
		return vars["depth"] == 2, nil
	}))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, "A", got[0].Label)
	assert.Equal(t, "ai-society", got[0].Dilemma.ID)
	assert.True(t, got[0].Endpoint)

	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, "C", got[1].Label)
	assert.Equal(t, "ai-escape", got[1].Dilemma.ID)
}

func TestFilter_PropagatesMatcherError(t *testing.T) {
	e := newCanonicalEngine(t)
	boom := errors.New("boom")

	_, err := Filter(e.Snapshot(), matchFunc(func(map[string]any) (bool, error) {
		return false, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestSnapshot_DescribesChoices(t *testing.T) {
	e := newCanonicalEngine(t)
	_, err := e.ApplyChoice(RootID, "create")
	require.NoError(t, err)
	_, err = e.ApplyChoice(RootID, "free")
	require.NoError(t, err)

	v := e.Snapshot().Timelines[0]
	assert.Equal(t, "The New Order", v.Dilemma.Question)
	assert.Equal(t, "integrate", v.Dilemma.Choices[0].ID)
	assert.False(t, v.Dilemma.Choices[0].HasNext)
	assert.False(t, v.Dilemma.Choices[1].HasNext)
	assert.True(t, v.Endpoint)
}
