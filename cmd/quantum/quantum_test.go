package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/render/terminal"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

func newEngine(t *testing.T) *timeline.Engine {
	t.Helper()
	e, err := timeline.NewEngine(narrative.MustCanonical(), narrative.DefaultPalette)
	require.NoError(t, err)
	return e
}

func TestLoop_PlaysAndResets(t *testing.T) {
	e := newEngine(t)
	r := terminal.NewRenderer(terminal.WithWidth(160), terminal.WithStripRows(0))

	var out bytes.Buffer
	in := strings.NewReader("r\na1\nb2\nzz1\nx\nr\nq\n")
	require.NoError(t, loop(in, &out, e, r, nil, false))

	text := out.String()
	assert.Contains(t, text, "only one timeline exists; nothing to reset")
	assert.Contains(t, text, `universe A chose "Create the AI"; universe B splits off`)
	assert.Contains(t, text, `universe B chose "Maintain your stance"; universe C splits off`)
	assert.Contains(t, text, "there is no universe ZZ")
	assert.Contains(t, text, "expected a panel letter and a choice number")
	assert.Contains(t, text, "reality reset")
	assert.NotContains(t, text, clearScreen)

	tls := e.Timelines()
	require.Len(t, tls, 1)
	assert.Equal(t, timeline.RootID, tls[0].ID)
}

func TestLoop_EndpointChoiceIsNoop(t *testing.T) {
	e := newEngine(t)
	r := terminal.NewRenderer(terminal.WithWidth(160), terminal.WithStripRows(0))

	var out bytes.Buffer
	require.NoError(t, loop(strings.NewReader("a1\na1\na1\n"), &out, e, r, nil, false))

	assert.Contains(t, out.String(), `universe A: "Join the collective" leads nowhere further`)
	assert.Equal(t, 3, e.Len())
}

func TestChoose_OutOfRangeCommand(t *testing.T) {
	e := newEngine(t)

	assert.Equal(t, "there is no such universe", choose(e, terminal.Command{Kind: terminal.CommandChoose, Panel: -6696602603409169451}))
	assert.Equal(t, "that choice no longer applies", choose(e, terminal.Command{Kind: terminal.CommandChoose, Choice: 5}))
	assert.Equal(t, "that choice no longer applies", choose(e, terminal.Command{Kind: terminal.CommandChoose, Choice: -1}))
	assert.Equal(t, 1, e.Len())

	var out bytes.Buffer
	r := terminal.NewRenderer(terminal.WithWidth(160), terminal.WithStripRows(0))
	require.NoError(t, loop(strings.NewReader("zzzzzzzzzzzzzz1\nq\n"), &out, e, r, nil, false))
	assert.Contains(t, out.String(), "longer than 3 letters")
}

func TestSaveAndResume(t *testing.T) {
	g := narrative.MustCanonical()
	e := newEngine(t)
	_, err := e.ApplyChoice(timeline.RootID, "refuse")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, save(path, g, e))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved savedSession
	require.NoError(t, sonic.Unmarshal(raw, &saved))
	assert.Equal(t, "architect", saved.Narrative)
	assert.Len(t, saved.Timelines, 2)

	resumed, err := resume(g, path, nil)
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), resumed.Snapshot())
}

func TestGraphCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.dot")
	require.NoError(t, os.WriteFile(path, []byte(narrative.CanonicalDOT()), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"graph", "validate", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `ok: 7 dilemmas, 14 choices, 4 endpoints, root "start"`)

	out.Reset()
	rootCmd.SetArgs([]string{"graph", "print"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "The Architect's Choice [start]\n  1) Create the AI -> ai-rights\n")
	assert.Contains(t, out.String(), "        The New Order [ai-society]\n          1) Join the collective -> end\n")

	broken := filepath.Join(t.TempDir(), "broken.dot")
	require.NoError(t, os.WriteFile(broken, []byte(`digraph { "start" [kind="dilemma"]; }`), 0o600))
	rootCmd.SetArgs([]string{"graph", "validate", broken})
	assert.Error(t, rootCmd.Execute())
}
