package integration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

func TestCompilerEngine_Integration(t *testing.T) {
	dotPath := filepath.Join("..", "narrative", "testdata", "simple.dot")
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}

	g, err := narrative.NewCompiler().Compile(string(dot))
	if err != nil {
		t.Fatal(err)
	}

	e, err := timeline.NewEngine(g, narrative.DefaultPalette)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := e.ApplyChoice(timeline.RootID, "left")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Spawned != "" {
		t.Fatalf("a terminal sibling must not spawn, got %q", tr.Spawned)
	}

	tl, ok := e.Timeline(timeline.RootID)
	if !ok {
		t.Fatalf("root timeline missing")
	}
	if !timeline.IsEndpoint(tl) {
		t.Fatalf("expected forest to be an endpoint, at %q", tl.Dilemma.ID)
	}
	if tl.Depth != 1 || tl.History[0] != "Go left" {
		t.Fatalf("unexpected timeline %+v", tl)
	}
}
