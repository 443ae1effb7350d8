// Package timeline holds the branching state engine: an ordered, growing list
// of independent cursors into a narrative graph.
package timeline

import (
	"slices"

	"github.com/google/uuid"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

// RootID is the id of the first timeline after construction or reset.
const RootID = "timeline-0"

// Timeline is one cursor into the graph plus the choices that produced it.
// Depth always equals len(History).
type Timeline struct {
	ID      string
	History []string
	Dilemma *narrative.Dilemma
	Depth   int
	Color   narrative.Color
}

// IsEndpoint reports whether both choices of the timeline's current dilemma
// are terminal. Such a timeline stays in the list but accepts no transition.
func IsEndpoint(t Timeline) bool {
	return t.Dilemma != nil && t.Dilemma.Endpoint()
}

func (t Timeline) clone() Timeline {
	t.History = slices.Clone(t.History)
	if t.History == nil {
		t.History = []string{}
	}
	return t
}

// extend returns a new history; the receiver's backing array is never shared.
func extend(history []string, text string) []string {
	out := make([]string, len(history), len(history)+1)
	copy(out, history)
	return append(out, text)
}

func newTimelineID() string {
	return "timeline-" + uuid.NewString()
}

// Label returns the display label of the panel at index: A..Z, then AA, AB...
func Label(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}
