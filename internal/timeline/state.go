package timeline

import (
	"fmt"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

// State is the portable form of a timeline, held by clients between
// requests to a stateless transport.
type State struct {
	ID        string   `json:"id"`
	History   []string `json:"history"`
	DilemmaID string   `json:"dilemma_id"`
	Depth     int      `json:"depth"`
	Color     string   `json:"color"`
}

// States exports the current list.
func (e *Engine) States() []State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return statesOf(e.timelines)
}

func statesOf(timelines []Timeline) []State {
	out := make([]State, 0, len(timelines))
	for _, t := range timelines {
		history := make([]string, len(t.History))
		copy(history, t.History)
		out = append(out, State{
			ID:        t.ID,
			History:   history,
			DilemmaID: t.Dilemma.ID,
			Depth:     t.Depth,
			Color:     string(t.Color),
		})
	}
	return out
}

// Restore rebuilds an engine from exported states. Every state must have a
// unique id, a depth equal to its history length, and a history that leads
// from the root of g to its dilemma.
func Restore(g *narrative.Graph, palette narrative.Palette, states []State, opts ...Option) (*Engine, error) {
	e, err := newEngine(g, palette, opts)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidState, "at least one timeline is required")
	}

	seen := make(map[string]struct{}, len(states))
	timelines := make([]Timeline, 0, len(states))
	for i, s := range states {
		if s.ID == "" {
			return nil, stateError(i, s.ID, "id is empty", nil)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, stateError(i, s.ID, "duplicate id", nil)
		}
		seen[s.ID] = struct{}{}

		if s.Depth != len(s.History) {
			return nil, stateError(i, s.ID, fmt.Sprintf("depth %d does not match history length %d", s.Depth, len(s.History)), nil)
		}
		if s.Color == "" {
			return nil, stateError(i, s.ID, "color is empty", nil)
		}

		d, err := g.Walk(s.History)
		if err != nil {
			return nil, stateError(i, s.ID, "history does not follow the narrative", err)
		}
		if d.ID != s.DilemmaID {
			return nil, stateError(i, s.ID, fmt.Sprintf("history leads to %q, not %q", d.ID, s.DilemmaID), nil)
		}

		history := make([]string, len(s.History))
		copy(history, s.History)
		timelines = append(timelines, Timeline{
			ID:      s.ID,
			History: history,
			Dilemma: d,
			Depth:   s.Depth,
			Color:   narrative.Color(s.Color),
		})
	}

	e.timelines = timelines
	return e, nil
}

func stateError(index int, id, reason string, cause error) error {
	msg := fmt.Sprintf("timeline %d (%q): %s", index, id, reason)
	if cause != nil {
		return apperrors.Wrap(apperrors.CodeInvalidState, msg, cause)
	}
	return apperrors.New(apperrors.CodeInvalidState, msg)
}
