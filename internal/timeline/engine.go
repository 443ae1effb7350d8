package timeline

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

// Engine owns the timeline list. ApplyChoice and Reset are serialized by a
// single mutex and every accepted transition swaps in a fully built list, so
// readers never see an advance without its spawn.
type Engine struct {
	mu        sync.Mutex
	graph     *narrative.Graph
	palette   narrative.Palette
	timelines []Timeline
	newID     func() string
	observer  TransitionObserver
	now       func() time.Time
}

type Option func(*Engine)

func WithObserver(observer TransitionObserver) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithIDGenerator replaces the id source for spawned timelines.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Transition describes the outcome of an accepted ApplyChoice call.
type Transition struct {
	TimelineID string
	ChoiceID   string
	// Noop is set when the chosen choice is terminal; nothing changed.
	Noop bool
	// Spawned is the id of the sibling timeline created for the road not
	// taken, empty when that road does not continue.
	Spawned   string
	Timelines int
}

func NewEngine(g *narrative.Graph, palette narrative.Palette, opts ...Option) (*Engine, error) {
	e, err := newEngine(g, palette, opts)
	if err != nil {
		return nil, err
	}
	e.timelines = []Timeline{e.root()}
	return e, nil
}

func newEngine(g *narrative.Graph, palette narrative.Palette, opts []Option) (*Engine, error) {
	if err := narrative.Validate(g); err != nil {
		return nil, err
	}
	if len(palette) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidGraph, "palette is empty")
	}
	e := &Engine{
		graph:   g,
		palette: palette,
		newID:   newTimelineID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) root() Timeline {
	return Timeline{
		ID:      RootID,
		History: []string{},
		Dilemma: e.graph.Root,
		Depth:   0,
		Color:   e.palette.ColorFor(0),
	}
}

// ApplyChoice advances the timeline with the given id along the chosen
// choice and, when the sibling choice also continues, appends a new timeline
// for the road not taken.
//
// An unknown timeline fails with NOT_FOUND and a choice that is not on the
// timeline's current dilemma fails with INVALID_ARGUMENT; in both cases the
// list is left untouched. A terminal choice is accepted as a no-op.
func (e *Engine) ApplyChoice(timelineID, choiceID string) (Transition, error) {
	start := e.now()

	e.mu.Lock()
	tr, events, err := e.apply(timelineID, choiceID)
	e.mu.Unlock()

	elapsed := e.now().Sub(start)
	for _, ev := range events {
		ev.Duration = elapsed
		e.observe(ev)
	}
	return tr, err
}

func (e *Engine) apply(timelineID, choiceID string) (Transition, []TransitionEvent, error) {
	tr := Transition{TimelineID: timelineID, ChoiceID: choiceID, Timelines: len(e.timelines)}

	idx := e.indexOf(timelineID)
	if idx < 0 {
		err := apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("timeline %q not found", timelineID),
			map[string]string{"timeline_id": timelineID})
		return tr, []TransitionEvent{e.rejected(tr, err)}, err
	}

	current := e.timelines[idx]
	chosen, ok := current.Dilemma.Choice(choiceID)
	if !ok {
		err := apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("choice %q is not on dilemma %q of timeline %q", choiceID, current.Dilemma.ID, timelineID),
			map[string]string{"timeline_id": timelineID, "choice_id": choiceID, "dilemma_id": current.Dilemma.ID})
		return tr, []TransitionEvent{e.rejected(tr, err)}, err
	}

	if chosen.Terminal() {
		tr.Noop = true
		return tr, []TransitionEvent{{Kind: EventNoop, TimelineID: timelineID, ChoiceID: choiceID, Timelines: tr.Timelines}}, nil
	}
	other, _ := current.Dilemma.Sibling(choiceID)

	next := make([]Timeline, len(e.timelines), len(e.timelines)+1)
	copy(next, e.timelines)
	next[idx] = Timeline{
		ID:      current.ID,
		History: extend(current.History, chosen.Text),
		Dilemma: chosen.Next,
		Depth:   current.Depth + 1,
		Color:   current.Color,
	}
	events := []TransitionEvent{{Kind: EventAdvance, TimelineID: current.ID, ChoiceID: choiceID, Timelines: len(next)}}

	if !other.Terminal() {
		// The color index is the list length before the sibling is appended;
		// after the palette wraps two timelines may share a color.
		spawned := Timeline{
			ID:      e.newID(),
			History: extend(current.History, other.Text),
			Dilemma: other.Next,
			Depth:   current.Depth + 1,
			Color:   e.palette.ColorFor(len(next)),
		}
		next = append(next, spawned)
		tr.Spawned = spawned.ID
		events = append(events, TransitionEvent{Kind: EventSpawn, TimelineID: spawned.ID, ChoiceID: other.ID, Timelines: len(next)})
	}

	e.timelines = next
	tr.Timelines = len(next)
	return tr, events, nil
}

func (e *Engine) rejected(tr Transition, err error) TransitionEvent {
	return TransitionEvent{
		Kind:       EventRejected,
		TimelineID: tr.TimelineID,
		ChoiceID:   tr.ChoiceID,
		Timelines:  tr.Timelines,
		Code:       apperrors.CodeOf(err),
	}
}

// Reset replaces the whole list with a fresh root timeline.
func (e *Engine) Reset() {
	start := e.now()
	e.mu.Lock()
	e.timelines = []Timeline{e.root()}
	e.mu.Unlock()
	e.observe(TransitionEvent{Kind: EventReset, TimelineID: RootID, Timelines: 1, Duration: e.now().Sub(start)})
}

// Timelines returns a copy of the list in display order.
func (e *Engine) Timelines() []Timeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Timeline, len(e.timelines))
	for i, t := range e.timelines {
		out[i] = t.clone()
	}
	return out
}

// Timeline returns a copy of the timeline with the given id.
func (e *Engine) Timeline(id string) (Timeline, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexOf(id)
	if idx < 0 {
		return Timeline{}, false
	}
	return e.timelines[idx].clone(), true
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timelines)
}

func (e *Engine) Graph() *narrative.Graph { return e.graph }

func (e *Engine) Palette() narrative.Palette { return e.palette }

func (e *Engine) indexOf(id string) int {
	for i := range e.timelines {
		if e.timelines[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) observe(ev TransitionEvent) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveTransition(ev)
}
