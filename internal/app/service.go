package app

import (
	"strings"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
	"github.com/awmpietro/quantum-dilemma/internal/query"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

type Compiler interface {
	Compile(dot string) (*narrative.Graph, error)
}

type Cache interface {
	GetOrCompute(dot string, fn func() (*narrative.Graph, error)) (*narrative.Graph, error)
}

// Outcome is the session after an operation. Ignored is set when a choice
// named a timeline or choice that no longer applies; the states are then
// returned unchanged.
type Outcome struct {
	Transition *timeline.Transition
	Ignored    *Rejection
	States     []timeline.State
	Snapshot   timeline.Snapshot
}

type Rejection struct {
	Code    apperrors.Code
	Message string
}

// NarrativeInfo lists every dilemma of a graph, root first, depth-first.
type NarrativeInfo struct {
	Name     string
	Root     string
	Dilemmas []NarrativeDilemma
}

type NarrativeDilemma struct {
	Depth int
	timeline.DilemmaView
}

type Option func(*Service)

// WithDefaultGraph sets the graph used when a request carries no DOT.
func WithDefaultGraph(g *narrative.Graph) Option {
	return func(s *Service) {
		if g != nil {
			s.graph = g
		}
	}
}

func WithPalette(p narrative.Palette) Option {
	return func(s *Service) {
		if len(p) > 0 {
			s.palette = p
		}
	}
}

func WithObserver(o timeline.TransitionObserver) Option {
	return func(s *Service) { s.observer = o }
}

type Service struct {
	compiler Compiler
	cache    Cache
	graph    *narrative.Graph
	palette  narrative.Palette
	observer timeline.TransitionObserver
}

func NewService(compiler Compiler, cache Cache, opts ...Option) *Service {
	s := &Service{compiler: compiler, cache: cache, palette: narrative.DefaultPalette}
	for _, opt := range opts {
		opt(s)
	}
	if s.graph == nil {
		s.graph = narrative.MustCanonical()
	}
	return s
}

// Start opens a session on the given graph, or the default one when
// graphDOT is empty.
func (s *Service) Start(graphDOT string) (*Outcome, error) {
	e, err := s.newEngine(graphDOT)
	if err != nil {
		return nil, err
	}
	return outcome(e, nil, nil), nil
}

// Reset is Start reported as a reset to observers.
func (s *Service) Reset(graphDOT string) (*Outcome, error) {
	e, err := s.newEngine(graphDOT)
	if err != nil {
		return nil, err
	}
	e.Reset()
	return outcome(e, nil, nil), nil
}

// Choose applies one choice to a session. Unknown timelines and choices are
// not errors: they come back as Outcome.Ignored with the session unchanged.
func (s *Service) Choose(graphDOT string, states []timeline.State, timelineID, choiceID string) (*Outcome, error) {
	e, err := s.restore(graphDOT, states)
	if err != nil {
		return nil, err
	}

	tr, err := e.ApplyChoice(timelineID, choiceID)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.CodeNotFound, apperrors.CodeInvalidArgument:
			return outcome(e, nil, &Rejection{Code: apperrors.CodeOf(err), Message: err.Error()}), nil
		default:
			return nil, err
		}
	}
	return outcome(e, &tr, nil), nil
}

// Query returns the timelines of a session matched by where.
func (s *Service) Query(graphDOT string, states []timeline.State, where string) ([]timeline.Selected, error) {
	e, err := s.restore(graphDOT, states)
	if err != nil {
		return nil, err
	}
	return query.Select(e.Snapshot(), where)
}

func (s *Service) Narrative(graphDOT string) (*NarrativeInfo, error) {
	g, err := s.resolve(graphDOT)
	if err != nil {
		return nil, err
	}

	info := &NarrativeInfo{Name: g.Name, Root: g.Root.ID}
	for _, d := range g.Walkthrough() {
		depth, _ := g.Depth(d.ID)
		info.Dilemmas = append(info.Dilemmas, NarrativeDilemma{Depth: depth, DilemmaView: timeline.NewDilemmaView(d)})
	}
	return info, nil
}

func (s *Service) resolve(graphDOT string) (*narrative.Graph, error) {
	if strings.TrimSpace(graphDOT) == "" {
		return s.graph, nil
	}
	return s.cache.GetOrCompute(graphDOT, func() (*narrative.Graph, error) {
		return s.compiler.Compile(graphDOT)
	})
}

func (s *Service) newEngine(graphDOT string) (*timeline.Engine, error) {
	g, err := s.resolve(graphDOT)
	if err != nil {
		return nil, err
	}
	return timeline.NewEngine(g, s.palette, timeline.WithObserver(s.observer))
}

func (s *Service) restore(graphDOT string, states []timeline.State) (*timeline.Engine, error) {
	g, err := s.resolve(graphDOT)
	if err != nil {
		return nil, err
	}
	return timeline.Restore(g, s.palette, states, timeline.WithObserver(s.observer))
}

func outcome(e *timeline.Engine, tr *timeline.Transition, ignored *Rejection) *Outcome {
	return &Outcome{
		Transition: tr,
		Ignored:    ignored,
		States:     e.States(),
		Snapshot:   e.Snapshot(),
	}
}
