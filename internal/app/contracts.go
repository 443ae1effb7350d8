package app

import "github.com/awmpietro/quantum-dilemma/internal/timeline"

// SessionService is what the transports need. Sessions live with the
// client: every call takes the exported timeline states and returns new ones.
type SessionService interface {
	Start(graphDOT string) (*Outcome, error)
	Choose(graphDOT string, states []timeline.State, timelineID, choiceID string) (*Outcome, error)
	Reset(graphDOT string) (*Outcome, error)
	Query(graphDOT string, states []timeline.State, where string) ([]timeline.Selected, error)
	Narrative(graphDOT string) (*NarrativeInfo, error)
}

var _ SessionService = (*Service)(nil)
