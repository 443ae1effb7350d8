package sessiondto

import (
	"errors"

	"github.com/awmpietro/quantum-dilemma/internal/app"
	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

// StartRequest opens or resets a session. An empty GraphDOT selects the
// server's narrative.
type StartRequest struct {
	GraphDOT string `json:"graph_dot,omitempty"`
}

type ChoiceRequest struct {
	GraphDOT   string           `json:"graph_dot,omitempty"`
	Timelines  []timeline.State `json:"timelines"`
	TimelineID string           `json:"timeline_id"`
	ChoiceID   string           `json:"choice_id"`
}

type QueryRequest struct {
	GraphDOT  string           `json:"graph_dot,omitempty"`
	Timelines []timeline.State `json:"timelines"`
	Where     string           `json:"where"`
}

type SessionResponse struct {
	Timelines      []timeline.State  `json:"timelines"`
	Snapshot       timeline.Snapshot `json:"snapshot"`
	ResetAvailable bool              `json:"reset_available"`
	Transition     *Transition       `json:"transition,omitempty"`
	Ignored        *Rejection        `json:"ignored,omitempty"`
}

type Transition struct {
	TimelineID string `json:"timeline_id"`
	ChoiceID   string `json:"choice_id"`
	Noop       bool   `json:"noop"`
	Spawned    string `json:"spawned,omitempty"`
}

type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type QueryResponse struct {
	Count   int                 `json:"count"`
	Matches []timeline.Selected `json:"matches"`
}

type NarrativeResponse struct {
	Name     string             `json:"name"`
	Root     string             `json:"root"`
	Dilemmas []NarrativeDilemma `json:"dilemmas"`
}

type NarrativeDilemma struct {
	Depth int `json:"depth"`
	timeline.DilemmaView
}

type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Details  string            `json:"details"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func NewSessionResponse(o *app.Outcome) SessionResponse {
	resp := SessionResponse{
		Timelines:      o.States,
		Snapshot:       o.Snapshot,
		ResetAvailable: len(o.States) > 1,
	}
	if o.Transition != nil {
		resp.Transition = &Transition{
			TimelineID: o.Transition.TimelineID,
			ChoiceID:   o.Transition.ChoiceID,
			Noop:       o.Transition.Noop,
			Spawned:    o.Transition.Spawned,
		}
	}
	if o.Ignored != nil {
		resp.Ignored = &Rejection{Code: string(o.Ignored.Code), Message: o.Ignored.Message}
	}
	return resp
}

func NewQueryResponse(matches []timeline.Selected) QueryResponse {
	if matches == nil {
		matches = []timeline.Selected{}
	}
	return QueryResponse{Count: len(matches), Matches: matches}
}

func NewNarrativeResponse(info *app.NarrativeInfo) NarrativeResponse {
	resp := NarrativeResponse{Name: info.Name, Root: info.Root, Dilemmas: make([]NarrativeDilemma, 0, len(info.Dilemmas))}
	for _, d := range info.Dilemmas {
		resp.Dilemmas = append(resp.Dilemmas, NarrativeDilemma{Depth: d.Depth, DilemmaView: d.DilemmaView})
	}
	return resp
}

// NewErrorResponse describes err under the given summary and picks the
// status from its code.
func NewErrorResponse(summary string, err error) (int, ErrorResponse) {
	code := apperrors.CodeOf(err)
	body := ErrorResponse{Error: summary, Code: string(code), Details: err.Error()}
	var e *apperrors.Error
	if errors.As(err, &e) && len(e.Metadata) > 0 {
		body.Metadata = e.Metadata
	}
	return code.HTTPStatus(), body
}

// BadRequest is the response for bodies that cannot be decoded.
func BadRequest(summary string, err error) ErrorResponse {
	return ErrorResponse{Error: summary, Code: string(apperrors.CodeInvalidArgument), Details: err.Error()}
}
