package timeline

import "github.com/awmpietro/quantum-dilemma/internal/narrative"

// Snapshot is the state handed to a renderer after every mutation.
type Snapshot struct {
	Timelines []View `json:"timelines"`
}

type View struct {
	ID       string      `json:"id"`
	Color    string      `json:"color"`
	Depth    int         `json:"depth"`
	History  []string    `json:"history"`
	Dilemma  DilemmaView `json:"current_dilemma"`
	Endpoint bool        `json:"endpoint"`
}

type DilemmaView struct {
	ID       string        `json:"id"`
	Question string        `json:"question"`
	Context  string        `json:"context"`
	Choices  [2]ChoiceView `json:"choices"`
}

type ChoiceView struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Consequence string `json:"consequence"`
	HasNext     bool   `json:"has_next"`
}

// Snapshot returns the current list as renderer views.
func (e *Engine) Snapshot() Snapshot {
	return NewSnapshot(e.Timelines())
}

func NewSnapshot(timelines []Timeline) Snapshot {
	views := make([]View, 0, len(timelines))
	for _, t := range timelines {
		views = append(views, NewView(t))
	}
	return Snapshot{Timelines: views}
}

func NewView(t Timeline) View {
	history := make([]string, len(t.History))
	copy(history, t.History)
	return View{
		ID:       t.ID,
		Color:    string(t.Color),
		Depth:    t.Depth,
		History:  history,
		Dilemma:  NewDilemmaView(t.Dilemma),
		Endpoint: IsEndpoint(t),
	}
}

func NewDilemmaView(d *narrative.Dilemma) DilemmaView {
	if d == nil {
		return DilemmaView{}
	}
	v := DilemmaView{ID: d.ID, Question: d.Question, Context: d.Context}
	for i, c := range d.Choices {
		if c == nil {
			continue
		}
		v.Choices[i] = ChoiceView{
			ID:          c.ID,
			Text:        c.Text,
			Consequence: c.Consequence,
			HasNext:     !c.Terminal(),
		}
	}
	return v
}
