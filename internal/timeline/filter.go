package timeline

// Matcher decides whether a timeline, described by vars, is selected.
type Matcher interface {
	Match(vars map[string]any) (bool, error)
}

// Vars describes the view at a display position for a Matcher:
// id, index, label, depth, color, dilemma, endpoint and history.
func Vars(index int, v View) map[string]any {
	history := make([]any, len(v.History))
	for i, h := range v.History {
		history[i] = h
	}
	return map[string]any{
		"id":       v.ID,
		"index":    index,
		"label":    Label(index),
		"depth":    v.Depth,
		"color":    v.Color,
		"dilemma":  v.Dilemma.ID,
		"endpoint": v.Endpoint,
		"history":  history,
	}
}

// Selected is a view kept by Filter with its position in the full list.
type Selected struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	View
}

// Filter returns the views of s accepted by m, in display order.
func Filter(s Snapshot, m Matcher) ([]Selected, error) {
	out := make([]Selected, 0, len(s.Timelines))
	for i, v := range s.Timelines {
		ok, err := m.Match(Vars(i, v))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Selected{Index: i, Label: Label(i), View: v})
		}
	}
	return out, nil
}
