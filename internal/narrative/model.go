package narrative

// Graph is an immutable binary tree of dilemmas addressed by id.
type Graph struct {
	Name     string
	Root     *Dilemma
	Dilemmas map[string]*Dilemma
	Choices  map[string]*Choice
}

// Dilemma is a decision point with exactly two choices, presented in order.
type Dilemma struct {
	ID       string
	Question string
	Context  string
	Choices  [2]*Choice
}

// Choice belongs to exactly one dilemma. A nil Next marks a terminal choice.
type Choice struct {
	ID          string
	Text        string
	Consequence string
	Next        *Dilemma
}

// Terminal reports whether selecting the choice ends the narrative line.
func (c *Choice) Terminal() bool {
	return c.Next == nil
}

// Endpoint reports whether both choices of the dilemma are terminal.
func (d *Dilemma) Endpoint() bool {
	return d.Choices[0].Terminal() && d.Choices[1].Terminal()
}

// Choice returns the choice with the given id if it belongs to d.
func (d *Dilemma) Choice(id string) (*Choice, bool) {
	for _, c := range d.Choices {
		if c != nil && c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Sibling returns the choice on d that is not the one with the given id.
func (d *Dilemma) Sibling(id string) (*Choice, bool) {
	switch id {
	case d.Choices[0].ID:
		return d.Choices[1], true
	case d.Choices[1].ID:
		return d.Choices[0], true
	}
	return nil, false
}

// Dilemma looks up a dilemma by id.
func (g *Graph) Dilemma(id string) (*Dilemma, bool) {
	d, ok := g.Dilemmas[id]
	return d, ok
}

// Walk follows a history of choice texts from the root and returns the
// dilemma it leads to.
func (g *Graph) Walk(history []string) (*Dilemma, error) {
	current := g.Root
	for i, text := range history {
		var next *Choice
		for _, c := range current.Choices {
			if c.Text == text {
				next = c
				break
			}
		}
		if next == nil {
			return nil, walkError(i, text, current.ID, "no such choice")
		}
		if next.Terminal() {
			return nil, walkError(i, text, current.ID, "choice is terminal")
		}
		current = next.Next
	}
	return current, nil
}

// Walkthrough returns every dilemma in depth-first order from the root, first
// choice before second.
func (g *Graph) Walkthrough() []*Dilemma {
	out := make([]*Dilemma, 0, len(g.Dilemmas))
	var visit func(d *Dilemma)
	visit = func(d *Dilemma) {
		out = append(out, d)
		for _, c := range d.Choices {
			if c.Next != nil {
				visit(c.Next)
			}
		}
	}
	if g.Root != nil {
		visit(g.Root)
	}
	return out
}

// Depth returns the number of choices between the root and the dilemma.
func (g *Graph) Depth(id string) (int, bool) {
	var find func(d *Dilemma, depth int) (int, bool)
	find = func(d *Dilemma, depth int) (int, bool) {
		if d.ID == id {
			return depth, true
		}
		for _, c := range d.Choices {
			if c.Next == nil {
				continue
			}
			if n, ok := find(c.Next, depth+1); ok {
				return n, true
			}
		}
		return 0, false
	}
	if g.Root == nil {
		return 0, false
	}
	return find(g.Root, 0)
}
