package narrative

// Validate checks the tree invariants of a graph: every dilemma has two
// distinct choices, every dilemma is reachable from the root through exactly
// one path, and there are no cycles. Compile always validates; graphs built by
// hand should be validated before use.
func Validate(g *Graph) error {
	if g == nil {
		return graphError("graph is nil")
	}
	if g.Root == nil {
		return graphError("graph has no root")
	}
	if d, ok := g.Dilemmas[g.Root.ID]; !ok || d != g.Root {
		return graphError("root %q is not registered", g.Root.ID)
	}

	for id, d := range g.Dilemmas {
		if d == nil || d.ID != id {
			return graphError("dilemma registered as %q has mismatched id", id)
		}
		a, b := d.Choices[0], d.Choices[1]
		if a == nil || b == nil {
			return graphError("dilemma %q must have exactly two choices", id)
		}
		if a.ID == b.ID {
			return graphError("dilemma %q lists choice %q twice", id, a.ID)
		}
		if a.Text == b.Text {
			return graphError("dilemma %q has two choices labelled %q", id, a.Text)
		}
	}

	// Depth-first walk: a dilemma seen twice is either shared or on a cycle.
	seen := make(map[string]bool, len(g.Dilemmas))
	onPath := map[string]bool{}
	var visit func(d *Dilemma) error
	visit = func(d *Dilemma) error {
		if onPath[d.ID] {
			return graphError("cycle through dilemma %q", d.ID)
		}
		if seen[d.ID] {
			return graphError("dilemma %q is reachable by more than one path", d.ID)
		}
		if registered, ok := g.Dilemmas[d.ID]; !ok || registered != d {
			return graphError("dilemma %q is referenced but not registered", d.ID)
		}
		seen[d.ID] = true
		onPath[d.ID] = true
		for _, c := range d.Choices {
			if c.Next == nil {
				continue
			}
			if err := visit(c.Next); err != nil {
				return err
			}
		}
		onPath[d.ID] = false
		return nil
	}
	if err := visit(g.Root); err != nil {
		return err
	}

	if len(seen) != len(g.Dilemmas) {
		for id := range g.Dilemmas {
			if !seen[id] {
				return graphError("dilemma %q is unreachable from root %q", id, g.Root.ID)
			}
		}
	}
	return nil
}
