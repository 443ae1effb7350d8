package narrative

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

const (
	kindDilemma = "dilemma"
	kindChoice  = "choice"

	defaultRoot = "start"
)

// Compiler turns a DOT narrative into a validated Graph.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) Compile(dot string) (*Graph, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidGraph, "failed to parse DOT", err)
	}

	b := newBuilder()
	if err := gographviz.Analyse(ast, b); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidGraph, "failed to analyze DOT", err)
	}

	g, err := b.build()
	if err != nil {
		return nil, err
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

type rawNode struct {
	name  string
	attrs map[string]string
}

type rawEdge struct {
	from string
	to   string
}

// builder implements gographviz.Interface so that narrative attributes
// (question, context, text, consequence) survive analysis; the stock
// gographviz.Graph only accepts Graphviz layout attributes.
type builder struct {
	name  string
	attrs map[string]string
	nodes map[string]*rawNode
	order []string
	edges []rawEdge
}

var _ gographviz.Interface = (*builder)(nil)

func newBuilder() *builder {
	return &builder{
		attrs: map[string]string{},
		nodes: map[string]*rawNode{},
	}
}

func (b *builder) SetStrict(bool) error { return nil }

func (b *builder) SetDir(directed bool) error {
	if !directed {
		return fmt.Errorf("narrative must be a digraph")
	}
	return nil
}

func (b *builder) SetName(name string) error {
	b.name = unquote(name)
	return nil
}

func (b *builder) AddPortEdge(src, srcPort, dst, dstPort string, directed bool, attrs map[string]string) error {
	if srcPort != "" || dstPort != "" {
		return fmt.Errorf("ports are not supported (%s -> %s)", src, dst)
	}
	return b.AddEdge(src, dst, directed, attrs)
}

func (b *builder) AddEdge(src, dst string, directed bool, attrs map[string]string) error {
	if !directed {
		return fmt.Errorf("undirected edge %s -- %s", src, dst)
	}
	if len(attrs) > 0 {
		return fmt.Errorf("edge %s -> %s: attributes are not supported", src, dst)
	}
	b.edges = append(b.edges, rawEdge{from: unquote(src), to: unquote(dst)})
	return nil
}

func (b *builder) AddNode(parentGraph string, name string, attrs map[string]string) error {
	id := unquote(name)
	n, ok := b.nodes[id]
	if !ok {
		n = &rawNode{name: id, attrs: map[string]string{}}
		b.nodes[id] = n
		b.order = append(b.order, id)
	} else if _, declared := n.attrs["kind"]; declared {
		if _, again := attrs["kind"]; again {
			return fmt.Errorf("duplicate id %q", id)
		}
	}
	for k, v := range attrs {
		n.attrs[unquote(k)] = unquote(v)
	}
	return nil
}

func (b *builder) AddAttr(parentGraph string, field, value string) error {
	b.attrs[unquote(field)] = unquote(value)
	return nil
}

func (b *builder) AddSubGraph(parentGraph string, name string, attrs map[string]string) error {
	return fmt.Errorf("subgraph %s: subgraphs are not supported", name)
}

func (b *builder) String() string { return b.name }

func (b *builder) build() (*Graph, error) {
	g := &Graph{
		Name:     b.name,
		Dilemmas: map[string]*Dilemma{},
		Choices:  map[string]*Choice{},
	}

	// 1) Nodes
	for _, id := range b.order {
		n := b.nodes[id]
		switch kind := n.attrs["kind"]; kind {
		case kindDilemma:
			d := &Dilemma{ID: id, Question: n.attrs["question"], Context: n.attrs["context"]}
			if d.Question == "" || d.Context == "" {
				return nil, graphError("dilemma %q needs question and context", id)
			}
			g.Dilemmas[id] = d
		case kindChoice:
			c := &Choice{ID: id, Text: n.attrs["text"], Consequence: n.attrs["consequence"]}
			if c.Text == "" || c.Consequence == "" {
				return nil, graphError("choice %q needs text and consequence", id)
			}
			g.Choices[id] = c
		case "":
			return nil, graphError("node %q has no kind", id)
		default:
			return nil, graphError("node %q has unknown kind %q", id, kind)
		}
	}

	// 2) Edges, in statement order
	owned := map[string][]*Choice{}
	owners := map[string][]string{}
	parents := map[string][]string{}
	for _, e := range b.edges {
		if d, ok := g.Dilemmas[e.from]; ok {
			c, ok := g.Choices[e.to]
			if !ok {
				return nil, graphError("dilemma %q must point at choices, got %q", d.ID, e.to)
			}
			owned[d.ID] = append(owned[d.ID], c)
			owners[c.ID] = append(owners[c.ID], d.ID)
			continue
		}
		c, ok := g.Choices[e.from]
		if !ok {
			return nil, graphError("edge references unknown source node %q", e.from)
		}
		next, ok := g.Dilemmas[e.to]
		if !ok {
			return nil, graphError("choice %q must point at a dilemma, got %q", c.ID, e.to)
		}
		if c.Next != nil {
			return nil, graphError("choice %q has more than one next dilemma", c.ID)
		}
		c.Next = next
		parents[next.ID] = append(parents[next.ID], c.ID)
	}

	for _, id := range b.order {
		d, ok := g.Dilemmas[id]
		if !ok {
			continue
		}
		choices := owned[id]
		if len(choices) != 2 {
			return nil, graphError("dilemma %q must have exactly two choices, got %d", id, len(choices))
		}
		d.Choices = [2]*Choice{choices[0], choices[1]}
	}
	for _, id := range b.order {
		if _, ok := g.Choices[id]; !ok {
			continue
		}
		if n := len(owners[id]); n != 1 {
			return nil, graphError("choice %q must belong to exactly one dilemma, got %d", id, n)
		}
	}
	for _, id := range b.order {
		if ps := parents[id]; len(ps) > 1 {
			return nil, graphError("dilemma %q is reached by more than one choice (%s)", id, strings.Join(ps, ", "))
		}
	}

	rootID := b.attrs["root"]
	if rootID == "" {
		rootID = defaultRoot
	}
	root, ok := g.Dilemmas[rootID]
	if !ok {
		return nil, graphError("missing root dilemma %q", rootID)
	}
	if ps := parents[rootID]; len(ps) > 0 {
		return nil, graphError("root dilemma %q is reached by choice %q", rootID, ps[0])
	}
	g.Root = root

	return g, nil
}

// unquote strips DOT string quotes. DOT only escapes the double quote.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}
