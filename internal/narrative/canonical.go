package narrative

import (
	_ "embed"
	"sync"
)

//go:embed architect.dot
var architectDOT string

// CanonicalDOT returns the DOT source of the built-in narrative.
func CanonicalDOT() string { return architectDOT }

var canonical = sync.OnceValues(func() (*Graph, error) {
	return NewCompiler().Compile(architectDOT)
})

// Canonical returns the built-in "Architect's Choice" narrative. It is
// compiled once; the returned graph is shared and must not be modified.
func Canonical() (*Graph, error) {
	return canonical()
}

// MustCanonical is Canonical for program start-up.
func MustCanonical() *Graph {
	g, err := Canonical()
	if err != nil {
		panic(err)
	}
	return g
}
