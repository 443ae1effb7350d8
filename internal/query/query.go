// Package query compiles the small boolean filters used to select timelines
// from a snapshot, e.g. `depth >= 2 && not endpoint`.
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

// Compiled is a validated filter. The zero program matches everything.
type Compiled struct {
	source  string
	program *vm.Program
}

var _ timeline.Matcher = (*Compiled)(nil)

// Compile validates src and type-checks it against the timeline variables.
// An empty filter matches every timeline.
func Compile(src string) (*Compiled, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Compiled{}, nil
	}

	if err := Validate(src); err != nil {
		return nil, err
	}

	program, err := expr.Compile(src, expr.Env(env()), expr.AsBool())
	if err != nil {
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidQuery,
			fmt.Sprintf("failed to compile filter: %v", err),
			map[string]string{"query": src})
	}
	return &Compiled{source: src, program: program}, nil
}

func (c *Compiled) Source() string { return c.source }

func (c *Compiled) Match(vars map[string]any) (bool, error) {
	if c.program == nil {
		return true, nil
	}

	out, err := expr.Run(c.program, vars)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeInvalidQuery, "failed to evaluate filter", err)
	}

	b, ok := out.(bool)
	if !ok {
		return false, apperrors.New(apperrors.CodeInvalidQuery, fmt.Sprintf("filter must evaluate to bool (got %T)", out))
	}
	return b, nil
}

// Select compiles src and applies it to s.
func Select(s timeline.Snapshot, src string) ([]timeline.Selected, error) {
	c, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return timeline.Filter(s, c)
}

func env() map[string]any {
	return timeline.Vars(0, timeline.View{History: []string{}})
}
