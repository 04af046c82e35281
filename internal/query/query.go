// Package query filters legend entries with expr-lang expressions, for example
//
//	kind == "layer" && !visible
//	group == 20 && position < 2
//	name startsWith "Road"
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zjrosen/legend/internal/legend"
)

// Row is the environment an expression sees for one entry.
type Row struct {
	Handle   int    `expr:"handle" json:"handle"`
	Kind     string `expr:"kind" json:"kind"`
	Group    int    `expr:"group" json:"group"` // -1 for the root
	Position int    `expr:"position" json:"position"`
	Depth    int    `expr:"depth" json:"depth"`
	Name     string `expr:"name" json:"name,omitempty"`
	Visible  bool   `expr:"visible" json:"visible"` // always true for groups
	Children int    `expr:"children" json:"children"`
}

// Payloads resolves display data for handles. *engine.Memory implements it.
type Payloads interface {
	legend.Engine
	Name(h legend.Handle) (string, bool)
}

// Rows snapshots the tree in display order, root first.
func Rows(tree *legend.Tree, payloads Payloads) []Row {
	entries := tree.Entries()
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		r := Row{
			Handle:   int(e.Handle),
			Kind:     e.Kind.String(),
			Group:    int(e.Parent),
			Position: e.Position,
			Depth:    e.Depth,
			Children: e.Children,
			Visible:  true,
		}
		if name, ok := payloads.Name(e.Handle); ok {
			r.Name = name
		}
		if info, ok := payloads.LayerInfo(e.Handle); ok {
			r.Visible = info.Visible
		}
		rows = append(rows, r)
	}
	return rows
}

// Filter is a compiled boolean expression over Row.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile type-checks source against Row. An empty source matches everything.
func Compile(source string) (*Filter, error) {
	if source == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(Row{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.source }

// Match evaluates the filter against one row.
func (f *Filter) Match(r Row) (bool, error) {
	if f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, r)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q on handle %d: %w", f.source, r.Handle, err)
	}
	return out.(bool), nil
}

// Select returns the rows that match, in order.
func (f *Filter) Select(rows []Row) ([]Row, error) {
	var out []Row
	for _, r := range rows {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
