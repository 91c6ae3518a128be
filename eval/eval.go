// Package eval implements the DRD expression evaluator: a
// substitution-style, call-by-value reduction of exp.Exp to a value
// (Bool, Int, Str, or a fully-reduced Table), threading an environment
// of already-bound names.
package eval

import (
	"fmt"

	"github.com/willmcpherson2/drd/exp"
)

// Eval reduces e to a value under env, returning the value together
// with the environment extended by any top-level Let chain: only
// bindings that survive to the outermost Body are returned, since
// nested Let bindings go out of scope with their Body.
func Eval(e exp.Exp, env exp.Env) (exp.Exp, exp.Env, error) {
	switch v := e.(type) {
	case exp.Let:
		bound, err := eval(v.Bound, env)
		if err != nil {
			return nil, nil, err
		}
		next := env.Clone()
		next[v.Name] = bound
		body, bodyEnv, err := Eval(v.Body, next)
		if err != nil {
			return nil, nil, err
		}
		return body, bodyEnv, nil
	default:
		val, err := eval(e, env)
		if err != nil {
			return nil, nil, err
		}
		return val, env, nil
	}
}

func eval(e exp.Exp, env exp.Env) (exp.Exp, error) {
	switch v := e.(type) {
	case exp.Let:
		bound, err := eval(v.Bound, env)
		if err != nil {
			return nil, err
		}
		next := env.Clone()
		next[v.Name] = bound
		return eval(v.Body, next)

	case exp.Select:
		table, err := evalTable(v.Src, env)
		if err != nil {
			return nil, err
		}
		return exp.Table{Cols: v.Cols, Cells: selectCols(v.Cols, table.Cols, table.Cells)}, nil

	case exp.Where:
		table, err := evalTable(v.Src, env)
		if err != nil {
			return nil, err
		}
		cells, err := filterRows(table.Cols, table.Cells, v.Cond, env)
		if err != nil {
			return nil, err
		}
		return exp.Table{Cols: table.Cols, Cells: cells}, nil

	case exp.Union:
		l, err := evalTable(v.L, env)
		if err != nil {
			return nil, err
		}
		r, err := evalTable(v.R, env)
		if err != nil {
			return nil, err
		}
		if !sameCols(l.Cols, r.Cols) {
			return nil, fmt.Errorf("expected tables with matching columns in union")
		}
		cells := make([]exp.Exp, 0, len(l.Cells)+len(r.Cells))
		cells = append(cells, l.Cells...)
		cells = append(cells, r.Cells...)
		return exp.Table{Cols: l.Cols, Cells: cells}, nil

	case exp.Difference:
		l, err := evalTable(v.L, env)
		if err != nil {
			return nil, err
		}
		r, err := evalTable(v.R, env)
		if err != nil {
			return nil, err
		}
		if !sameCols(l.Cols, r.Cols) {
			return nil, fmt.Errorf("expected tables with matching columns in difference")
		}
		width := rowWidth(l.Cols)
		var cells []exp.Exp
		for i := 0; i < len(l.Cells); i += width {
			row := l.Cells[i : i+width]
			if !rowInRows(row, r.Cells, width) {
				cells = append(cells, row...)
			}
		}
		return exp.Table{Cols: l.Cols, Cells: cells}, nil

	case exp.Product:
		l, err := evalTable(v.L, env)
		if err != nil {
			return nil, err
		}
		r, err := evalTable(v.R, env)
		if err != nil {
			return nil, err
		}
		lWidth, rWidth := rowWidth(l.Cols), rowWidth(r.Cols)
		cols := append(append([]string{}, l.Cols...), r.Cols...)
		var cells []exp.Exp
		for i := 0; i < len(l.Cells); i += lWidth {
			lRow := l.Cells[i : i+lWidth]
			for j := 0; j < len(r.Cells); j += rWidth {
				rRow := r.Cells[j : j+rWidth]
				cells = append(cells, append(append([]exp.Exp{}, lRow...), rRow...)...)
			}
		}
		return exp.Table{Cols: cols, Cells: cells}, nil

	case exp.Table:
		cells := make([]exp.Exp, len(v.Cells))
		for i, cell := range v.Cells {
			val, err := eval(cell, env)
			if err != nil {
				return nil, err
			}
			cells[i] = val
		}
		return exp.Table{Cols: v.Cols, Cells: cells}, nil

	case exp.Or:
		l, err := eval(v.L, env)
		if err != nil {
			return nil, err
		}
		if isTrue(l) {
			return exp.Bool(true), nil
		}
		r, err := eval(v.R, env)
		if err != nil {
			return nil, err
		}
		return exp.Bool(isTrue(r)), nil

	case exp.And:
		l, err := eval(v.L, env)
		if err != nil {
			return nil, err
		}
		if isFalse(l) {
			return exp.Bool(false), nil
		}
		r, err := eval(v.R, env)
		if err != nil {
			return nil, err
		}
		return exp.Bool(!isFalse(r)), nil

	case exp.Equals:
		l, err := eval(v.L, env)
		if err != nil {
			return nil, err
		}
		r, err := eval(v.R, env)
		if err != nil {
			return nil, err
		}
		return exp.Bool(valuesEqual(l, r)), nil

	case exp.Not:
		b, err := evalBool(v.Inner, env)
		if err != nil {
			return nil, err
		}
		return exp.Bool(!b), nil

	case exp.Var:
		val, ok := env[string(v)]
		if !ok {
			return nil, fmt.Errorf("variable `%s` not defined", string(v))
		}
		return val, nil

	case exp.Bool, exp.Int, exp.Str:
		return v, nil

	default:
		return nil, fmt.Errorf("eval: unhandled expression %T", e)
	}
}

// isTrue and isFalse mirror the original's `if let Bool(true) = l` /
// `if let Bool(false) = l` pattern matches: a non-Bool value matches
// neither, so Or/And never type-error on a non-boolean operand, they
// simply fall through to evaluating the other side.
func isTrue(v exp.Exp) bool {
	b, ok := v.(exp.Bool)
	return ok && bool(b)
}

func isFalse(v exp.Exp) bool {
	b, ok := v.(exp.Bool)
	return ok && !bool(b)
}

func evalTable(e exp.Exp, env exp.Env) (exp.Table, error) {
	v, err := eval(e, env)
	if err != nil {
		return exp.Table{}, err
	}
	t, ok := v.(exp.Table)
	if !ok {
		return exp.Table{}, fmt.Errorf("expected table")
	}
	return t, nil
}

func evalBool(e exp.Exp, env exp.Env) (bool, error) {
	v, err := eval(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(exp.Bool)
	if !ok {
		return false, fmt.Errorf("expected boolean, found %#v", v)
	}
	return bool(b), nil
}

// rowWidth is the number of cells per row: len(cols), except the
// empty-column degeneracy where a table with no columns still stores
// one cell per "row" (the table's cardinality is its cell count).
func rowWidth(cols []string) int {
	if len(cols) == 0 {
		return 1
	}
	return len(cols)
}

func sameCols(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func selectCols(keep, target []string, cells []exp.Exp) []exp.Exp {
	index := make(map[string]int, len(target))
	for i, name := range target {
		index[name] = i
	}
	var indices []int
	for _, k := range keep {
		if i, ok := index[k]; ok {
			indices = append(indices, i)
		}
	}
	width := rowWidth(target)
	var out []exp.Exp
	for i := 0; i < len(cells); i += width {
		row := cells[i : i+width]
		for _, idx := range indices {
			if idx < len(row) {
				out = append(out, row[idx])
			}
		}
	}
	return out
}

func filterRows(cols []string, cells []exp.Exp, cond exp.Exp, env exp.Env) ([]exp.Exp, error) {
	width := rowWidth(cols)
	var out []exp.Exp
	for i := 0; i < len(cells); i += width {
		row := cells[i : i+width]
		rowEnv := env.Clone()
		for j, name := range cols {
			rowEnv[name] = row[j]
		}
		keep, err := evalBool(cond, rowEnv)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, row...)
		}
	}
	return out, nil
}

func rowInRows(row []exp.Exp, rows []exp.Exp, width int) bool {
	for i := 0; i < len(rows); i += width {
		if rowsEqual(row, rows[i:i+width]) {
			return true
		}
	}
	return false
}

func rowsEqual(a, b []exp.Exp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// valuesEqual is structural equality on already-reduced values.
// Heterogeneous comparisons (e.g. Int vs Str) are false, not an error,
// and nested tables compare column-by-column and cell-by-cell.
func valuesEqual(a, b exp.Exp) bool {
	switch av := a.(type) {
	case exp.Bool:
		bv, ok := b.(exp.Bool)
		return ok && av == bv
	case exp.Int:
		bv, ok := b.(exp.Int)
		return ok && av == bv
	case exp.Str:
		bv, ok := b.(exp.Str)
		return ok && av == bv
	case exp.Table:
		bv, ok := b.(exp.Table)
		return ok && sameCols(av.Cols, bv.Cols) && rowsEqual(av.Cells, bv.Cells)
	default:
		return false
	}
}
