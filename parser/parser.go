// Package parser turns DRD source text into an exp.Exp. It implements
// the two-pass precedence-climbing algorithm from the language spec: a
// flat stream of atoms and operators is first left-associated naively,
// then re-associated in a single recursive pass driven by the ops
// package's precedence/associativity table.
package parser

import (
	"fmt"

	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/ops"
)

// SyntaxError is returned when the input text cannot be scanned in full:
// no expression at the start, or unconsumed trailing text (which is how
// an unterminated string or block comment surfaces). Pos is a byte
// offset into the original input. A structurally invalid
// binder/list/application is reported by lower as a plain error that
// carries no position.
type SyntaxError struct {
	Pos     int
	Line    int
	Col     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Col)
}

func newSyntaxError(input string, pos int, message string) error {
	line, col := 1, 1
	for i := 0; i < pos && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Pos: pos, Line: line, Col: col, Message: message}
}

// Parse parses a complete DRD expression. The top-level parse must
// consume the entire input; leftover text (including one left over by
// an unterminated block comment) is a syntax error.
func Parse(input string) (exp.Exp, error) {
	tree, pos, ok := parseBexp(input, 0)
	if !ok {
		return nil, newSyntaxError(input, pos, "expected expression")
	}
	if pos != len(input) {
		return nil, newSyntaxError(input, pos, "unconsumed input")
	}
	return lower(tree)
}

func parseBexp(s string, pos int) (bexp, int, bool) {
	pos = skipJunk(s, pos)
	first, pos, ok := parseAtom(s, pos)
	if !ok {
		return nil, pos, false
	}

	var rest []opAtom
	for {
		save := pos
		p := skipJunk(s, pos)
		op, n := ops.Match(s[p:])
		p += n
		p = skipJunk(s, p)
		atom, next, ok := parseAtom(s, p)
		if !ok {
			pos = save
			break
		}
		rest = append(rest, opAtom{op, atom})
		pos = next
	}
	pos = skipJunk(s, pos)

	return reAssociate(leftAssociate(first, rest)), pos, true
}

// lower converts the operator-precedence tree into the AST, applying the
// per-operator lowering rules from the language spec (§4.1).
func lower(b bexp) (exp.Exp, error) {
	switch v := b.(type) {
	case *binaryExp:
		return lowerBinary(v)
	case parensExp:
		return lower(v.Inner)
	case boolExp:
		return exp.Bool(v), nil
	case intExp:
		return exp.Int(v), nil
	case nilExp:
		return exp.EmptyTable, nil
	case strExp:
		return exp.Str(v), nil
	case varExp:
		return exp.Var(v), nil
	default:
		return nil, fmt.Errorf("parser: unhandled node %T", b)
	}
}

func lowerBinary(v *binaryExp) (exp.Exp, error) {
	switch v.Op {
	case ops.In:
		letBexp, ok := v.Left.(*binaryExp)
		if !ok || letBexp.Op != ops.Let {
			return nil, fmt.Errorf("expected let")
		}
		name, ok := letBexp.Left.(varExp)
		if !ok {
			return nil, fmt.Errorf("expected variable name in let")
		}
		bound, err := lower(letBexp.Right)
		if err != nil {
			return nil, err
		}
		body, err := lower(v.Right)
		if err != nil {
			return nil, err
		}
		return exp.Let{Name: string(name), Bound: bound, Body: body}, nil

	case ops.Let:
		return nil, fmt.Errorf("let not allowed here")

	case ops.Select:
		cols, err := lowerVarList(v.Left)
		if err != nil {
			return nil, err
		}
		src, err := lower(v.Right)
		if err != nil {
			return nil, err
		}
		return exp.Select{Cols: cols, Src: src}, nil

	case ops.Where:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Where{Src: l, Cond: r}, nil

	case ops.Union:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Union{L: l, R: r}, nil

	case ops.Difference:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Difference{L: l, R: r}, nil

	case ops.Product:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Product{L: l, R: r}, nil

	case ops.Table:
		cols, err := lowerVarList(v.Left)
		if err != nil {
			return nil, err
		}
		cells, err := lowerExpList(v.Right)
		if err != nil {
			return nil, err
		}
		return exp.Table{Cols: cols, Cells: cells}, nil

	case ops.Item:
		return nil, fmt.Errorf("item not allowed here")

	case ops.Or:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Or{L: l, R: r}, nil

	case ops.Equals:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.Equals{L: l, R: r}, nil

	case ops.And:
		l, r, err := lowerPair(v)
		if err != nil {
			return nil, err
		}
		return exp.And{L: l, R: r}, nil

	case ops.App:
		f, err := lower(v.Left)
		if err != nil {
			return nil, err
		}
		name, ok := f.(exp.Var)
		if !ok {
			return nil, fmt.Errorf("cannot apply %v", f)
		}
		if string(name) != "not" {
			return nil, fmt.Errorf("unknown function: %s", string(name))
		}
		inner, err := lower(v.Right)
		if err != nil {
			return nil, err
		}
		return exp.Not{Inner: inner}, nil

	default:
		return nil, fmt.Errorf("parser: unhandled operator %v", v.Op)
	}
}

func lowerPair(v *binaryExp) (exp.Exp, exp.Exp, error) {
	l, err := lower(v.Left)
	if err != nil {
		return nil, nil, err
	}
	r, err := lower(v.Right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func lowerVarList(b bexp) ([]string, error) {
	switch v := b.(type) {
	case nilExp:
		return nil, nil
	case varExp:
		return []string{string(v)}, nil
	case *binaryExp:
		if v.Op != ops.Item {
			return nil, fmt.Errorf("expected variables")
		}
		head, ok := v.Left.(varExp)
		if !ok {
			return nil, fmt.Errorf("expected variable")
		}
		rest, err := lowerVarList(v.Right)
		if err != nil {
			return nil, err
		}
		return append([]string{string(head)}, rest...), nil
	default:
		return nil, fmt.Errorf("expected variables")
	}
}

func lowerExpList(b bexp) ([]exp.Exp, error) {
	if _, ok := b.(nilExp); ok {
		return nil, nil
	}
	if v, ok := b.(*binaryExp); ok && v.Op == ops.Item {
		head, err := lower(v.Left)
		if err != nil {
			return nil, err
		}
		rest, err := lowerExpList(v.Right)
		if err != nil {
			return nil, err
		}
		return append([]exp.Exp{head}, rest...), nil
	}
	single, err := lower(b)
	if err != nil {
		return nil, err
	}
	return []exp.Exp{single}, nil
}
