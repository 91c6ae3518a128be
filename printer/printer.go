// Package printer renders an exp.Exp back to DRD source text. Print is
// the exact inverse of parser.Parse: Parse(Print(e)) always reproduces
// a structurally equivalent tree, and parentheses are inserted only
// where the operator table's precedence/associativity would otherwise
// change how the text re-parses.
package printer

import (
	"strconv"
	"strings"

	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/ops"
)

// Print renders e as DRD source text.
func Print(e exp.Exp) string {
	var b strings.Builder
	printBexp(&b, toBexp(e))
	return b.String()
}

// bexp mirrors the parser's internal flat tree: printing goes through
// the same intermediate shape parsing does, so the parenthesisation
// rules live in one place (ops.NeedsParens) instead of being
// duplicated per node kind.
type bexp interface{ bexpNode() }

type binaryBexp struct {
	left  bexp
	op    ops.Op
	right bexp
}
type parensBexp struct{ inner bexp }
type boolBexp bool
type intBexp int64
type nilBexp struct{}
type strBexp string
type varBexp string

func (binaryBexp) bexpNode() {}
func (parensBexp) bexpNode() {}
func (boolBexp) bexpNode()   {}
func (intBexp) bexpNode()    {}
func (nilBexp) bexpNode()    {}
func (strBexp) bexpNode()    {}
func (varBexp) bexpNode()    {}

func toBexp(e exp.Exp) bexp {
	switch v := e.(type) {
	case exp.Let:
		return binaryBexp{
			left:  binaryBexp{left: varBexp(v.Name), op: ops.Let, right: withParens(v.Bound, ops.Let, ops.Right)},
			op:    ops.In,
			right: withParens(v.Body, ops.In, ops.Right),
		}
	case exp.Select:
		return binaryBexp{left: varList(v.Cols), op: ops.Select, right: withParens(v.Src, ops.Select, ops.Right)}
	case exp.Where:
		return binaryBexp{left: withParens(v.Src, ops.Where, ops.Left), op: ops.Where, right: withParens(v.Cond, ops.Where, ops.Right)}
	case exp.Union:
		return binaryBexp{left: withParens(v.L, ops.Union, ops.Left), op: ops.Union, right: withParens(v.R, ops.Union, ops.Right)}
	case exp.Difference:
		return binaryBexp{left: withParens(v.L, ops.Difference, ops.Left), op: ops.Difference, right: withParens(v.R, ops.Difference, ops.Right)}
	case exp.Product:
		return binaryBexp{left: withParens(v.L, ops.Product, ops.Left), op: ops.Product, right: withParens(v.R, ops.Product, ops.Right)}
	case exp.Table:
		if exp.IsEmptyTable(v) {
			return nilBexp{}
		}
		return binaryBexp{left: varList(v.Cols), op: ops.Table, right: expList(v.Cells)}
	case exp.Or:
		return binaryBexp{left: withParens(v.L, ops.Or, ops.Left), op: ops.Or, right: withParens(v.R, ops.Or, ops.Right)}
	case exp.Equals:
		return binaryBexp{left: withParens(v.L, ops.Equals, ops.Left), op: ops.Equals, right: withParens(v.R, ops.Equals, ops.Right)}
	case exp.And:
		return binaryBexp{left: withParens(v.L, ops.And, ops.Left), op: ops.And, right: withParens(v.R, ops.And, ops.Right)}
	case exp.Not:
		return binaryBexp{left: varBexp("not"), op: ops.App, right: withParens(v.Inner, ops.App, ops.Left)}
	case exp.Bool:
		return boolBexp(v)
	case exp.Int:
		return intBexp(v)
	case exp.Str:
		return strBexp(v)
	case exp.Var:
		return varBexp(v)
	default:
		panic("printer: unhandled exp node")
	}
}

func varList(vars []string) bexp {
	if len(vars) == 0 {
		return nilBexp{}
	}
	acc := bexp(varBexp(vars[0]))
	for _, v := range vars[1:] {
		acc = binaryBexp{left: acc, op: ops.Item, right: varBexp(v)}
	}
	return acc
}

func expList(exps []exp.Exp) bexp {
	if len(exps) == 0 {
		return nilBexp{}
	}
	acc := withParens(exps[0], ops.Item, ops.Left)
	for _, e := range exps[1:] {
		acc = binaryBexp{left: acc, op: ops.Item, right: withParens(e, ops.Item, ops.Right)}
	}
	return acc
}

func withParens(e exp.Exp, parent ops.Op, side ops.Side) bexp {
	b := toBexp(e)
	bin, ok := b.(binaryBexp)
	if !ok {
		return b
	}
	if ops.NeedsParens(bin.op, parent, side) {
		return parensBexp{inner: b}
	}
	return b
}

func printBexp(b *strings.Builder, e bexp) {
	switch v := e.(type) {
	case binaryBexp:
		printBexp(b, v.left)
		b.WriteString(v.op.PrintText())
		printBexp(b, v.right)
	case parensBexp:
		b.WriteByte('(')
		printBexp(b, v.inner)
		b.WriteByte(')')
	case boolBexp:
		b.WriteString(strconv.FormatBool(bool(v)))
	case intBexp:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case nilBexp:
		b.WriteString("nil")
	case strBexp:
		b.WriteByte('\'')
		b.WriteString(string(v))
		b.WriteByte('\'')
	case varBexp:
		b.WriteString(string(v))
	}
}
