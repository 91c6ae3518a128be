package parser

import "github.com/willmcpherson2/drd/ops"

// bexp is the flat binary-operator tree produced by precedence climbing,
// before it is lowered into exp.Exp. It mirrors the split the original
// implementation made between "what the operator stream looks like" and
// "what it means": re-association only needs to know precedence and
// associativity, not the meaning of any particular operator.
type bexp interface {
	bexpNode()
}

type binaryExp struct {
	Left  bexp
	Op    ops.Op
	Right bexp
}

type parensExp struct {
	Inner bexp
}

type boolExp bool
type intExp int64
type nilExp struct{}
type strExp string
type varExp string

func (*binaryExp) bexpNode() {}
func (parensExp) bexpNode()  {}
func (boolExp) bexpNode()    {}
func (intExp) bexpNode()     {}
func (nilExp) bexpNode()     {}
func (strExp) bexpNode()     {}
func (varExp) bexpNode()     {}

// leftAssociate folds a first atom and a sequence of (operator, atom)
// pairs into a left-leaning tree, ignoring precedence entirely.
func leftAssociate(first bexp, rest []opAtom) bexp {
	acc := first
	for _, p := range rest {
		acc = &binaryExp{Left: acc, Op: p.op, Right: p.atom}
	}
	return acc
}

type opAtom struct {
	op   ops.Op
	atom bexp
}

// reAssociate rewrites a naive left-associated tree into the tree the
// operator table's precedence and associativity actually demand: for
// (a l b) r c, if r binds tighter than l (or they're equal and r is
// right-associative), the correct grouping is a l (b r c).
func reAssociate(e bexp) bexp {
	top, ok := e.(*binaryExp)
	if !ok {
		return e
	}

	r := top.Op
	c := reAssociate(top.Right)
	left := reAssociate(top.Left)

	leftBin, ok := left.(*binaryExp)
	if !ok {
		return &binaryExp{Left: left, Op: r, Right: c}
	}

	a, l, b := leftBin.Left, leftBin.Op, leftBin.Right
	if r.Prec() > l.Prec() || (r.Prec() == l.Prec() && r.Assoc() == ops.Right) {
		right := &binaryExp{Left: b, Op: r, Right: c}
		return reAssociate(&binaryExp{Left: a, Op: l, Right: right})
	}
	return &binaryExp{Left: &binaryExp{Left: a, Op: l, Right: b}, Op: r, Right: c}
}
