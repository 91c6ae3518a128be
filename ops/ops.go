// Package ops holds the DRD operator table: precedence, associativity and
// surface spelling, shared by the parser (to re-associate a flat token
// stream) and the printer (to decide minimal parenthesisation). Keeping a
// single table here is what lets parse and print agree on what "the same
// precedence" means.
package ops

// Op is one of the thirteen concrete surface operators, including the
// zero-width juxtaposition operator App.
type Op int

const (
	In Op = iota + 1
	Let
	Select
	Where
	Union
	Difference
	Product
	Table
	Item
	Or
	And
	Equals
	App
)

// Side is which child of a binary operator is being considered.
type Side int

const (
	Left Side = iota
	Right
)

// Prec returns the operator's precedence, 1 being loosest.
func (o Op) Prec() int {
	switch o {
	case In:
		return 1
	case Let:
		return 2
	case Select:
		return 3
	case Where:
		return 4
	case Union:
		return 5
	case Difference:
		return 6
	case Product:
		return 7
	case Table:
		return 8
	case Item:
		return 9
	case Or:
		return 10
	case And:
		return 11
	case Equals:
		return 12
	case App:
		return 13
	}
	panic("ops: unknown operator")
}

// Assoc returns the operator's associativity.
func (o Op) Assoc() Side {
	if o == In || o == Item {
		return Right
	}
	return Left
}

// Text is the symbol matched by the lexer, empty for App (whose surface
// form is juxtaposition: nothing between two atoms).
func (o Op) Text() string {
	switch o {
	case In:
		return ";"
	case Let:
		return "="
	case Select:
		return "<-"
	case Where:
		return "?"
	case Union:
		return "+"
	case Difference:
		return "-"
	case Product:
		return "*"
	case Table:
		return ":"
	case Item:
		return ","
	case Or:
		return "||"
	case And:
		return "&&"
	case Equals:
		return "=="
	case App:
		return ""
	}
	panic("ops: unknown operator")
}

// PrintText is the spacing an operator is surrounded with when printed.
// Whitespace is semantically irrelevant to re-parsing, so only Prec/Assoc
// affect the round-trip property.
func (o Op) PrintText() string {
	switch o {
	case In:
		return "; "
	case Let:
		return " = "
	case Select:
		return " <- "
	case Where:
		return " ? "
	case Union:
		return " + "
	case Difference:
		return " - "
	case Product:
		return " * "
	case Table:
		return " : "
	case Item:
		return ", "
	case Or:
		return " || "
	case And:
		return " && "
	case Equals:
		return " == "
	case App:
		return " "
	}
	panic("ops: unknown operator")
}

// candidates is the order the lexer tries multi-character tokens in: it
// must try "==" before "=" and "<-"/"||"/"&&" before any prefix of them,
// mirroring the alternative order the original parser combinator used.
var candidates = []Op{In, Equals, Let, Select, Where, Union, Difference, Product, Table, Item, Or, And}

// Match finds the operator whose Text is a prefix of input, trying
// candidates in priority order, falling back to App (the empty match)
// when none apply.
func Match(input string) (op Op, length int) {
	for _, c := range candidates {
		t := c.Text()
		if len(input) >= len(t) && input[:len(t)] == t {
			return c, len(t)
		}
	}
	return App, 0
}

// NeedsParens reports whether a child with operator `op`, serialised in
// `side` position of a parent operator `parent`, must be wrapped in
// parentheses to parse back to the same tree.
func NeedsParens(op, parent Op, side Side) bool {
	if op.Prec() < parent.Prec() {
		return true
	}
	return op.Prec() == parent.Prec() && op.Assoc() != side
}
