package eval

import (
	"reflect"
	"testing"

	"github.com/willmcpherson2/drd/exp"
	"github.com/willmcpherson2/drd/parser"
)

func mustEval(t *testing.T, src string) exp.Exp {
	t.Helper()
	e, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	val, _, err := Eval(e, exp.Env{})
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return val
}

func TestEvalSelect(t *testing.T) {
	got := mustEval(t, "name <- name, id : 'Alice', 1, 'Bob', 2")
	want := exp.Table{Cols: []string{"name"}, Cells: []exp.Exp{exp.Str("Alice"), exp.Str("Bob")}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	got = mustEval(t, "foo <- name, id : 'Alice', 1, 'Bob', 2")
	want = exp.Table{Cols: []string{"foo"}, Cells: nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestEvalWhere(t *testing.T) {
	got := mustEval(t, "name, id : 'Alice', 1, 'Bob', 2 ? name == 'Alice'")
	want := exp.Table{Cols: []string{"name", "id"}, Cells: []exp.Exp{exp.Str("Alice"), exp.Int(1)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	got = mustEval(t, "name, id : 'Alice', 1, 'Bob', 2 ? id == 1 || id == 2")
	want = exp.Table{
		Cols:  []string{"name", "id"},
		Cells: []exp.Exp{exp.Str("Alice"), exp.Int(1), exp.Str("Bob"), exp.Int(2)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestEvalUnion(t *testing.T) {
	got := mustEval(t, "table = name, id : 'Alice', 1; table + table")
	want := exp.Table{
		Cols:  []string{"name", "id"},
		Cells: []exp.Exp{exp.Str("Alice"), exp.Int(1), exp.Str("Alice"), exp.Int(1)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestEvalDifference(t *testing.T) {
	got := mustEval(t, "(a, b : 1, 2, 3, 4) - (a, b : 1, 2)")
	want := exp.Table{Cols: []string{"a", "b"}, Cells: []exp.Exp{exp.Int(3), exp.Int(4)}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestEvalProduct(t *testing.T) {
	got := mustEval(t, "(a : 1, 2) * (b : 'x', 'y')")
	want := exp.Table{
		Cols: []string{"a", "b"},
		Cells: []exp.Exp{
			exp.Int(1), exp.Str("x"),
			exp.Int(1), exp.Str("y"),
			exp.Int(2), exp.Str("x"),
			exp.Int(2), exp.Str("y"),
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestEvalShortCircuitOr(t *testing.T) {
	e, _ := parser.Parse("true || x")
	val, _, err := Eval(e, exp.Env{})
	if err != nil {
		t.Fatalf("Or should short-circuit before touching undefined `x`: %v", err)
	}
	if val != exp.Bool(true) {
		t.Fatalf("got %#v, want true", val)
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	e, _ := parser.Parse("false && x")
	val, _, err := Eval(e, exp.Env{})
	if err != nil {
		t.Fatalf("And should short-circuit before touching undefined `x`: %v", err)
	}
	if val != exp.Bool(false) {
		t.Fatalf("got %#v, want false", val)
	}
}

func TestEvalOrFallsThroughNonBooleanOperand(t *testing.T) {
	got := mustEval(t, "5 || true")
	if got != exp.Bool(true) {
		t.Fatalf("got %#v, want true: a non-Bool left operand must not error, only fail to match Bool(true)", got)
	}

	got = mustEval(t, "5 || false")
	if got != exp.Bool(false) {
		t.Fatalf("got %#v, want false", got)
	}
}

func TestEvalAndFallsThroughNonBooleanOperand(t *testing.T) {
	got := mustEval(t, "5 && true")
	if got != exp.Bool(true) {
		t.Fatalf("got %#v, want true: a non-Bool left operand must not error, only fail to match Bool(false)", got)
	}

	got = mustEval(t, "5 && false")
	if got != exp.Bool(false) {
		t.Fatalf("got %#v, want false", got)
	}
}

func TestEvalUndefinedVariable(t *testing.T) {
	e, _ := parser.Parse("x")
	_, _, err := Eval(e, exp.Env{})
	if err == nil {
		t.Fatal("expected error for undefined variable")
	}
}

func TestEvalShadowing(t *testing.T) {
	got := mustEval(t, "x = 1; x = 2; x")
	if got != exp.Int(2) {
		t.Fatalf("got %#v, want 2", got)
	}
}

func TestEvalTopLevelEnvPersists(t *testing.T) {
	e, _ := parser.Parse("x = 1; y = 2; x")
	_, env, err := Eval(e, exp.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if env["x"] != exp.Int(1) || env["y"] != exp.Int(2) {
		t.Fatalf("expected outer let bindings to persist into returned env, got %#v", env)
	}
}

func TestEvalNestedLetDoesNotEscape(t *testing.T) {
	e, _ := parser.Parse("x = (y = 1; y); x")
	_, env, err := Eval(e, exp.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env["y"]; ok {
		t.Fatalf("nested let binding `y` should not escape into the returned env, got %#v", env)
	}
}
