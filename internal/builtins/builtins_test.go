package builtins

import (
	"bytes"
	"lang417/internal/object"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newEnv(t *testing.T, out *bytes.Buffer, in string) *object.Environment {
	t.Helper()
	env := object.NewEnvironment()
	Register(env, Host{
		Out: out,
		In:  strings.NewReader(in),
		Apply: func(fn object.Expression, args []object.Expression) (object.Expression, error) {
			if p, ok := fn.(*object.Procedure); ok {
				return p.Fn(args)
			}
			return nil, object.NewError(object.NotCallable, "not callable")
		},
	})
	return env
}

func call(t *testing.T, env *object.Environment, name string, args ...object.Expression) (object.Expression, error) {
	t.Helper()
	val, ok := env.Get(name)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}
	proc, ok := val.(*object.Procedure)
	if !ok {
		t.Fatalf("%s is not a procedure", name)
	}
	return proc.Fn(args)
}

func integer(n int64) *object.Integer { return &object.Integer{Value: n} }
func str(s string) *object.String     { return &object.String{Value: s} }
func list(items ...object.Expression) *object.List {
	return &object.List{Elements: items}
}

func TestPrelude(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{}, "")
	for name, expected := range map[string]string{"x": "10", "v": "5", "i": "1", "true": "true", "false": "false"} {
		val, ok := env.Get(name)
		if !ok || val.Inspect() != expected {
			t.Errorf("%s: expected %s, got %v", name, expected, val)
		}
	}
	for _, name := range Names() {
		if _, ok := env.GetLocal(name); !ok {
			t.Errorf("%s listed but not bound", name)
		}
	}
}

func TestProcedures(t *testing.T) {
	cases := []struct {
		name     string
		proc     string
		args     []object.Expression
		expected string
	}{
		{"add", "add", []object.Expression{integer(10), integer(2)}, "12"},
		{"sub", "sub", []object.Expression{integer(1), integer(3)}, "-2"},
		{"mul", "mul", []object.Expression{integer(-4), integer(3)}, "-12"},
		{"mul by zero", "mul", []object.Expression{integer(0), integer(math.MinInt64)}, "0"},
		{"div truncates", "div", []object.Expression{integer(-7), integer(2)}, "-3"},
		{"mod keeps sign", "mod", []object.Expression{integer(-7), integer(2)}, "-1"},
		{"equals integers", "equals?", []object.Expression{integer(1), integer(1)}, "true"},
		{"equals strings", "equals?", []object.Expression{str("a"), str("b")}, "false"},
		{"equals mixed", "equals?", []object.Expression{str("1"), integer(1)}, "false"},
		{"greaterThan", "greaterThan?", []object.Expression{integer(2), integer(1)}, "true"},
		{"lessThan", "lessThan?", []object.Expression{integer(2), integer(1)}, "false"},
		{"zero", "zero?", []object.Expression{integer(0)}, "true"},
		{"or", "or?", []object.Expression{object.FALSE, object.FALSE, object.TRUE}, "true"},
		{"and", "and?", []object.Expression{object.TRUE, object.FALSE}, "false"},
		{"not", "not?", []object.Expression{object.FALSE}, "true"},
		{"concat", "concat", []object.Expression{str("a"), str("b"), str("c")}, `"abc"`},
		{"charAt", "charAt", []object.Expression{str("héllo"), integer(1)}, `"é"`},
		{"substring", "substring", []object.Expression{str("hello"), integer(1), integer(3)}, `"el"`},
		{"empty substring", "substring", []object.Expression{str("hello"), integer(2), integer(2)}, `""`},
		{"length counts characters", "length", []object.Expression{str("héllo")}, "5"},
		{"isDigit", "isDigit?", []object.Expression{str("7")}, "true"},
		{"isLetter", "isLetter?", []object.Expression{str("7")}, "false"},
		{"parseInt", "parseInt", []object.Expression{str("-42")}, "-42"},
		{"parseInt fails softly", "parseInt", []object.Expression{str("4x2")}, "false"},
		{"cons nothing", "cons", nil, `{"List":[]}`},
		{"cons", "cons", []object.Expression{integer(1), list(integer(2))}, `{"List":[1,2]}`},
		{"head", "head", []object.Expression{list(integer(1), integer(2))}, "1"},
		{"tail", "tail", []object.Expression{list(integer(1), integer(2))}, `{"List":[2]}`},
		{"isEmpty", "isEmpty?", []object.Expression{list()}, "true"},
		{"reverse", "reverse", []object.Expression{list(integer(1), integer(2), integer(3))}, `{"List":[3,2,1]}`},
		{"append", "append", []object.Expression{list(integer(1)), list(integer(2), integer(3))}, `{"List":[1,2,3]}`},
		{"type", "type", []object.Expression{str("s")}, `"STRING"`},
		{"type of list", "type", []object.Expression{list()}, `"LIST"`},
	}

	env := newEnv(t, &bytes.Buffer{}, "")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			val, err := call(t, env, c.proc, c.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if val.Inspect() != c.expected {
				t.Errorf("expected %s, got %s", c.expected, val.Inspect())
			}
		})
	}
}

func TestProcedureErrors(t *testing.T) {
	cases := []struct {
		name string
		proc string
		args []object.Expression
		kind object.ErrorKind
	}{
		{"add overflows", "add", []object.Expression{integer(math.MaxInt64), integer(1)}, object.ArithmeticOverflow},
		{"add underflows", "add", []object.Expression{integer(math.MinInt64), integer(-1)}, object.ArithmeticOverflow},
		{"sub overflows", "sub", []object.Expression{integer(math.MinInt64), integer(1)}, object.ArithmeticOverflow},
		{"mul overflows", "mul", []object.Expression{integer(math.MaxInt64), integer(2)}, object.ArithmeticOverflow},
		{"mul min by minus one", "mul", []object.Expression{integer(math.MinInt64), integer(-1)}, object.ArithmeticOverflow},
		{"div min by minus one", "div", []object.Expression{integer(math.MinInt64), integer(-1)}, object.ArithmeticOverflow},
		{"div by zero", "div", []object.Expression{integer(1), integer(0)}, object.DivisionByZero},
		{"mod by zero", "mod", []object.Expression{integer(1), integer(0)}, object.DivisionByZero},
		{"add needs integers", "add", []object.Expression{str("1"), integer(1)}, object.TypeMismatch},
		{"add arity", "add", []object.Expression{integer(1)}, object.WrongArity},
		{"or needs two", "or?", []object.Expression{object.TRUE}, object.WrongArity},
		{"or checks every type", "or?", []object.Expression{object.TRUE, integer(1)}, object.TypeMismatch},
		{"concat needs strings", "concat", []object.Expression{str("a"), integer(1)}, object.TypeMismatch},
		{"charAt out of bounds", "charAt", []object.Expression{str("ab"), integer(2)}, object.InvalidArgument},
		{"substring bad bounds", "substring", []object.Expression{str("ab"), integer(2), integer(1)}, object.InvalidArgument},
		{"isDigit one character", "isDigit?", []object.Expression{str("12")}, object.InvalidArgument},
		{"head of empty", "head", []object.Expression{list()}, object.InvalidArgument},
		{"tail of empty", "tail", []object.Expression{list()}, object.InvalidArgument},
		{"cons needs a list", "cons", []object.Expression{integer(1), integer(2)}, object.TypeMismatch},
		{"map needs a function", "map", []object.Expression{integer(1), list()}, object.TypeMismatch},
		{"fail", "fail", []object.Expression{str("boom "), integer(1)}, object.UserFailure},
		{"readFile missing", "readFile", []object.Expression{str(filepath.Join(t.TempDir(), "missing"))}, object.IOFailure},
	}

	env := newEnv(t, &bytes.Buffer{}, "")
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := call(t, env, c.proc, c.args...)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !object.IsKind(err, c.kind) {
				t.Errorf("expected %s, got %v", c.kind, err)
			}
		})
	}
}

func TestFailMessage(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{}, "")
	_, err := call(t, env, "fail", str("bad value: "), integer(3))
	if err == nil || !strings.Contains(err.Error(), "bad value: 3") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	env := newEnv(t, &out, "")
	val, err := call(t, env, "print", str("n = "), integer(3), list(str("a")))
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out.String() != "n = 3{\"List\":[\"a\"]}\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if val.Inspect() != `"n = 3{"List":["a"]}"` {
		t.Errorf("unexpected result %s", val.Inspect())
	}
}

func TestReadLineAndInput(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{}, "first\r\nsecond\nthird\n")

	line, err := call(t, env, "readLine")
	if err != nil || line.Inspect() != `"first"` {
		t.Fatalf("readLine: %v %v", line, err)
	}
	rest, err := call(t, env, "readInput")
	if err != nil || rest.Inspect() != `"secondthird"` {
		t.Fatalf("readInput: %v %v", rest, err)
	}
	empty, err := call(t, env, "readLine")
	if err != nil || empty.Inspect() != `""` {
		t.Fatalf("readLine at end of input: %v %v", empty, err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("one\r\ntwo"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := newEnv(t, &bytes.Buffer{}, "")
	val, err := call(t, env, "readFile", str(path))
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if val.(*object.String).Value != "one\ntwo\n" {
		t.Errorf("unexpected contents %q", val.(*object.String).Value)
	}
}

func TestMapAppliesProcedure(t *testing.T) {
	env := newEnv(t, &bytes.Buffer{}, "")
	isZero, _ := env.Get("zero?")
	val, err := call(t, env, "map", isZero, list(integer(0), integer(1)))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if val.Inspect() != `{"List":[true,false]}` {
		t.Errorf("unexpected result %s", val.Inspect())
	}
}
