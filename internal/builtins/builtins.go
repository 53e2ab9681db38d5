package builtins

import (
	"bufio"
	"io"
	"lang417/internal/object"
	"os"
	"sort"
)

// Host is what the procedures need from the program running them.
type Host struct {
	Out   io.Writer
	In    io.Reader
	Apply func(fn object.Expression, args []object.Expression) (object.Expression, error)
}

type library struct {
	out   io.Writer
	in    *bufio.Reader
	apply func(fn object.Expression, args []object.Expression) (object.Expression, error)
}

var prelude = map[string]object.Expression{
	"x":     &object.Integer{Value: 10},
	"v":     &object.Integer{Value: 5},
	"i":     &object.Integer{Value: 1},
	"true":  object.TRUE,
	"false": object.FALSE,
}

// Register binds the prelude values and every procedure into env.
func Register(env *object.Environment, host Host) {
	lib := &library{out: host.Out, apply: host.Apply}
	if lib.out == nil {
		lib.out = os.Stdout
	}
	if host.In == nil {
		host.In = os.Stdin
	}
	lib.in = bufio.NewReader(host.In)

	for name, val := range prelude {
		env.Define(name, val)
	}
	for name, fn := range lib.procedures() {
		env.Define(name, &object.Procedure{Name: name, Fn: fn})
	}
}

func (lib *library) procedures() map[string]object.ProcedureFunction {
	return map[string]object.ProcedureFunction{
		// math
		"add": funcAdd,
		"sub": funcSub,
		"mul": funcMul,
		"div": funcDiv,
		"mod": funcMod,

		// logic
		"equals?":      funcEquals,
		"greaterThan?": funcGreaterThan,
		"lessThan?":    funcLessThan,
		"zero?":        funcZero,
		"or?":          funcOr,
		"and?":         funcAnd,
		"not?":         funcNot,

		// io
		"print":     lib.funcPrint,
		"fail":      funcFail,
		"readInput": lib.funcReadInput,
		"readLine":  lib.funcReadLine,
		"readFile":  funcReadFile,

		// strings
		"concat":    funcConcat,
		"charAt":    funcCharAt,
		"substring": funcSubstring,
		"length":    funcLength,
		"isDigit?":  funcIsDigit,
		"isLetter?": funcIsLetter,
		"parseInt":  funcParseInt,

		// lists
		"cons":     funcCons,
		"head":     funcHead,
		"tail":     funcTail,
		"isEmpty?": funcIsEmpty,
		"reverse":  funcReverse,
		"append":   funcAppend,
		"map":      lib.funcMap,

		"type": funcType,
	}
}

// Names lists every name Register binds, sorted.
func Names() []string {
	lib := &library{}
	var names []string
	for name := range prelude {
		names = append(names, name)
	}
	for name := range lib.procedures() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func funcType(args []object.Expression) (object.Expression, error) {
	if err := arity("type", args, 1); err != nil {
		return nil, err
	}
	return &object.String{Value: string(args[0].Type())}, nil
}

func arity(name string, args []object.Expression, want int) error {
	if len(args) != want {
		return object.NewError(object.WrongArity,
			"wrong number of arguments to `%s`. got=%d, want=%d", name, len(args), want)
	}
	return nil
}

func atLeast(name string, args []object.Expression, want int) error {
	if len(args) < want {
		return object.NewError(object.WrongArity,
			"wrong number of arguments to `%s`. got=%d, want=%d+", name, len(args), want)
	}
	return nil
}

func typeError(name string, want object.ObjectType, got object.Expression) error {
	return object.NewError(object.TypeMismatch, "argument to `%s` must be %s, got %s", name, want, got.Type())
}

func integers(name string, args []object.Expression) ([]int64, error) {
	values := make([]int64, len(args))
	for i, arg := range args {
		n, ok := arg.(*object.Integer)
		if !ok {
			return nil, typeError(name, object.INTEGER_OBJ, arg)
		}
		values[i] = n.Value
	}
	return values, nil
}

func booleans(name string, args []object.Expression) ([]bool, error) {
	values := make([]bool, len(args))
	for i, arg := range args {
		b, ok := arg.(*object.Boolean)
		if !ok {
			return nil, typeError(name, object.BOOLEAN_OBJ, arg)
		}
		values[i] = b.Value
	}
	return values, nil
}

func stringArg(name string, arg object.Expression) (string, error) {
	s, ok := arg.(*object.String)
	if !ok {
		return "", typeError(name, object.STRING_OBJ, arg)
	}
	return s.Value, nil
}

func listArg(name string, arg object.Expression) (*object.List, error) {
	l, ok := arg.(*object.List)
	if !ok {
		return nil, typeError(name, object.LIST_OBJ, arg)
	}
	return l, nil
}
