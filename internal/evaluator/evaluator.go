package evaluator

import (
	"errors"
	"fmt"
	"io"
	"lang417/internal/object"
	"log/slog"
)

// DefaultMaxDepth bounds nested Eval calls. Every call in the language costs a handful of them.
const DefaultMaxDepth = 100000

// ErrRecursionLimit is returned instead of letting the host stack overflow. It is never wrapped
// in an *object.RuntimeError.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// Config is fixed for the lifetime of an Evaluator, so two evaluators with different settings
// can run side by side.
type Config struct {
	Trace          bool
	LexicalScoping bool
	MaxDepth       int       // zero means DefaultMaxDepth
	TraceOut       io.Writer // where trace lines go when Trace is set
}

type Evaluator struct {
	config   Config
	depth    int
	envStack []*object.Environment // caller frames of the procedures currently running
}

func New(config Config) *Evaluator {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.TraceOut == nil {
		config.TraceOut = io.Discard
	}
	return &Evaluator{config: config}
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

// CurrentEnv is the frame a running procedure was called from, or nil outside of one.
func (e *Evaluator) CurrentEnv() *object.Environment {
	if len(e.envStack) == 0 {
		return nil
	}
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) == 0 {
		panic("Attempted to pop from an empty environment stack")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

// Eval evaluates a desugared expression in env.
func (e *Evaluator) Eval(node object.Expression, env *object.Environment) (object.Expression, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.config.MaxDepth {
		return nil, ErrRecursionLimit
	}

	if e.config.Trace {
		fmt.Fprintf(e.config.TraceOut, "Evaluating %s expression: %s\n", node.Type(), node.Inspect())
	}

	switch node := node.(type) {
	case *object.Integer, *object.String, *object.Boolean,
		*object.Lambda, *object.Procedure, *object.List:
		return node, nil

	case *object.Identifier:
		return e.evalIdentifier(node, env)

	case *object.Block:
		return e.evalBlock(node, env)

	case *object.Conditional:
		return e.evalConditional(node, env)

	case *object.Let:
		return e.evalLet(node, env)

	case *object.Definition:
		return e.evalDefinition(node, env)

	case *object.Assignment:
		return e.evalAssignment(node, env)

	case *object.Application:
		return e.evalApplication(node, env)

	case *object.Dummy:
		return nil, object.NewError(object.UsedBeforeDefinition,
			"tried evaluating the placeholder bound during a def expression")

	case *object.Parameters, *object.Clause:
		return nil, object.NewError(object.Internal, "cannot evaluate a %s expression on its own", node.Type())
	}
	return nil, object.NewError(object.Internal, "unknown expression %T", node)
}

func (e *Evaluator) evalIdentifier(node *object.Identifier, env *object.Environment) (object.Expression, error) {
	val, ok := env.Get(node.Name)
	if !ok {
		return nil, object.NewError(object.UnboundIdentifier, "unbound identifier: %q", node.Name)
	}
	if object.IsDummy(val) {
		return nil, object.NewError(object.UsedBeforeDefinition, "%q used before its definition", node.Name)
	}
	return val, nil
}

// evalBlock reserves every name the block defines before running it, so definitions can refer
// to each other from inside lambda bodies.
func (e *Evaluator) evalBlock(block *object.Block, env *object.Environment) (object.Expression, error) {
	blockEnv := object.NewEnclosedEnvironment(env)
	for _, exp := range block.Expressions {
		if def, ok := exp.(*object.Definition); ok {
			blockEnv.Declare(def.Identifier.Name)
		}
	}

	var result object.Expression = object.FALSE
	for _, exp := range block.Expressions {
		val, err := e.Eval(exp, blockEnv)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (e *Evaluator) evalConditional(cond *object.Conditional, env *object.Environment) (object.Expression, error) {
	for _, clause := range cond.Clauses {
		test, err := e.Eval(clause.Test, env)
		if err != nil {
			return nil, err
		}
		b, ok := test.(*object.Boolean)
		if !ok {
			return nil, object.NewError(object.TypeMismatch,
				"expected boolean but clause test evaluated as %s", test.Type())
		}
		if b.Value {
			return e.Eval(clause.Consequent, env)
		}
	}
	return object.FALSE, nil
}

func (e *Evaluator) evalLet(let *object.Let, env *object.Environment) (object.Expression, error) {
	val, err := e.Eval(let.Value, env)
	if err != nil {
		return nil, err
	}
	letEnv := object.NewEnclosedEnvironment(env)
	letEnv.Define(let.Identifier.Name, val)
	e.capture(let.Identifier.Name, val, letEnv)
	return e.Eval(let.Body, letEnv)
}

func (e *Evaluator) evalDefinition(def *object.Definition, env *object.Environment) (object.Expression, error) {
	val, err := e.Eval(def.Value, env)
	if err != nil {
		return nil, err
	}
	target, ok := env.FindPlaceholder(def.Identifier.Name)
	if !ok {
		return nil, object.NewError(object.Internal,
			"unable to find the placeholder binding for def %q", def.Identifier.Name)
	}
	e.capture(def.Identifier.Name, val, target)
	target.Define(def.Identifier.Name, val)
	return val, nil
}

func (e *Evaluator) evalAssignment(assign *object.Assignment, env *object.Environment) (object.Expression, error) {
	val, err := e.Eval(assign.Value, env)
	if err != nil {
		return nil, err
	}
	target, ok := env.FindBinding(assign.Identifier.Name)
	if !ok {
		return nil, object.NewError(object.UnboundIdentifier, "unbound identifier: %q", assign.Identifier.Name)
	}
	target.Define(assign.Identifier.Name, val)
	return val, nil
}

// capture fixes the defining frame of a lambda bound by def or let. Only the first binding site
// counts.
func (e *Evaluator) capture(name string, val object.Expression, env *object.Environment) {
	if !e.config.LexicalScoping {
		return
	}
	lambda, ok := val.(*object.Lambda)
	if !ok {
		return
	}
	if lambda.Capture(env) {
		slog.Debug("closure captured",
			slog.String("name", name),
			slog.Uint64("frame", env.ID),
		)
	}
}

func (e *Evaluator) evalApplication(app *object.Application, env *object.Environment) (object.Expression, error) {
	operator, err := e.Eval(app.Operator(), env)
	if err != nil {
		return nil, err
	}

	operands := make([]object.Expression, 0, len(app.Operands()))
	for _, exp := range app.Operands() {
		val, err := e.Eval(exp, env)
		if err != nil {
			return nil, err
		}
		operands = append(operands, val)
	}

	return e.apply(operator, operands, env)
}

// Apply calls fn with already evaluated arguments on behalf of a running procedure, such as map.
// Lambdas without a captured frame are parented on the frame that procedure was called from.
func (e *Evaluator) Apply(fn object.Expression, args []object.Expression) (object.Expression, error) {
	env := e.CurrentEnv()
	if env == nil {
		return nil, object.NewError(object.Internal, "apply called outside of a procedure")
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.config.MaxDepth {
		return nil, ErrRecursionLimit
	}
	return e.apply(fn, args, env)
}

func (e *Evaluator) apply(fn object.Expression, args []object.Expression, env *object.Environment) (object.Expression, error) {
	switch fn := fn.(type) {
	case *object.Procedure:
		e.PushEnv(env)
		defer e.PopEnv()
		return fn.Fn(args)

	case *object.Lambda:
		if len(args) != fn.Arity() {
			return nil, object.NewError(object.WrongArity,
				"lambda called with wrong number of arguments. got=%d, want=%d", len(args), fn.Arity())
		}
		return e.Eval(fn.Body, e.extendFunctionEnv(fn, args, env))

	default:
		return nil, object.NewError(object.NotCallable, "not a procedure or lambda: %s", fn.Inspect())
	}
}

// extendFunctionEnv binds the parameters in a fresh frame whose parent is the captured frame
// under lexical scoping, and the caller's frame otherwise.
func (e *Evaluator) extendFunctionEnv(fn *object.Lambda, args []object.Expression, caller *object.Environment) *object.Environment {
	parent := caller
	if e.config.LexicalScoping && fn.Env != nil {
		parent = fn.Env
	}
	env := object.NewEnclosedEnvironment(parent)
	for i, param := range fn.Parameters.Identifiers {
		env.Define(param.Name, args[i])
	}
	return env
}
