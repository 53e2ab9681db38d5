package interpreter

import (
	"context"
	"errors"
	"io"
	"lang417/internal/builtins"
	"lang417/internal/desugar"
	"lang417/internal/evaluator"
	"lang417/internal/history"
	"lang417/internal/lexer"
	"lang417/internal/object"
	"lang417/internal/parser"
	"log/slog"
	"os"
	"time"
)

// Recorder receives one entry per evaluated program. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

type Options struct {
	Trace          bool
	LexicalScoping bool
	MaxDepth       int
	TraceOut       io.Writer // defaults to Stdout
	Stdout         io.Writer // defaults to os.Stdout
	Stdin          io.Reader // defaults to os.Stdin
	Recorder       Recorder  // optional
}

type Interpreter struct {
	opts Options
}

func New(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.TraceOut == nil {
		opts.TraceOut = opts.Stdout
	}
	return &Interpreter{opts: opts}
}

// Run scans, parses, desugars and evaluates source with the default stdio.
func Run(source string, trace, lexicalScoping bool) (object.Expression, error) {
	in := New(Options{Trace: trace, LexicalScoping: lexicalScoping})
	return in.Run(context.Background(), source)
}

// Compile turns source into a desugared expression tree.
func Compile(source string) (object.Expression, error) {
	exp, err := parser.Parse(lexer.Scan(source))
	if err != nil {
		return nil, err
	}
	return desugar.Desugar(exp)
}

// Run evaluates source in a fresh session.
func (in *Interpreter) Run(ctx context.Context, source string) (object.Expression, error) {
	return in.NewSession().Eval(ctx, source)
}

// Session keeps one frame alive across inputs, so a top-level def stays bound for the next one.
type Session struct {
	in        *Interpreter
	evaluator *evaluator.Evaluator
	global    *object.Environment
	frame     *object.Environment
}

func (in *Interpreter) NewSession() *Session {
	s := &Session{in: in}
	s.evaluator = evaluator.New(evaluator.Config{
		Trace:          in.opts.Trace,
		LexicalScoping: in.opts.LexicalScoping,
		MaxDepth:       in.opts.MaxDepth,
		TraceOut:       in.opts.TraceOut,
	})
	s.global = object.NewEnvironment()
	builtins.Register(s.global, builtins.Host{
		Out:   in.opts.Stdout,
		In:    in.opts.Stdin,
		Apply: s.evaluator.Apply,
	})
	s.frame = object.NewEnclosedEnvironment(s.global)
	return s
}

// Eval runs one input in the session frame.
func (s *Session) Eval(ctx context.Context, source string) (object.Expression, error) {
	start := time.Now()
	exp, err := Compile(source)
	var result object.Expression
	if err == nil {
		def, isDef := exp.(*object.Definition)
		var prev object.Expression
		var hadPrev bool
		if isDef {
			prev, hadPrev = s.frame.GetLocal(def.Identifier.Name)
			s.frame.Declare(def.Identifier.Name)
		}
		result, err = s.eval(exp, s.frame)
		if err != nil && isDef {
			s.restore(def.Identifier.Name, prev, hadPrev)
		}
	}
	s.in.record(ctx, source, result, err, time.Since(start))
	return result, err
}

// restore undoes the placeholder a failed top-level def left behind.
func (s *Session) restore(name string, prev object.Expression, hadPrev bool) {
	if hadPrev {
		s.frame.Define(name, prev)
		return
	}
	delete(s.frame.Bindings, name)
}

// Names lists what the session has defined so far.
func (s *Session) Names() []string {
	return s.frame.Names()
}

func (s *Session) eval(exp object.Expression, env *object.Environment) (result object.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("evaluator panic", slog.Any("panic", r))
			result, err = nil, object.NewError(object.Internal, "%v", r)
		}
	}()
	return s.evaluator.Eval(exp, env)
}

func (in *Interpreter) record(ctx context.Context, source string, result object.Expression, err error, elapsed time.Duration) {
	if in.opts.Recorder == nil {
		return
	}
	entry := history.Entry{
		Source:         source,
		LexicalScoping: in.opts.LexicalScoping,
		Trace:          in.opts.Trace,
		Duration:       elapsed,
		CreatedAt:      time.Now().UTC(),
	}
	if err != nil {
		entry.ErrorClass = Classify(err)
		entry.ErrorMessage = err.Error()
	} else if result != nil {
		entry.Result = result.Inspect()
	}
	if rerr := in.opts.Recorder.Record(ctx, entry); rerr != nil {
		slog.Warn("failed to record run", slog.Any("error", rerr))
	}
}

// Classify names the stage an error came from: "parse", "desugar", "recursion", the runtime error
// kind, or "internal".
func Classify(err error) string {
	var pe *parser.Error
	var ie *desugar.InvariantError
	switch {
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ie):
		return "desugar"
	case errors.Is(err, evaluator.ErrRecursionLimit):
		return "recursion"
	}
	if kind, ok := object.KindOf(err); ok && kind != object.Internal {
		return kind.String()
	}
	return "internal"
}
