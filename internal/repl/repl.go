package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"lang417/internal/builtins"
	"lang417/internal/history"
	"lang417/internal/interpreter"
	"lang417/internal/lexer"
	"lang417/internal/parser"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
)

const (
	PROMPT      = "417> "
	CONT_PROMPT = "...> "
	historyFile = ".lang417_history"
)

// Prompter reads one line. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// Lister is the part of the history store the :history command needs.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

type Repl struct {
	session *interpreter.Session
	history Lister
	out     io.Writer
	errOut  io.Writer
	noPrint bool
}

func New(session *interpreter.Session, store Lister, out, errOut io.Writer) *Repl {
	return &Repl{session: session, history: store, out: out, errOut: errOut}
}

// SetNoPrint stops the REPL from echoing values; print still writes.
func (r *Repl) SetNoPrint(noPrint bool) { r.noPrint = noPrint }

// Start runs an interactive loop on the terminal until :quit or end of input.
func (r *Repl) Start(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(r.out, "417 interpreter. Type :quit to exit.")
	return r.Loop(ctx, ln, func(code string) {
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	})
}

// Loop reads inputs from p until :quit or end of input. remember is called with every input that
// was evaluated.
func (r *Repl) Loop(ctx context.Context, p Prompter, remember func(string)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		code, ok := ReadInput(p)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(ctx, trimmed); quit {
				return nil
			}
			continue
		}
		r.Eval(ctx, code)
		if remember != nil {
			remember(code)
		}
	}
}

// Eval evaluates one input and prints its value or error.
func (r *Repl) Eval(ctx context.Context, code string) {
	val, err := r.session.Eval(ctx, code)
	if err != nil {
		fmt.Fprintln(r.errOut, interpreter.Report(code, err))
		return
	}
	if !r.noPrint {
		fmt.Fprintln(r.out, val.Inspect())
	}
}

func (r *Repl) command(ctx context.Context, cmd string) bool {
	fields := strings.Fields(strings.ToLower(cmd))
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":names":
		fmt.Fprintln(r.out, strings.Join(r.session.Names(), " "))
	case ":builtins":
		fmt.Fprintln(r.out, strings.Join(builtins.Names(), " "))
	case ":history":
		r.listHistory(ctx, 20)
	default:
		fmt.Fprintf(r.out, "unknown command %s. Commands: :quit :names :builtins :history\n", fields[0])
	}
	return false
}

func (r *Repl) listHistory(ctx context.Context, limit int) {
	if r.history == nil {
		fmt.Fprintln(r.out, "history is disabled")
		return
	}
	entries, err := r.history.Recent(ctx, limit)
	if err != nil {
		slog.Warn("failed to read history", slog.Any("error", err))
		fmt.Fprintf(r.errOut, "could not read history: %v\n", err)
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		outcome := e.Result
		if e.Failed() {
			outcome = e.ErrorClass + ": " + e.ErrorMessage
		}
		fmt.Fprintf(r.out, "%4d  %s  %s  => %s\n",
			e.ID,
			e.CreatedAt.Local().Format(time.DateTime),
			strings.ReplaceAll(e.Source, "\n", " "),
			outcome)
	}
}

// ReadInput keeps prompting while the text read so far parses as an incomplete expression.
// It returns false at end of input.
func ReadInput(p Prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending input
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.Parse(lexer.Scan(src)); perr != nil && parser.IsIncomplete(perr) &&
			strings.TrimSpace(src) != "" {
			continue
		}
		return src, true
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
