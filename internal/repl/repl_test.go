package repl

import (
	"bytes"
	"context"
	"io"
	"lang417/internal/history"
	"lang417/internal/interpreter"
	"strings"
	"testing"
	"time"
)

type scriptedPrompter struct {
	lines   []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type fakeHistory struct {
	entries []history.Entry
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]history.Entry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func newRepl(out, errOut *bytes.Buffer, store Lister) *Repl {
	in := interpreter.New(interpreter.Options{LexicalScoping: true, Stdout: out, Stdin: strings.NewReader("")})
	return New(in.NewSession(), store, out, errOut)
}

func TestReadInputContinuesIncompleteExpressions(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"{ let a = 1;", "  add(a,", "2) }", "a"}}

	code, ok := ReadInput(p)
	if !ok {
		t.Fatalf("expected input")
	}
	if code != "{ let a = 1;\n  add(a,\n2) }" {
		t.Errorf("unexpected input %q", code)
	}
	expected := []string{PROMPT, CONT_PROMPT, CONT_PROMPT}
	for i, prompt := range expected {
		if p.prompts[i] != prompt {
			t.Errorf("prompt %d: expected %q, got %q", i, prompt, p.prompts[i])
		}
	}

	code, ok = ReadInput(p)
	if !ok || code != "a" {
		t.Errorf("expected the next input, got %q %v", code, ok)
	}
	if _, ok := ReadInput(p); ok {
		t.Errorf("expected end of input")
	}
}

func TestReadInputReturnsMalformedInputImmediately(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"add(1, 2))", "x"}}
	code, ok := ReadInput(p)
	if !ok || code != "add(1, 2))" {
		t.Errorf("unexpected input %q %v", code, ok)
	}
}

func TestLoopKeepsDefinitions(t *testing.T) {
	var out, errOut bytes.Buffer
	r := newRepl(&out, &errOut, nil)
	p := &scriptedPrompter{lines: []string{
		"def sq = lambda (n) { mul(n, n) }",
		"sq(7)",
		"nope",
		":names",
		":quit",
		"sq(2)",
	}}

	var remembered []string
	if err := r.Loop(context.Background(), p, func(code string) { remembered = append(remembered, code) }); err != nil {
		t.Fatalf("loop: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 output lines, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], `{"Lambda":`) {
		t.Errorf("expected the lambda, got %q", lines[0])
	}
	if lines[1] != "49" {
		t.Errorf("expected 49, got %q", lines[1])
	}
	if lines[2] != "sq" {
		t.Errorf("expected session names, got %q", lines[2])
	}
	if !strings.Contains(errOut.String(), "UnboundIdentifier") {
		t.Errorf("expected an unbound identifier error, got %q", errOut.String())
	}
	if len(remembered) != 3 {
		t.Errorf("expected 3 remembered inputs, got %v", remembered)
	}
}

func TestNoPrint(t *testing.T) {
	var out, errOut bytes.Buffer
	r := newRepl(&out, &errOut, nil)
	r.SetNoPrint(true)
	r.Eval(context.Background(), `print("hi")`)
	if out.String() != "hi\n" {
		t.Errorf("expected only the printed text, got %q", out.String())
	}
}

func TestHistoryCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	store := &fakeHistory{entries: []history.Entry{
		{ID: 2, Source: "div(1, 0)", ErrorClass: "DivisionByZero", ErrorMessage: "division by zero", CreatedAt: time.Now()},
		{ID: 1, Source: "add(1,\n2)", Result: "3", CreatedAt: time.Now()},
	}}
	r := newRepl(&out, &errOut, store)
	r.command(context.Background(), ":history")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if !strings.Contains(lines[0], "add(1, 2)") || !strings.HasSuffix(lines[0], "=> 3") {
		t.Errorf("oldest entry should come first: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "=> DivisionByZero: division by zero") {
		t.Errorf("unexpected failure line %q", lines[1])
	}
}

func TestBuiltinsCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	r := newRepl(&out, &errOut, nil)
	r.command(context.Background(), ":builtins")
	names := strings.Fields(out.String())
	for _, want := range []string{"add", "map", "x", "true"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in %q", want, out.String())
		}
	}

	out.Reset()
	r.command(context.Background(), ":bogus")
	if !strings.Contains(out.String(), ":builtins") {
		t.Errorf("unknown command help should list :builtins, got %q", out.String())
	}
}

func TestHistoryDisabled(t *testing.T) {
	var out, errOut bytes.Buffer
	r := newRepl(&out, &errOut, nil)
	r.command(context.Background(), ":history")
	if out.String() != "history is disabled\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
