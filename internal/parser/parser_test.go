package parser

import (
	"encoding/json"
	"errors"
	"lang417/internal/lexer"
	"lang417/internal/object"
	"strings"
	"testing"
)

func parse(t *testing.T, input string) object.Expression {
	t.Helper()
	exp, err := Parse(lexer.Scan(input))
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return exp
}

func TestParseInspect(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"integer", "123", "123"},
		{"negative", "-120", "-120"},
		{"plus sign", "+130", "130"},
		{"zeros", "000", "0"},
		{"string", `"testing"`, `"testing"`},
		{"identifier", "testing", `{"Identifier": "testing"}`},
		{"comment is skipped", "// lead\n x // trail", `{"Identifier": "x"}`},
		{"application", "add(x, 2)",
			`{"Application":[{"Identifier": "add"},{"Identifier": "x"},2]}`},
		{"no arguments", "f()", `{"Application":[{"Identifier": "f"}]}`},
		{"chained application", "f(1)(2)",
			`{"Application":[{"Application":[{"Identifier": "f"},1]},2]}`},
		{"assignment", "x = 5", `{"Assignment":[{"Identifier": "x"},5]}`},
		{"assignment across a comment", "x // c\n = 5", `{"Assignment":[{"Identifier": "x"},5]}`},
		{"definition", "def f = 1", `{"Def":[{"Identifier": "f"},1]}`},
		{"empty block", "{}", `{"Block":[]}`},
		{"block", "{ 1; 2; x }", `{"Block":[1,2,{"Identifier": "x"}]}`},
		{"lambda", "lambda (a, b) { a }",
			`{"Lambda":[{"Parameters":[{"Identifier": "a"},{"Identifier": "b"}]},{"Block":[{"Identifier": "a"}]}]}`},
		{"alternate lambda", "λ () {}", `{"Lambda":[{"Parameters":[]},{"Block":[]}]}`},
		{"immediate application", "lambda (a) { a }(1)",
			`{"Application":[{"Lambda":[{"Parameters":[{"Identifier": "a"}]},{"Block":[{"Identifier": "a"}]}]},1]}`},
		{"cond", "cond (true => 1)", `{"Cond":[{"Clause":[{"Identifier": "true"},1]}]}`},
		{"cond many clauses", "cond (a => 1) (b => 2)",
			`{"Cond":[{"Clause":[{"Identifier": "a"},1]},{"Clause":[{"Identifier": "b"},2]}]}`},
		{"let with block", "let x = 1 { x }", `{"Let":[{"Identifier": "x"},1,{"Block":[{"Identifier": "x"}]}]}`},
		{"parameter list", "(a, b)", `{"Parameters":[{"Identifier": "a"},{"Identifier": "b"}]}`},
		{"empty parameter list", "()", `{"Parameters":[]}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			exp := parse(t, c.input)
			if got := exp.Inspect(); got != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got)
			}
		})
	}
}

func TestLetWithoutBlockHasPlaceholderBody(t *testing.T) {
	exp := parse(t, "{ let x = 1; x }")
	block, ok := exp.(*object.Block)
	if !ok || len(block.Expressions) != 2 {
		t.Fatalf("expected a block of two expressions, got %s", exp.Inspect())
	}
	let, ok := block.Expressions[0].(*object.Let)
	if !ok {
		t.Fatalf("expected a let, got %s", block.Expressions[0].Inspect())
	}
	if !let.IsSugar() {
		t.Fatalf("expected placeholder body, got %s", let.Body.Inspect())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name       string
		input      string
		contains   string
		incomplete bool
	}{
		{"lone plus", "+", "bad integer character", false},
		{"lone minus", "-", "bad integer character", false},
		{"unterminated string", `"testing`, "unterminated string", false},
		{"long identifier", strings.Repeat("a", 61), "identifier too long", false},
		{"long integer", strings.Repeat("1", 21), "integer literal too long", false},
		{"integer out of range", "9223372036854775808", "out of range", false},
		{"malformed integer", "12abc", "malformed integer", false},
		{"spurious equals", "= 1", "spurious equals sign", false},
		{"spurious arrow", "=> 1", "spurious arrow", false},
		{"spurious brace", "}", "spurious closing brace", false},
		{"spurious paren", ")", "spurious closing parenthesis", false},
		{"spurious comma", ",", "spurious comma", false},
		{"spurious semicolon", ";", "spurious semicolon", false},
		{"trailing semicolon", "{ 1; }", "spurious closing brace", false},
		{"trailing tokens", "1 2", "after the end of the expression", false},
		{"keyword as parameter", "lambda (def) {}", "expected identifier", false},
		{"def needs equals", "def x 1", `expected "="`, false},
		{"cond needs a clause", "cond x", `expected "("`, false},
		{"clause needs arrow", "cond (a 1)", `expected "=>"`, false},
		{"empty input", "", "no tokens", true},
		{"only comments", "// nothing here", "no tokens", true},
		{"open block", "{ 1; 2", "no more tokens", true},
		{"open application", "add(1,", "no tokens", true},
		{"open lambda", "lambda (a) {", "no tokens", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(lexer.Scan(c.input))
			if err == nil {
				t.Fatalf("expected an error")
			}
			var pe *Error
			if !errors.As(err, &pe) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if !strings.Contains(err.Error(), c.contains) {
				t.Errorf("expected error containing %q, got %q", c.contains, err.Error())
			}
			if pe.Incomplete() != c.incomplete || IsIncomplete(err) != c.incomplete {
				t.Errorf("expected incomplete=%t, got %t", c.incomplete, pe.Incomplete())
			}
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse(lexer.Scan("{\n  1;\n  )\n}"))
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if pe.Line != 3 {
		t.Errorf("expected line 3, got %d", pe.Line)
	}
	if pe.Token.Literal != ")" {
		t.Errorf("expected offending token ), got %q", pe.Token.Literal)
	}
	if err.Error() != "line 3: spurious closing parenthesis" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRenderASTAsTextReparses(t *testing.T) {
	inputs := []string{
		"123",
		`"tab\tquote\" backslash\\ newline\n"`,
		"{ def fact = lambda (n) { cond (zero?(n) => 1) (true => mul(n, fact(sub(n, 1)))) }; fact(5) }",
		"{ let x = 1; let y = 2; add(x, y) }",
		"let x = 1 { x = 2; x }",
		"f(1)(2, g())",
		"{}",
		"(a, b)",
	}

	for _, input := range inputs {
		exp := parse(t, input)
		text := RenderASTAsText(exp, 0)
		again := parse(t, text)
		if exp.Inspect() != again.Inspect() {
			t.Errorf("%q rendered as %q which parses to %s, expected %s", input, text, again.Inspect(), exp.Inspect())
		}
	}
}

func TestRenderASTAsJSON(t *testing.T) {
	exp := parse(t, "let x = 1 { add(x, \"s\") }")
	out, err := RenderASTAsJSON(exp)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var tree map[string]interface{}
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if tree["type"] != "Let" {
		t.Fatalf("expected Let at the root, got %v", tree["type"])
	}
	body := tree["body"].(map[string]interface{})
	app := body["expressions"].([]interface{})[0].(map[string]interface{})
	if app["type"] != "Application" {
		t.Fatalf("expected Application in the body, got %v", app["type"])
	}
	args := app["arguments"].([]interface{})
	if len(args) != 2 || args[1].(map[string]interface{})["value"] != "s" {
		t.Fatalf("unexpected arguments %v", args)
	}
}
