package parser

import (
	"fmt"
	"lang417/internal/object"
	"reflect"
	"strconv"
	"strings"
)

// RenderASTAsText produces indented 417 source for an expression tree. Parsing the output again
// yields the same tree.
func RenderASTAsText(node object.Expression, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *object.Integer:
		return strconv.FormatInt(n.Value, 10)

	case *object.String:
		return quote(n.Value)

	case *object.Boolean:
		return strconv.FormatBool(n.Value)

	case *object.Identifier:
		return n.Name

	case *object.Procedure:
		return n.Name

	case *object.Parameters:
		names := make([]string, len(n.Identifiers))
		for i, id := range n.Identifiers {
			names[i] = id.Name
		}
		return "(" + strings.Join(names, ", ") + ")"

	case *object.Lambda:
		return fmt.Sprintf("lambda %s %s", RenderASTAsText(n.Parameters, 0), RenderASTAsText(n.Body, indent))

	case *object.Block:
		if len(n.Expressions) == 0 {
			return "{}"
		}
		var sb strings.Builder
		sb.WriteString("{\n")
		for i, e := range n.Expressions {
			sb.WriteString(sp + "  ")
			sb.WriteString(RenderASTAsText(e, indent+1))
			if i < len(n.Expressions)-1 {
				sb.WriteString(";")
			}
			sb.WriteString("\n")
		}
		// The closing brace aligns with the parent's indent
		sb.WriteString(sp + "}")
		return sb.String()

	case *object.Conditional:
		var sb strings.Builder
		sb.WriteString("cond")
		for i, c := range n.Clauses {
			if i == 0 {
				sb.WriteString(" ")
			} else {
				sb.WriteString("\n" + sp + "     ")
			}
			sb.WriteString(RenderASTAsText(c, indent))
		}
		return sb.String()

	case *object.Clause:
		return fmt.Sprintf("(%s => %s)", RenderASTAsText(n.Test, indent), RenderASTAsText(n.Consequent, indent))

	case *object.Let:
		head := fmt.Sprintf("let %s = %s", n.Identifier.Name, RenderASTAsText(n.Value, indent))
		if n.IsSugar() {
			return head
		}
		return head + " " + RenderASTAsText(n.Body, indent)

	case *object.Definition:
		return fmt.Sprintf("def %s = %s", n.Identifier.Name, RenderASTAsText(n.Value, indent))

	case *object.Assignment:
		return fmt.Sprintf("%s = %s", n.Identifier.Name, RenderASTAsText(n.Value, indent))

	case *object.Application:
		args := make([]string, len(n.Operands()))
		for i, a := range n.Operands() {
			args[i] = RenderASTAsText(a, indent)
		}
		return fmt.Sprintf("%s(%s)", RenderASTAsText(n.Operator(), indent), strings.Join(args, ", "))

	case *object.Dummy:
		return ""

	default:
		return node.Inspect()
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
