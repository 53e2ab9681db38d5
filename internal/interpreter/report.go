package interpreter

import (
	"errors"
	"lang417/internal/evaluator"
	"lang417/internal/object"
	"lang417/internal/parser"
	"lang417/internal/util"
	"strings"
)

const StackOverflowMessage = "Stack overflow error. Is there infinite recursion in your program?"

// Report renders err for a person reading a terminal. Parse errors that point at a token get the
// surrounding source lines with a caret under it.
func Report(source string, err error) string {
	if errors.Is(err, evaluator.ErrRecursionLimit) {
		return StackOverflowMessage
	}

	var pe *parser.Error
	if errors.As(err, &pe) {
		msg := "Parse error on " + pe.Error()
		if pe.Incomplete() {
			msg = "Parse error: " + pe.Error()
		}
		if pe.Incomplete() || pe.Token.Length == 0 {
			return msg
		}
		line, col := util.GetLineAndColumn(source, pe.Token.Position)
		context := util.GetContextLines(source, line, col)
		if context == "" {
			return msg
		}
		return msg + "\n" + context
	}

	switch Classify(err) {
	case "desugar":
		return "Desugar error: " + err.Error()
	case "internal":
		if _, ok := object.KindOf(err); ok {
			return err.Error()
		}
		return "Internal error: " + err.Error()
	default:
		return "Runtime error: " + strings.TrimSpace(err.Error())
	}
}
