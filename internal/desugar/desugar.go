package desugar

import (
	"fmt"
	"lang417/internal/object"
)

// InvariantError means the parser handed over a tree it should never build.
type InvariantError struct {
	Expression object.Expression
	Msg        string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("desugar: %s: %s", e.Msg, e.Expression.Inspect())
}

// Desugar rewrites, in place, every `let x = E; rest...` inside a block into
// `let x = E { rest... }` and returns the same tree.
func Desugar(exp object.Expression) (object.Expression, error) {
	if err := desugar(exp); err != nil {
		return nil, err
	}
	return exp, nil
}

func desugar(exp object.Expression) error {
	switch n := exp.(type) {
	case *object.Integer, *object.String, *object.Boolean, *object.Identifier,
		*object.Procedure, *object.Parameters:
		return nil

	case *object.Assignment:
		return desugar(n.Value)

	case *object.Definition:
		return desugar(n.Value)

	case *object.Application:
		for _, e := range n.Expressions {
			if err := desugar(e); err != nil {
				return err
			}
		}
		return nil

	case *object.Lambda:
		return desugarBlock(n.Body)

	case *object.Conditional:
		for _, c := range n.Clauses {
			if err := desugar(c); err != nil {
				return err
			}
		}
		return nil

	case *object.Clause:
		if err := desugar(n.Test); err != nil {
			return err
		}
		return desugar(n.Consequent)

	case *object.Block:
		return desugarBlock(n)

	case *object.Let:
		// a sugared let with nothing after it scopes over nothing
		if n.IsSugar() {
			n.Body.Expressions = []object.Expression{}
		}
		if err := desugar(n.Value); err != nil {
			return err
		}
		return desugarBlock(n.Body)

	case *object.List, *object.Dummy:
		return &InvariantError{Expression: exp, Msg: "unexpected " + string(exp.Type())}
	}
	return &InvariantError{Expression: exp, Msg: fmt.Sprintf("unhandled expression %T", exp)}
}

func desugarBlock(block *object.Block) error {
	for i, e := range block.Expressions {
		let, ok := e.(*object.Let)
		if !ok || !let.IsSugar() {
			if err := desugar(e); err != nil {
				return err
			}
			continue
		}

		rest := block.Expressions[i+1:]
		let.Body.Expressions = append([]object.Expression{}, rest...)
		block.Expressions = block.Expressions[:i+1]
		// the lifted tail is handled by desugaring the let itself
		return desugar(let)
	}
	return nil
}
