package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"lang417/internal/object"
	"reflect"
)

// WalkAST recursively traverses an expression tree and serializes it into a map structure for
// JSON output.
func WalkAST(node object.Expression) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *object.Integer:
		return map[string]interface{}{
			"type":  "Integer",
			"value": n.Value,
		}

	case *object.String:
		return map[string]interface{}{
			"type":  "String",
			"value": n.Value,
		}

	case *object.Boolean:
		return map[string]interface{}{
			"type":  "Boolean",
			"value": n.Value,
		}

	case *object.Identifier:
		return map[string]interface{}{
			"type": "Identifier",
			"name": n.Name,
		}

	case *object.Parameters:
		return map[string]interface{}{
			"type":       "Parameters",
			"parameters": walkIdentifiers(n.Identifiers),
		}

	case *object.Lambda:
		return map[string]interface{}{
			"type":       "Lambda",
			"parameters": WalkAST(n.Parameters),
			"body":       WalkAST(n.Body),
		}

	case *object.Block:
		return map[string]interface{}{
			"type":        "Block",
			"expressions": walkList(n.Expressions),
		}

	case *object.Conditional:
		clauses := make([]interface{}, len(n.Clauses))
		for i, c := range n.Clauses {
			clauses[i] = WalkAST(c)
		}
		return map[string]interface{}{
			"type":    "Cond",
			"clauses": clauses,
		}

	case *object.Clause:
		return map[string]interface{}{
			"type":       "Clause",
			"test":       WalkAST(n.Test),
			"consequent": WalkAST(n.Consequent),
		}

	case *object.Let:
		return map[string]interface{}{
			"type":       "Let",
			"identifier": WalkAST(n.Identifier),
			"value":      WalkAST(n.Value),
			"body":       WalkAST(n.Body),
		}

	case *object.Definition:
		return map[string]interface{}{
			"type":       "Def",
			"identifier": WalkAST(n.Identifier),
			"value":      WalkAST(n.Value),
		}

	case *object.Assignment:
		return map[string]interface{}{
			"type":       "Assignment",
			"identifier": WalkAST(n.Identifier),
			"value":      WalkAST(n.Value),
		}

	case *object.Application:
		return map[string]interface{}{
			"type":      "Application",
			"operator":  WalkAST(n.Operator()),
			"arguments": walkList(n.Operands()),
		}

	case *object.List:
		return map[string]interface{}{
			"type":     "List",
			"elements": walkList(n.Elements),
		}

	case *object.Procedure:
		return map[string]interface{}{
			"type": "Procedure",
			"name": n.Name,
		}

	case *object.Dummy:
		return map[string]interface{}{
			"type": "Dummy",
		}

	default:
		return map[string]interface{}{
			"type":  "Unknown",
			"value": fmt.Sprintf("%T", n),
		}
	}
}

func walkList(items []object.Expression) []interface{} {
	result := make([]interface{}, len(items))
	for i, item := range items {
		result[i] = WalkAST(item)
	}
	return result
}

func walkIdentifiers(ids []*object.Identifier) []interface{} {
	result := make([]interface{}, len(ids))
	for i, id := range ids {
		result[i] = WalkAST(id)
	}
	return result
}

func RenderASTAsJSON(node object.Expression) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
