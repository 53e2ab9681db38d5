package object

import (
	"bytes"
	"errors"
	"fmt"
	"lang417/internal/token"
	"strconv"
	"strings"
)

type ObjectType string

const (
	INTEGER_OBJ     = "INTEGER"
	STRING_OBJ      = "STRING"
	BOOLEAN_OBJ     = "BOOLEAN"
	IDENTIFIER_OBJ  = "IDENTIFIER"
	PARAMETERS_OBJ  = "PARAMETERS"
	LAMBDA_OBJ      = "LAMBDA"
	BLOCK_OBJ       = "BLOCK"
	CLAUSE_OBJ      = "CLAUSE"
	COND_OBJ        = "COND"
	LET_OBJ         = "LET"
	DEFINITION_OBJ  = "DEFINITION"
	ASSIGNMENT_OBJ  = "ASSIGNMENT"
	APPLICATION_OBJ = "APPLICATION"
	PROCEDURE_OBJ   = "PROCEDURE"
	LIST_OBJ        = "LIST"
	DUMMY_OBJ       = "DUMMY"
)

// Expression is both the syntax tree and the runtime value. The set of implementations is closed:
// only this package can add a variant.
type Expression interface {
	Type() ObjectType
	Inspect() string
	expressionNode()
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) expressionNode()  {}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return `"` + s.Value + `"` }
func (s *String) expressionNode()  {}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) expressionNode()  {}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

var ErrReservedWord = errors.New("reserved word")

// Identifier never holds a reserved word when built with NewIdentifier. Literals skip that
// check, so only code that already knows the name is valid should use them.
type Identifier struct {
	Name string
}

// NewIdentifier is the only way the parser and the prelude build identifiers.
func NewIdentifier(name string) (*Identifier, error) {
	if token.IsKeyword(name) || name == token.ARROW {
		return nil, fmt.Errorf("%w: %q cannot be used as an identifier", ErrReservedWord, name)
	}
	return &Identifier{Name: name}, nil
}

func (i *Identifier) Type() ObjectType { return IDENTIFIER_OBJ }
func (i *Identifier) Inspect() string  { return `{"Identifier": "` + i.Name + `"}` }
func (i *Identifier) expressionNode()  {}

type Parameters struct {
	Identifiers []*Identifier
}

func (p *Parameters) Type() ObjectType { return PARAMETERS_OBJ }
func (p *Parameters) Inspect() string {
	items := make([]Expression, len(p.Identifiers))
	for i, id := range p.Identifiers {
		items[i] = id
	}
	return inspectTagged("Parameters", items...)
}
func (p *Parameters) expressionNode() {}

type Lambda struct {
	Parameters *Parameters
	Body       *Block
	Env        *Environment // captured frame, nil until bound under lexical scoping
}

func (l *Lambda) Type() ObjectType { return LAMBDA_OBJ }
func (l *Lambda) Inspect() string  { return inspectTagged("Lambda", l.Parameters, l.Body) }
func (l *Lambda) expressionNode()  {}

// Capture records env as the defining frame. The first capture wins; it reports whether this call
// set it.
func (l *Lambda) Capture(env *Environment) bool {
	if l.Env != nil {
		return false
	}
	l.Env = env
	return true
}

func (l *Lambda) Arity() int { return len(l.Parameters.Identifiers) }

type Block struct {
	Expressions []Expression
}

func (b *Block) Type() ObjectType { return BLOCK_OBJ }
func (b *Block) Inspect() string  { return inspectTagged("Block", b.Expressions...) }
func (b *Block) expressionNode()  {}

type Clause struct {
	Test       Expression
	Consequent Expression
}

func (c *Clause) Type() ObjectType { return CLAUSE_OBJ }
func (c *Clause) Inspect() string  { return inspectTagged("Clause", c.Test, c.Consequent) }
func (c *Clause) expressionNode()  {}

type Conditional struct {
	Clauses []*Clause
}

func (c *Conditional) Type() ObjectType { return COND_OBJ }
func (c *Conditional) Inspect() string {
	items := make([]Expression, len(c.Clauses))
	for i, cl := range c.Clauses {
		items[i] = cl
	}
	return inspectTagged("Cond", items...)
}
func (c *Conditional) expressionNode() {}

type Let struct {
	Identifier *Identifier
	Value      Expression
	Body       *Block
}

func (l *Let) Type() ObjectType { return LET_OBJ }
func (l *Let) Inspect() string  { return inspectTagged("Let", l.Identifier, l.Value, l.Body) }
func (l *Let) expressionNode()  {}

// IsSugar reports a let written without braces, whose body still has to be filled in.
func (l *Let) IsSugar() bool {
	if l.Body == nil || len(l.Body.Expressions) != 1 {
		return false
	}
	_, ok := l.Body.Expressions[0].(*Dummy)
	return ok
}

type Definition struct {
	Identifier *Identifier
	Value      Expression
}

func (d *Definition) Type() ObjectType { return DEFINITION_OBJ }
func (d *Definition) Inspect() string  { return inspectTagged("Def", d.Identifier, d.Value) }
func (d *Definition) expressionNode()  {}

type Assignment struct {
	Identifier *Identifier
	Value      Expression
}

func (a *Assignment) Type() ObjectType { return ASSIGNMENT_OBJ }
func (a *Assignment) Inspect() string  { return inspectTagged("Assignment", a.Identifier, a.Value) }
func (a *Assignment) expressionNode()  {}

// Application holds the operator at index 0 followed by the operands.
type Application struct {
	Expressions []Expression
}

func (a *Application) Type() ObjectType { return APPLICATION_OBJ }
func (a *Application) Inspect() string  { return inspectTagged("Application", a.Expressions...) }
func (a *Application) expressionNode()  {}

func (a *Application) Operator() Expression   { return a.Expressions[0] }
func (a *Application) Operands() []Expression { return a.Expressions[1:] }

type ProcedureFunction func(args []Expression) (Expression, error)

type Procedure struct {
	Name string
	Fn   ProcedureFunction
}

func (p *Procedure) Type() ObjectType { return PROCEDURE_OBJ }
func (p *Procedure) Inspect() string  { return fmt.Sprintf("<procedure %s>", p.Name) }
func (p *Procedure) expressionNode()  {}

type List struct {
	Elements []Expression
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string  { return inspectTagged("List", l.Elements...) }
func (l *List) expressionNode()  {}

// Dummy reserves a name during the definition pre-pass of a block. No source text produces one.
type Dummy struct{}

func (d *Dummy) Type() ObjectType { return DUMMY_OBJ }
func (d *Dummy) Inspect() string  { return "<dummy>" }
func (d *Dummy) expressionNode()  {}

// DUMMY is the singleton placeholder.
var DUMMY = &Dummy{}

func IsDummy(e Expression) bool {
	_, ok := e.(*Dummy)
	return ok
}

func inspectTagged(tag string, items ...Expression) string {
	var out bytes.Buffer
	out.WriteString(`{"`)
	out.WriteString(tag)
	out.WriteString(`":[`)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Inspect()
	}
	out.WriteString(strings.Join(parts, ","))
	out.WriteString("]}")
	return out.String()
}

// Equal compares atoms and identifiers by value and everything else by identity. The placeholder
// is never equal to anything, itself included.
func Equal(a, b Expression) bool {
	if IsDummy(a) || IsDummy(b) {
		return false
	}
	switch left := a.(type) {
	case *Integer:
		right, ok := b.(*Integer)
		return ok && left.Value == right.Value
	case *String:
		right, ok := b.(*String)
		return ok && left.Value == right.Value
	case *Boolean:
		right, ok := b.(*Boolean)
		return ok && left.Value == right.Value
	case *Identifier:
		right, ok := b.(*Identifier)
		return ok && left.Name == right.Name
	}
	return a == b
}
