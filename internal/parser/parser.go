package parser

import (
	"errors"
	"fmt"
	"lang417/internal/object"
	"lang417/internal/token"
	"strconv"
)

// Error is the first grammar violation met. Parsing never recovers from it.
type Error struct {
	Token token.Token
	Line  int
	Msg   string
	eof   bool
}

func (e *Error) Error() string {
	if e.eof {
		return e.Msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Incomplete reports that the input ended while an expression was still open, so more input
// could make it valid.
func (e *Error) Incomplete() bool { return e.eof }

// IsIncomplete reports whether err is a parse error caused by running out of input.
func IsIncomplete(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Incomplete()
}

type Parser struct {
	tokens  []token.Token
	current int // index of the next unconsumed token, trivia included
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse builds one expression from the whole token stream. Anything but trivia left after it is
// an error.
func Parse(tokens []token.Token) (object.Expression, error) {
	p := New(tokens)
	exp, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peekToken(); ok {
		return nil, p.errorAt(tok, "unexpected %s after the end of the expression", describe(tok))
	}
	return exp, nil
}

// peekToken skips whitespace and comments and returns the next significant token without
// consuming it.
func (p *Parser) peekToken() (token.Token, bool) {
	for p.current < len(p.tokens) && p.tokens[p.current].Type.IsTrivia() {
		p.current++
	}
	if p.current >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.current], true
}

// peekAhead returns the significant token after the next one.
func (p *Parser) peekAhead() (token.Token, bool) {
	if _, ok := p.peekToken(); !ok {
		return token.Token{}, false
	}
	for i := p.current + 1; i < len(p.tokens); i++ {
		if !p.tokens[i].Type.IsTrivia() {
			return p.tokens[i], true
		}
	}
	return token.Token{}, false
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	tok, ok := p.peekToken()
	return ok && tok.Type == t
}

// match consumes the next significant token if it is one of types.
func (p *Parser) match(types ...token.TokenType) (token.Token, error) {
	tok, ok := p.peekToken()
	if !ok {
		return token.Token{}, p.eofError("expected %s but there were no more tokens", expected(types))
	}
	for _, t := range types {
		if tok.Type == t {
			p.current++
			return tok, nil
		}
	}
	if tok.Type.IsError() {
		return token.Token{}, p.lexError(tok)
	}
	return token.Token{}, p.errorAt(tok, "expected %s but was %s", expected(types), describe(tok))
}

func (p *Parser) errorAt(tok token.Token, format string, a ...interface{}) *Error {
	return &Error{Token: tok, Line: tok.Line, Msg: fmt.Sprintf(format, a...)}
}

func (p *Parser) eofError(format string, a ...interface{}) *Error {
	line := 1
	if n := len(p.tokens); n > 0 {
		line = p.tokens[n-1].Line
	}
	return &Error{Line: line, Msg: fmt.Sprintf(format, a...), eof: true}
}

func (p *Parser) lexError(tok token.Token) *Error {
	return p.errorAt(tok, "%s: %q", tok.Type.Describe(), tok.Literal)
}

func expected(types []token.TokenType) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += " or "
		}
		if t.Describe() == string(t) {
			s += fmt.Sprintf("%q", string(t))
		} else {
			s += t.Describe()
		}
	}
	return s
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.IDENT, token.INTEGER:
		return fmt.Sprintf("%s %s", tok.Type.Describe(), tok.Literal)
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// ParseExpression parses one expression followed by any number of argument lists.
func (p *Parser) ParseExpression() (object.Expression, error) {
	tok, ok := p.peekToken()
	if !ok {
		return nil, p.eofError("bad input: no tokens to parse")
	}

	var exp object.Expression
	var err error

	switch tok.Type {
	case token.LPAREN:
		exp, err = p.parseParameterList()
	case token.LBRACE:
		exp, err = p.parseBlock()
	case token.LAMBDA, token.LAMBDA_ALT:
		exp, err = p.parseLambda()
	case token.COND:
		exp, err = p.parseCond()
	case token.DEF:
		exp, err = p.parseDefinition()
	case token.LET:
		exp, err = p.parseLet()
	case token.IDENT:
		if next, ok := p.peekAhead(); ok && next.Type == token.EQUALS {
			exp, err = p.parseAssignment()
		} else {
			exp, err = p.parseIdentifier()
		}
	case token.STRING:
		p.current++
		exp = &object.String{Value: tok.Literal}
	case token.INTEGER:
		exp, err = p.parseInteger()
	case token.EQUALS:
		return nil, p.errorAt(tok, "spurious equals sign")
	case token.ARROW:
		return nil, p.errorAt(tok, "spurious arrow")
	case token.RBRACE:
		return nil, p.errorAt(tok, "spurious closing brace")
	case token.RPAREN:
		return nil, p.errorAt(tok, "spurious closing parenthesis")
	case token.COMMA:
		return nil, p.errorAt(tok, "spurious comma")
	case token.SEMICOLON:
		return nil, p.errorAt(tok, "spurious semicolon")
	default:
		if tok.Type.IsError() {
			return nil, p.lexError(tok)
		}
		return nil, p.errorAt(tok, "unhandled token %s", describe(tok))
	}
	if err != nil {
		return nil, err
	}

	for p.peekTokenIs(token.LPAREN) {
		exp, err = p.parseApplication(exp)
		if err != nil {
			return nil, err
		}
	}
	return exp, nil
}

func (p *Parser) parseApplication(operator object.Expression) (object.Expression, error) {
	if _, err := p.match(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(token.RPAREN); err != nil {
		return nil, err
	}
	return &object.Application{Expressions: append([]object.Expression{operator}, args...)}, nil
}

func (p *Parser) parseArguments() ([]object.Expression, error) {
	args := []object.Expression{}
	if p.peekTokenIs(token.RPAREN) {
		return args, nil
	}

	for {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			return args, nil
		}
		p.current++
	}
}

func (p *Parser) parseIdentifier() (*object.Identifier, error) {
	tok, err := p.match(token.IDENT)
	if err != nil {
		return nil, err
	}
	id, err := object.NewIdentifier(tok.Literal)
	if err != nil {
		return nil, p.errorAt(tok, "%v", err)
	}
	return id, nil
}

func (p *Parser) parseInteger() (object.Expression, error) {
	tok, err := p.match(token.INTEGER)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, p.errorAt(tok, "integer %s out of range", tok.Literal)
		}
		return nil, p.errorAt(tok, "malformed integer %s", tok.Literal)
	}
	return &object.Integer{Value: value}, nil
}

// parseIdentifierList reads `a, b, c` up to but not including the closing parenthesis.
func (p *Parser) parseIdentifierList() (*object.Parameters, error) {
	params := &object.Parameters{Identifiers: []*object.Identifier{}}
	if p.peekTokenIs(token.RPAREN) {
		return params, nil
	}

	for {
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		params.Identifiers = append(params.Identifiers, id)
		if !p.peekTokenIs(token.COMMA) {
			return params, nil
		}
		p.current++
	}
}

func (p *Parser) parseParameterList() (object.Expression, error) {
	if _, err := p.match(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseIdentifierList()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseLambda() (object.Expression, error) {
	if _, err := p.match(token.LAMBDA, token.LAMBDA_ALT); err != nil {
		return nil, err
	}
	if _, err := p.match(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseIdentifierList()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &object.Lambda{Parameters: params, Body: body}, nil
}

func (p *Parser) parseCond() (object.Expression, error) {
	if _, err := p.match(token.COND); err != nil {
		return nil, err
	}

	cond := &object.Conditional{}
	for {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		cond.Clauses = append(cond.Clauses, clause)
		if !p.peekTokenIs(token.LPAREN) {
			return cond, nil
		}
	}
}

func (p *Parser) parseClause() (*object.Clause, error) {
	if _, err := p.match(token.LPAREN); err != nil {
		return nil, err
	}
	test, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(token.ARROW); err != nil {
		return nil, err
	}
	consequent, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(token.RPAREN); err != nil {
		return nil, err
	}
	return &object.Clause{Test: test, Consequent: consequent}, nil
}

func (p *Parser) parseBlock() (*object.Block, error) {
	if _, err := p.match(token.LBRACE); err != nil {
		return nil, err
	}

	block := &object.Block{Expressions: []object.Expression{}}
	if p.peekTokenIs(token.RBRACE) {
		p.current++
		return block, nil
	}

	for {
		exp, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		block.Expressions = append(block.Expressions, exp)
		if !p.peekTokenIs(token.SEMICOLON) {
			break
		}
		p.current++
	}

	if _, err := p.match(token.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

// parseBinding reads `<identifier> = <expression>`, shared by def, let and assignment.
func (p *Parser) parseBinding() (*object.Identifier, object.Expression, error) {
	id, err := p.parseIdentifier()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.match(token.EQUALS); err != nil {
		return nil, nil, err
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, nil, err
	}
	return id, value, nil
}

func (p *Parser) parseAssignment() (object.Expression, error) {
	id, value, err := p.parseBinding()
	if err != nil {
		return nil, err
	}
	return &object.Assignment{Identifier: id, Value: value}, nil
}

func (p *Parser) parseDefinition() (object.Expression, error) {
	if _, err := p.match(token.DEF); err != nil {
		return nil, err
	}
	id, value, err := p.parseBinding()
	if err != nil {
		return nil, err
	}
	return &object.Definition{Identifier: id, Value: value}, nil
}

// parseLet leaves a placeholder body when no block follows; the desugarer fills it with the rest
// of the enclosing block.
func (p *Parser) parseLet() (object.Expression, error) {
	if _, err := p.match(token.LET); err != nil {
		return nil, err
	}
	id, value, err := p.parseBinding()
	if err != nil {
		return nil, err
	}

	if p.peekTokenIs(token.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &object.Let{Identifier: id, Value: value, Body: body}, nil
	}

	body := &object.Block{Expressions: []object.Expression{object.DUMMY}}
	return &object.Let{Identifier: id, Value: value, Body: body}, nil
}
