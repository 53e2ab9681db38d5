package lexer

import (
	"lang417/internal/token"
	"strings"
	"unicode/utf8"
)

const (
	MaxIdentLen   = 60
	MaxIntegerLen = 20
	MaxStringLen  = 1000
)

// Lexer walks the source with a single byte cursor. It never fails: malformed input becomes an
// error token and scanning carries on after it.
type Lexer struct {
	input   string
	current int // byte offset of the next unread character
	line    int
}

func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Scan tokenizes the whole input. Whitespace and comments are kept so that the token spans
// cover the source exactly.
func Scan(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for l.More() {
		tokens = append(tokens, l.NextToken())
	}
	return tokens
}

// More reports whether any input is left.
func (l *Lexer) More() bool {
	return l.current < len(l.input)
}

func (l *Lexer) NextToken() token.Token {
	start := l.current

	switch {
	case l.isWhitespace(start):
		return l.readWhitespace()
	case l.isComment(start):
		return l.readComment()
	case l.peekChar(start) == '"':
		return l.readString()
	case isDigit(l.peekChar(start)) || l.peekChar(start) == '+' || l.peekChar(start) == '-':
		return l.readInteger()
	case l.isArrow(start):
		return l.emit(token.ARROW, start, 2)
	}

	switch l.peekChar(start) {
	case '(':
		return l.emit(token.LPAREN, start, 1)
	case ')':
		return l.emit(token.RPAREN, start, 1)
	case '{':
		return l.emit(token.LBRACE, start, 1)
	case '}':
		return l.emit(token.RBRACE, start, 1)
	case ',':
		return l.emit(token.COMMA, start, 1)
	case ';':
		return l.emit(token.SEMICOLON, start, 1)
	case '=':
		return l.emit(token.EQUALS, start, 1)
	case 0:
		// a NUL byte in the middle of the input
		return l.emit(token.ILLEGAL, start, 1)
	}

	return l.readIdentifier()
}

func (l *Lexer) emit(t token.TokenType, start, length int) token.Token {
	l.current = start + length
	return token.Token{
		Type:     t,
		Literal:  l.input[start:l.current],
		Position: start,
		Length:   length,
		Line:     l.line,
	}
}

// peekChar is bounds safe and returns 0 past the end of input.
func (l *Lexer) peekChar(pos int) byte {
	if pos < 0 || pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

func (l *Lexer) isEOF(pos int) bool {
	return l.peekChar(pos) == 0
}

func (l *Lexer) isWhitespace(pos int) bool {
	switch l.peekChar(pos) {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func (l *Lexer) isComment(pos int) bool {
	return l.peekChar(pos) == '/' && l.peekChar(pos+1) == '/'
}

// isArrow must be checked before a bare '=' since '=' is a prefix of '=>'.
func (l *Lexer) isArrow(pos int) bool {
	return l.peekChar(pos) == '=' && l.peekChar(pos+1) == '>'
}

func (l *Lexer) isDelimiter(pos int) bool {
	if l.isWhitespace(pos) || l.isComment(pos) || l.isArrow(pos) || l.isEOF(pos) {
		return true
	}
	switch l.peekChar(pos) {
	case '(', ')', '{', '}', ',', ';', '=':
		return true
	}
	return false
}

func (l *Lexer) scanToDelimiter() {
	for !l.isDelimiter(l.current) {
		l.current++
	}
}

func (l *Lexer) readWhitespace() token.Token {
	start, line := l.current, l.line
	for l.isWhitespace(l.current) {
		if l.peekChar(l.current) == '\n' {
			l.line++
		}
		l.current++
	}
	return token.Token{
		Type:     token.WHITESPACE,
		Literal:  l.input[start:l.current],
		Position: start,
		Length:   l.current - start,
		Line:     line,
	}
}

func (l *Lexer) readComment() token.Token {
	start := l.current
	l.current += 2
	for l.peekChar(l.current) != '\n' && !l.isEOF(l.current) {
		l.current++
	}
	return l.span(token.COMMENT, start)
}

func (l *Lexer) readInteger() token.Token {
	start := l.current
	l.scanToDelimiter()
	length := l.current - start

	sign := l.peekChar(start) == '+' || l.peekChar(start) == '-'
	switch {
	case sign && length == 1:
		return l.span(token.BAD_INTCHAR, start)
	case length > MaxIntegerLen:
		return l.span(token.BAD_INTLEN, start)
	}
	return l.span(token.INTEGER, start)
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.current
	l.scanToDelimiter()
	if l.current == start {
		// unreachable: every delimiter has its own branch in NextToken
		l.current++
		return l.span(token.ILLEGAL, start)
	}

	literal := l.input[start:l.current]
	if utf8.RuneCountInString(literal) > MaxIdentLen {
		return l.span(token.BAD_IDLEN, start)
	}
	return l.span(token.LookupIdent(literal), start)
}

// readString decodes \n, \t, \" and \\. Any other escape keeps the escaped character and drops
// the backslash. The literal of the token is the decoded text without the quotes.
func (l *Lexer) readString() token.Token {
	start, line := l.current, l.line
	l.current++ // opening quote

	var out strings.Builder
	closed := false
	for !l.isEOF(l.current) {
		ch := l.peekChar(l.current)
		if ch == '"' {
			closed = true
			break
		}
		if ch == '\\' && !l.isEOF(l.current+1) {
			l.current++
			switch esc := l.peekChar(l.current); esc {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				if esc == '\n' {
					l.line++
				}
				out.WriteByte(esc)
			}
		} else {
			if ch == '\n' {
				l.line++
			}
			out.WriteByte(ch)
		}
		l.current++
	}

	oversize := utf8.RuneCountInString(l.input[start:l.current]) > MaxStringLen
	if closed {
		l.current++ // closing quote
	}

	tok := token.Token{
		Type:     token.STRING,
		Literal:  out.String(),
		Position: start,
		Length:   l.current - start,
		Line:     line,
	}
	switch {
	case oversize:
		tok.Type = token.BAD_STRLEN
	case !closed:
		tok.Type = token.BAD_STREOF
	}
	return tok
}

func (l *Lexer) span(t token.TokenType, start int) token.Token {
	return token.Token{
		Type:     t,
		Literal:  l.input[start:l.current],
		Position: start,
		Length:   l.current - start,
		Line:     l.line,
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
