package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL" // malformed fragment, e.g. a NUL byte inside the source

	WHITESPACE = "WHITESPACE"
	COMMENT    = "COMMENT"

	// Identifiers + literals
	IDENT   = "IDENT"   // add, foo?, x
	INTEGER = "INTEGER" // -120, +130, 000
	STRING  = "STRING"  // "foobar"

	// Delimiters
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	COMMA     = ","
	SEMICOLON = ";"
	ARROW     = "=>"
	EQUALS    = "="

	// Keywords
	LAMBDA     = "LAMBDA"
	LAMBDA_ALT = "LAMBDA_ALT"
	COND       = "COND"
	DEF        = "DEF"
	LET        = "LET"

	// Lexical errors
	BAD_IDLEN   = "BAD_IDLEN"   // identifier longer than the limit
	BAD_INTLEN  = "BAD_INTLEN"  // integer literal longer than the limit
	BAD_INTCHAR = "BAD_INTCHAR" // a lone sign
	BAD_STREOF  = "BAD_STREOF"  // string reached end of input
	BAD_STRLEN  = "BAD_STRLEN"  // string longer than the limit
)

// Token is immutable once produced by the lexer. Position and Length are byte offsets into the
// source; Literal is the raw text, except for strings where it is the decoded contents.
type Token struct {
	Type     TokenType
	Literal  string
	Position int
	Length   int
	Line     int
}

// End is the offset just past the token.
func (t Token) End() int { return t.Position + t.Length }

const (
	KeywordLambda    = "lambda"
	KeywordLambdaAlt = "λ"
	KeywordCond      = "cond"
	KeywordDef       = "def"
	KeywordLet       = "let"
)

var keywords = map[string]TokenType{
	KeywordLambda:    LAMBDA,
	KeywordLambdaAlt: LAMBDA_ALT,
	KeywordCond:      COND,
	KeywordDef:       DEF,
	KeywordLet:       LET,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved and can never be bound.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

func (t TokenType) IsError() bool {
	switch t {
	case ILLEGAL, BAD_IDLEN, BAD_INTLEN, BAD_INTCHAR, BAD_STREOF, BAD_STRLEN:
		return true
	}
	return false
}

// IsTrivia reports tokens the parser skips.
func (t TokenType) IsTrivia() bool {
	return t == WHITESPACE || t == COMMENT
}

// Describe returns a human readable name for error messages.
func (t TokenType) Describe() string {
	switch t {
	case ILLEGAL:
		return "malformed input"
	case BAD_IDLEN:
		return "identifier too long"
	case BAD_INTLEN:
		return "integer literal too long"
	case BAD_INTCHAR:
		return "bad integer character"
	case BAD_STREOF:
		return "unterminated string"
	case BAD_STRLEN:
		return "string too long"
	case LAMBDA, LAMBDA_ALT:
		return "lambda"
	case COND:
		return "cond"
	case DEF:
		return "def"
	case LET:
		return "let"
	case IDENT:
		return "identifier"
	case INTEGER:
		return "integer"
	case STRING:
		return "string"
	}
	return string(t)
}
