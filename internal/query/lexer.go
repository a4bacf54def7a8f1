package query

import (
	"strings"
	"unicode"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF    TokenType = iota
	TokenIdent            // attribute names and bare values like "JDOE", "2024-01-01"
	TokenString           // "quoted value"
	TokenOp               // ==, !=, <, >, <=, >=
	TokenBang             // !
	TokenPipe             // |
	TokenAmp              // &
	TokenLParen           // (
	TokenRParen           // )
	TokenComma            // ,
	TokenError            // error token
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenOp:
		return "operator"
	case TokenBang:
		return "'!'"
	case TokenPipe:
		return "'|'"
	case TokenAmp:
		return "'&'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	default:
		return "invalid token"
	}
}

// Token represents a lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes a filter expression.
type Lexer struct {
	input string
	pos   int
	start int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	l.start = l.pos
	ch := l.input[l.pos]

	switch ch {
	case '=':
		if l.peekByte() == '=' {
			l.pos += 2
			return Token{Type: TokenOp, Value: "==", Pos: l.start}
		}
		// A single '=' is accepted as equality.
		l.pos++
		return Token{Type: TokenOp, Value: "==", Pos: l.start}
	case '!':
		if l.peekByte() == '=' {
			l.pos += 2
			return Token{Type: TokenOp, Value: "!=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenBang, Value: "!", Pos: l.start}
	case '<', '>':
		if l.peekByte() == '=' {
			l.pos += 2
			return Token{Type: TokenOp, Value: string(ch) + "=", Pos: l.start}
		}
		l.pos++
		return Token{Type: TokenOp, Value: string(ch), Pos: l.start}
	case '|':
		l.pos++
		return Token{Type: TokenPipe, Value: "|", Pos: l.start}
	case '&':
		l.pos++
		return Token{Type: TokenAmp, Value: "&", Pos: l.start}
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Value: "(", Pos: l.start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Value: ")", Pos: l.start}
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Pos: l.start}
	case '"':
		return l.scanString()
	default:
		if isIdentChar(ch) {
			return l.scanIdent()
		}
		l.pos++
		return Token{Type: TokenError, Value: string(ch), Pos: l.start}
	}
}

func (l *Lexer) peekByte() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && l.pos+1 < len(l.input):
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
		case ch == '"':
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: start}
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return Token{Type: TokenError, Value: "unterminated string", Pos: start}
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_' || ch == '-' || ch == '.' || ch == ':' || ch == '@' || ch == '/'
}
