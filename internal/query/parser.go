package query

import (
	"fmt"
	"strings"
)

// Parser parses filter expressions into Filter trees.
type Parser struct {
	lexer *Lexer
	curr  Token
	peek  Token
}

// Parse parses a filter expression. An empty expression yields a nil filter,
// which matches everything.
func Parse(input string) (Filter, error) {
	p := &Parser{lexer: NewLexer(input)}
	p.advance()
	p.advance()

	if p.curr.Type == TokenEOF {
		return nil, nil
	}
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %v %q at pos %d", p.curr.Type, p.curr.Value, p.curr.Pos)
	}
	return f, nil
}

func (p *Parser) advance() {
	p.curr = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) expect(t TokenType) error {
	if p.curr.Type != t {
		return fmt.Errorf("expected %v, got %v at pos %d", t, p.curr.Type, p.curr.Pos)
	}
	p.advance()
	return nil
}

// parseOr parses OR expressions (lowest precedence).
func (p *Parser) parseOr() (Filter, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == TokenPipe {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = OrFilter{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd parses explicit (&) and implicit AND expressions.
func (p *Parser) parseAnd() (Filter, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.curr.Type {
		case TokenEOF, TokenPipe, TokenRParen:
			return left, nil
		case TokenAmp:
			p.advance()
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = AndFilter{Left: left, Right: right}
	}
}

// parseUnary parses negation and parenthesized groups (highest precedence).
func (p *Parser) parseUnary() (Filter, error) {
	if p.curr.Type == TokenBang {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NotFilter{Inner: inner}, nil
	}

	if p.curr.Type == TokenLParen {
		p.advance()
		f, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, fmt.Errorf("unclosed parenthesis: %w", err)
		}
		return f, nil
	}

	return p.parseAtom()
}

// parseAtom parses a comparison or a function-style filter.
func (p *Parser) parseAtom() (Filter, error) {
	if p.curr.Type != TokenIdent {
		if p.curr.Type == TokenError {
			return nil, fmt.Errorf("invalid input %q at pos %d", p.curr.Value, p.curr.Pos)
		}
		return nil, fmt.Errorf("expected attribute name, got %v at pos %d", p.curr.Type, p.curr.Pos)
	}

	if p.peek.Type == TokenLParen {
		return p.parseFunc()
	}

	attr := p.curr.Value
	p.advance()
	if p.curr.Type != TokenOp {
		return nil, fmt.Errorf("expected comparison operator after %s at pos %d", attr, p.curr.Pos)
	}
	op := p.curr.Value
	p.advance()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	switch op {
	case "==":
		return Equals(attr, value), nil
	case "!=":
		return NotFilter{Inner: Equals(attr, value)}, nil
	case "<":
		return CompareFilter{Attr: attr, Op: CompareLt, Value: value}, nil
	case ">":
		return CompareFilter{Attr: attr, Op: CompareGt, Value: value}, nil
	case "<=":
		return CompareFilter{Attr: attr, Op: CompareLte, Value: value}, nil
	case ">=":
		return CompareFilter{Attr: attr, Op: CompareGte, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

func (p *Parser) parseFunc() (Filter, error) {
	name := strings.ToLower(p.curr.Value)
	pos := p.curr.Pos
	p.advance() // function name
	p.advance() // (

	if p.curr.Type != TokenIdent {
		return nil, fmt.Errorf("%s: expected attribute name at pos %d", name, p.curr.Pos)
	}
	attr := p.curr.Value
	p.advance()

	var args []string
	for p.curr.Type == TokenComma {
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	switch name {
	case "present":
		if len(args) != 0 {
			return nil, fmt.Errorf("present() takes only an attribute name")
		}
		return PresenceFilter{Attr: attr}, nil
	case "contains", "startswith", "endswith":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s() takes an attribute name and one value", name)
		}
		op := StringContains
		switch name {
		case "startswith":
			op = StringStartsWith
		case "endswith":
			op = StringEndsWith
		}
		return StringFilter{Attr: attr, Op: op, Value: args[0]}, nil
	case "all":
		if len(args) == 0 {
			return nil, fmt.Errorf("all() needs at least one value")
		}
		values := make([]any, len(args))
		for i, a := range args {
			values[i] = a
		}
		return ContainsAllFilter{Attr: attr, Values: values}, nil
	}
	return nil, fmt.Errorf("unknown function %s at pos %d", name, pos)
}

func (p *Parser) parseValue() (string, error) {
	switch p.curr.Type {
	case TokenIdent, TokenString:
		v := p.curr.Value
		p.advance()
		return v, nil
	case TokenError:
		return "", fmt.Errorf("invalid value %q at pos %d", p.curr.Value, p.curr.Pos)
	}
	return "", fmt.Errorf("expected value, got %v at pos %d", p.curr.Type, p.curr.Pos)
}
