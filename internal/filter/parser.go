package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses filter expressions into an AST
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:       tokens,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return fmt.Errorf("expected %v, got %v", tokType, p.describe())
	}
	p.advance()
	return nil
}

func (p *Parser) describe() string {
	tok := p.current()
	if tok.Type == TokenEOF {
		return tok.Type.String()
	}
	return fmt.Sprintf("%v %q", tok.Type, tok.Value)
}

// Parse parses a filter expression such as "age > 30 and name = 'bob'".
// A leading WHERE keyword is accepted and ignored.
func Parse(expr string) (Expression, error) {
	// Validate expression length
	if err := ValidateExpression(expr); err != nil {
		return nil, err
	}

	tokens := Tokenize(expr)

	// Validate token count
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	p := NewParser(tokens)
	if p.current().Type == TokenWhere {
		p.advance()
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEOF); err != nil {
		return nil, fmt.Errorf("unexpected trailing input: %w", err)
	}
	return e, nil
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Expression, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: TokenOr,
			Right:    right,
		}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:     left,
			Operator: TokenAnd,
			Right:    right,
		}
	}

	return left, nil
}

// parsePrimary parses a parenthesized expression or a comparison
func (p *Parser) parsePrimary() (Expression, error) {
	if p.current().Type != TokenLParen {
		return p.parseComparison()
	}
	p.advance()
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return e, nil
}

// parseComparison parses comparison expressions
func (p *Parser) parseComparison() (Expression, error) {
	// Parse column name
	if p.current().Type != TokenIdent {
		return nil, fmt.Errorf("expected column name, got %v", p.describe())
	}
	column := p.current().Value

	// Validate column name length
	if err := ValidateColumnName(column); err != nil {
		return nil, err
	}

	p.advance()

	// Parse operator
	operator := p.current().Type
	switch operator {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		p.advance()
	default:
		return nil, fmt.Errorf("expected comparison operator, got %v", p.describe())
	}

	// Parse value
	var value any
	switch p.current().Type {
	case TokenString:
		value = p.current().Value
		p.advance()
	case TokenNumber:
		numStr := p.current().Value
		// Try to parse as int first, then float
		if intVal, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			value = intVal
		} else if floatVal, err := strconv.ParseFloat(numStr, 64); err == nil {
			value = floatVal
		} else {
			return nil, fmt.Errorf("invalid number: %s", numStr)
		}
		p.advance()
	case TokenBool:
		value = strings.ToLower(p.current().Value) == "true"
		p.advance()
	case TokenNull:
		if operator != TokenEqual && operator != TokenNotEqual {
			return nil, fmt.Errorf("NULL can only be compared with = or !=")
		}
		p.advance()
	default:
		return nil, fmt.Errorf("expected value (string, number, bool or null), got %v", p.describe())
	}

	return &ComparisonExpr{
		Column:   column,
		Operator: operator,
		Value:    value,
		index:    -1,
	}, nil
}
