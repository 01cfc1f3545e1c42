// Package filter provides row filtering for decoded parquet tables.
//
// It implements a WHERE-style expression language with comparison
// operators, NULL checks, parentheses and boolean logic (AND/OR). The
// package includes a lexer for tokenization, a parser for building ASTs,
// and an evaluator that runs over table rows.
//
// Example usage:
//
//	expr, err := filter.Parse("age > 30 and name != 'bob'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := filter.Apply(tbl, expr); err != nil {
//	    log.Fatal(err)
//	}
package filter

import (
	"fmt"

	"github.com/vegasq/pqview/logical"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenWhere TokenType = iota
	TokenAnd
	TokenOr
	TokenNull

	// Operators
	TokenEqual        // =
	TokenNotEqual     // !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenLParen       // (
	TokenRParen       // )

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Special
	TokenEOF
	TokenError
)

var tokenNames = [...]string{
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNull:         "NULL",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenEOF:          "end of input",
	TokenError:        "invalid character",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// Expression represents a boolean expression over one row.
type Expression interface {
	// Evaluate reports whether row matches. The expression must have been
	// bound to the row's columns first.
	Evaluate(row []logical.Value) (bool, error)

	bind(columns map[string]int) error
}

// BinaryExpr represents a binary expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

// ComparisonExpr represents a comparison expression. Value is nil for
// comparisons against NULL.
type ComparisonExpr struct {
	Column   string
	Operator TokenType
	Value    any

	index int
}

// Evaluate evaluates a binary expression
func (b *BinaryExpr) Evaluate(row []logical.Value) (bool, error) {
	left, err := b.Left.Evaluate(row)
	if err != nil {
		return false, err
	}

	// Short circuit
	if b.Operator == TokenAnd && !left {
		return false, nil
	}
	if b.Operator == TokenOr && left {
		return true, nil
	}
	return b.Right.Evaluate(row)
}

func (b *BinaryExpr) bind(columns map[string]int) error {
	if err := b.Left.bind(columns); err != nil {
		return err
	}
	return b.Right.bind(columns)
}

// Evaluate evaluates a comparison expression
func (c *ComparisonExpr) Evaluate(row []logical.Value) (bool, error) {
	if c.index < 0 || c.index >= len(row) {
		return false, fmt.Errorf("column %q is not bound", c.Column)
	}
	return compare(row[c.index], c.Operator, c.Value)
}

func (c *ComparisonExpr) bind(columns map[string]int) error {
	i, ok := columns[c.Column]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, c.Column)
	}
	c.index = i
	return nil
}
