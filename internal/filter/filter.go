package filter

import (
	"fmt"

	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/table"
)

// compare compares a cell with a literal using the given operator.
//
// Numbers compare numerically, strings and formatted values (dates,
// timestamps, times, UUIDs) compare by their display text, and booleans
// support only = and !=. A nil literal stands for NULL.
func compare(left logical.Value, operator TokenType, right any) (bool, error) {
	// Handle NULL on either side
	if left.IsNull() || right == nil {
		both := left.IsNull() && right == nil
		switch operator {
		case TokenEqual:
			return both, nil
		case TokenNotEqual:
			return !both, nil
		}
		return false, nil
	}

	// Exact integer comparison
	if li, ok := toInt64(left); ok {
		if ri, ok := right.(int64); ok {
			return compareInts(li, operator, ri), nil
		}
	}

	// Try numeric comparison
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := literalFloat64(right)
	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum), nil
	}

	// Try string comparison
	leftStr, leftIsStr := toString(left)
	rightStr, rightIsStr := right.(string)
	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, operator, rightStr), nil
	}

	// Try boolean comparison
	rightBool, rightIsBool := right.(bool)
	if left.Kind() == logical.Bool && rightIsBool {
		return compareBools(left.Bool(), operator, rightBool), nil
	}

	// Type mismatch
	return false, fmt.Errorf("cannot compare %s value with %T", left.Kind(), right)
}

func toInt64(v logical.Value) (int64, bool) {
	switch v.Kind() {
	case logical.Int:
		return v.Int(), true
	case logical.Uint:
		if u := v.Uint(); u <= 1<<63-1 {
			return int64(u), true
		}
	}
	return 0, false
}

// toFloat64 converts a numeric cell to float64 if possible
func toFloat64(v logical.Value) (float64, bool) {
	switch v.Kind() {
	case logical.Int:
		return float64(v.Int()), true
	case logical.Uint:
		return float64(v.Uint()), true
	case logical.Float:
		return v.Float(), true
	case logical.Decimal:
		return v.Decimal().InexactFloat64(), true
	default:
		return 0, false
	}
}

func literalFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// toString returns the text of string-like and formatted cells
func toString(v logical.Value) (string, bool) {
	switch v.Kind() {
	case logical.String:
		return v.Str(), true
	case logical.Date, logical.Timestamp, logical.Time, logical.UUID:
		return v.String(), true
	default:
		return "", false
	}
}

// compareInts compares two integers
func compareInts(left int64, operator TokenType, right int64) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator TokenType, right float64) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareBools compares two booleans
func compareBools(left bool, operator TokenType, right bool) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	default:
		return false
	}
}

// Bind resolves the column names in expr against names. It must be called
// before Evaluate.
func Bind(expr Expression, names []string) error {
	columns := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return expr.bind(columns)
}

// Apply keeps the rows of t that match expr. TotalRows is left unchanged
// so callers can still report how many rows the file holds.
func Apply(t *table.Table, expr Expression) error {
	if expr == nil {
		return nil
	}
	if err := Bind(expr, t.Names()); err != nil {
		return fmt.Errorf("%w (available columns: %v)", err, t.Names())
	}

	filtered := make([][]logical.Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		match, err := expr.Evaluate(row)
		if err != nil {
			return err
		}
		if match {
			filtered = append(filtered, row)
		}
	}
	t.Rows = filtered
	return nil
}
