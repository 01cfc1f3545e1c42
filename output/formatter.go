package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/pqview/table"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to render a decoded table in the target
// format and SetOutput to change the output destination.
type Formatter interface {
	// Format writes t in the formatter's specific format
	Format(t *table.Table) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Formats lists the names accepted by New.
var Formats = []string{"json", "jsonl", "csv", "table"}

// New returns the formatter registered under name, writing to w.
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewEnvelopeFormatter(w), nil
	case "jsonl", "ndjson":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table", "text":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s)", name, strings.Join(Formats, ", "))
	}
}
