package output

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/pqview/table"
	"github.com/vegasq/pqview/viewer"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line). Object keys
// follow the column order of the file rather than being sorted.
func (j *JSONFormatter) Format(t *table.Table) error {
	keys := make([][]byte, len(t.Columns))
	for i, name := range t.Names() {
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encoding column name %q: %w", name, err)
		}
		keys[i] = k
	}

	var buf []byte
	for _, row := range t.Rows {
		buf = append(buf[:0], '{')
		for i, cell := range row {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, keys[i]...)
			buf = append(buf, ':')
			var err error
			if buf, err = cell.AppendJSON(buf); err != nil {
				return fmt.Errorf("encoding column %q: %w", t.Columns[i].Name, err)
			}
		}
		buf = append(buf, '}', '\n')
		if _, err := j.writer.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// EnvelopeFormatter writes the whole table as a single JSON document with
// schema, rows, totals and warnings.
type EnvelopeFormatter struct {
	writer io.Writer
}

// NewEnvelopeFormatter creates a new JSON envelope formatter
func NewEnvelopeFormatter(w io.Writer) *EnvelopeFormatter {
	return &EnvelopeFormatter{writer: w}
}

// SetOutput sets the output writer
func (e *EnvelopeFormatter) SetOutput(w io.Writer) {
	e.writer = w
}

// Format writes t as {"table": {...}} followed by a newline.
func (e *EnvelopeFormatter) Format(t *table.Table) error {
	out, err := json.Marshal(viewer.Result{Table: t})
	if err != nil {
		return err
	}
	_, err = e.writer.Write(append(out, '\n'))
	return err
}
