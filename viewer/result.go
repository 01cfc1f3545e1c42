package viewer

import (
	"context"
	"errors"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/pqerr"
	"github.com/vegasq/pqview/table"
)

// Result is the outcome of a decode as sent to the front end: exactly one
// of Table and Err is set.
type Result struct {
	Table *table.Table
	Err   error
}

type envelope struct {
	Table *tableJSON `json:"table,omitempty"`
	Error *errorJSON `json:"error,omitempty"`
}

type tableJSON struct {
	Columns   []string          `json:"columns"`
	Schema    []columnJSON      `json:"schema"`
	Rows      [][]logical.Value `json:"rows"`
	TotalRows int64             `json:"total_rows"`
	Truncated bool              `json:"truncated"`
	Warnings  []errorJSON       `json:"warnings"`
}

type columnJSON struct {
	Name       string `json:"name"`
	Physical   string `json:"physical"`
	Logical    string `json:"logical,omitempty"`
	Repetition string `json:"repetition"`
}

type errorJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Column  string `json:"column,omitempty"`
}

// MarshalJSON encodes r as {"table": {...}} or {"error": {...}}.
func (r Result) MarshalJSON() ([]byte, error) {
	var env envelope
	if r.Err != nil {
		e := newErrorJSON(r.Err)
		env.Error = &e
	} else {
		env.Table = newTableJSON(r.Table)
	}
	return json.Marshal(env)
}

func newTableJSON(t *table.Table) *tableJSON {
	out := &tableJSON{
		Columns:   t.Names(),
		Schema:    make([]columnJSON, len(t.Columns)),
		Rows:      t.Rows,
		TotalRows: t.TotalRows,
		Truncated: t.Truncated,
		Warnings:  make([]errorJSON, len(t.Warnings)),
	}
	if out.Rows == nil {
		out.Rows = [][]logical.Value{}
	}
	for i := range t.Columns {
		c := &t.Columns[i]
		out.Schema[i] = columnJSON{
			Name:       c.Name,
			Physical:   c.PhysicalType.String(),
			Logical:    c.LogicalString(),
			Repetition: c.Repetition.String(),
		}
	}
	for i, w := range t.Warnings {
		out.Warnings[i] = newErrorJSON(w)
	}
	return out
}

func newErrorJSON(err error) errorJSON {
	var pe *pqerr.Error
	switch {
	case errors.As(err, &pe):
		msg := pe.Message
		if pe.Err != nil {
			if msg != "" {
				msg += ": "
			}
			msg += pe.Err.Error()
		}
		return errorJSON{Kind: pe.Kind.String(), Message: msg, Column: pe.Column}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorJSON{Kind: pqerr.Cancelled.String(), Message: err.Error()}
	default:
		return errorJSON{Kind: pqerr.CorruptColumnData.String(), Message: err.Error()}
	}
}

// DecodeJSON runs Decode and returns the encoded Result. It never fails:
// encoding problems are reported inside the envelope.
func DecodeJSON(ctx context.Context, data []byte, opts ...Option) []byte {
	tbl, err := Decode(ctx, data, opts...)
	out, merr := json.Marshal(Result{Table: tbl, Err: err})
	if merr != nil {
		out, _ = json.Marshal(Result{Err: pqerr.Wrap(pqerr.InvalidEncoding, merr, "encoding result")})
	}
	return out
}
