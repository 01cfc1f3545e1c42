// Package table materializes the first rows of a Parquet file into a
// row-major table of converted values.
package table

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/vegasq/pqview/internal/column"
	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

// DefaultMaxRows is the row cap used when Options.MaxRows is not positive.
const DefaultMaxRows = 100000

// Table is a bounded, row-major view of a Parquet file.
type Table struct {
	Columns []metadata.ColumnDescriptor
	// Rows holds at most the row cap; every row has one cell per column.
	Rows      [][]logical.Value
	TotalRows int64
	Truncated bool
	// Warnings lists non-fatal problems, at most one per column and kind.
	Warnings []*pqerr.Error
}

// Names returns the column names in schema order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Options configures Materialize.
type Options struct {
	MaxRows int
	Workers int
	Logger  log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	return o
}

// part is a row group selected for decoding. limit is 0 when the whole
// group is needed.
type part struct {
	group metadata.RowGroup
	rows  int
	limit int
}

// plan takes row groups in file order until maxRows rows are covered. The
// last group taken may be partial.
func plan(groups []metadata.RowGroup, maxRows int) []part {
	var parts []part
	remaining := int64(maxRows)
	for _, g := range groups {
		if remaining == 0 {
			break
		}
		p := part{group: g, rows: int(g.NumRows)}
		if g.NumRows > remaining {
			p.rows, p.limit = int(remaining), int(remaining)
		}
		remaining -= int64(p.rows)
		parts = append(parts, p)
	}
	return parts
}

// cells is one decoded and converted column of one part.
type cells struct {
	values  []logical.Value
	invalid *pqerr.Error
}

// Materialize decodes the row groups needed for the first opts.MaxRows rows
// of data, whose footer md was parsed from the same bytes. Column chunks
// are decoded concurrently by up to opts.Workers goroutines. Any chunk
// failure fails the whole call.
func Materialize(ctx context.Context, data []byte, md *metadata.FileMetaData, opts Options) (*Table, error) {
	opts = opts.withDefaults()
	logger := opts.Logger
	schema := md.Schema()
	ncols := schema.NumColumns()

	converters := make([]*logical.Converter, ncols)
	for j := range schema.Columns {
		converters[j] = logical.NewConverter(&schema.Columns[j])
	}

	parts := plan(md.RowGroups(), opts.MaxRows)
	level.Debug(logger).Log("msg", "decode plan", "row_groups", len(parts), "file_row_groups", len(md.RowGroups()),
		"columns", ncols, "max_rows", opts.MaxRows, "workers", opts.Workers)

	results := make([][]cells, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, p := range parts {
		if gctx.Err() != nil {
			break
		}
		results[i] = make([]cells, ncols)
		for j := range schema.Columns {
			g.Go(func() (err error) {
				desc := &schema.Columns[j]
				defer func() {
					if r := recover(); r != nil {
						err = pqerr.New(pqerr.CorruptColumnData, "row group %d: decoder failure: %v",
							p.group.Index, r).WithColumn(desc.Name)
					}
				}()
				if err := gctx.Err(); err != nil {
					return err
				}
				col, err := column.DecodeChunk(gctx, data, p.group.Columns[j], desc, p.limit)
				if err != nil {
					return err
				}
				if col.NumRows() != p.rows {
					return pqerr.New(pqerr.CorruptColumnData, "row group %d: decoded %d rows, want %d",
						p.group.Index, col.NumRows(), p.rows).WithColumn(desc.Name)
				}
				results[i][j] = convertColumn(col, converters[j])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("materializing table: %w", ctx.Err())
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("materializing table: %w", err)
	}

	t := &Table{
		Columns:   schema.Columns,
		TotalRows: md.NumRows,
	}
	planned := 0
	for _, p := range parts {
		planned += p.rows
	}
	t.Rows = make([][]logical.Value, 0, planned)
	invalid := make([]*pqerr.Error, ncols)
	for i, p := range parts {
		for r := 0; r < p.rows; r++ {
			row := make([]logical.Value, ncols)
			for j := range row {
				row[j] = results[i][j].values[r]
			}
			t.Rows = append(t.Rows, row)
		}
		for j := range results[i] {
			if invalid[j] == nil {
				invalid[j] = results[i][j].invalid
			}
		}
		results[i] = nil
		level.Debug(logger).Log("msg", "row group assembled", "row_group", p.group.Index, "rows", p.rows, "partial", p.limit > 0)
	}

	t.Truncated = t.TotalRows > int64(len(t.Rows))
	if t.Truncated {
		level.Warn(logger).Log("msg", "table truncated", "rows", len(t.Rows), "total_rows", t.TotalRows)
	}
	t.Warnings = collectWarnings(schema, converters, invalid)
	for _, w := range t.Warnings {
		level.Warn(logger).Log("msg", "column warning", "column", w.Column, "kind", w.Kind, "err", w.Message)
	}
	return t, nil
}

func convertColumn(col *column.Column, conv *logical.Converter) cells {
	var out cells
	n := col.NumRows()
	out.values = make([]logical.Value, n)
	note := func(err error) {
		if err != nil && out.invalid == nil {
			out.invalid, _ = err.(*pqerr.Error)
		}
	}
	if !col.Descriptor.Repeated() {
		for r, v := range col.Values {
			cell, err := conv.Convert(v)
			note(err)
			out.values[r] = cell
		}
		return out
	}
	for r := 0; r < n; r++ {
		slots, null := col.Row(r)
		if null {
			out.values[r] = logical.NullValue()
			continue
		}
		elems := make([]logical.Value, len(slots))
		for k, v := range slots {
			e, err := conv.Convert(v)
			note(err)
			elems[k] = e
		}
		out.values[r] = logical.NewList(elems)
	}
	return out
}

func collectWarnings(schema *metadata.Schema, converters []*logical.Converter, invalid []*pqerr.Error) []*pqerr.Error {
	var warnings []*pqerr.Error
	for j := range schema.Columns {
		desc := &schema.Columns[j]
		if desc.Repeated() {
			warnings = append(warnings, pqerr.New(pqerr.UnsupportedLogicalType,
				"repeated column is shown as lists of element values").WithColumn(desc.Name))
		}
		if u := converters[j].Unsupported; u != nil {
			warnings = append(warnings, u)
		}
		if invalid[j] != nil {
			warnings = append(warnings, invalid[j])
		}
	}
	return warnings
}
