package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/table"
)

// DefaultCellWidth is the display width at which table cells are cut.
const DefaultCellWidth = 40

var controlReplacer = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// TableFormatter renders rows as an aligned text table followed by a
// summary line and any decode warnings.
type TableFormatter struct {
	writer    io.Writer
	cellWidth int
}

// NewTableFormatter creates a new text table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w, cellWidth: DefaultCellWidth}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// SetCellWidth sets the maximum display width of a cell. Zero disables
// truncation.
func (f *TableFormatter) SetCellWidth(n int) {
	f.cellWidth = n
}

// Format writes t as a text table.
func (f *TableFormatter) Format(t *table.Table) error {
	tw := tablewriter.NewWriter(f.writer)
	tw.SetHeader(t.Names())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = f.cell(cell)
		}
		tw.Append(record)
	}
	tw.Render()

	summary := fmt.Sprintf("%d rows", t.TotalRows)
	if t.Truncated || int64(len(t.Rows)) != t.TotalRows {
		summary = fmt.Sprintf("showing %d of %d rows", len(t.Rows), t.TotalRows)
	}
	if _, err := fmt.Fprintln(f.writer, summary); err != nil {
		return err
	}
	for _, w := range t.Warnings {
		if _, err := fmt.Fprintf(f.writer, "warning: %v\n", w); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) cell(v logical.Value) string {
	s := controlReplacer.Replace(v.String())
	if f.cellWidth > 0 && runewidth.StringWidth(s) > f.cellWidth {
		s = runewidth.Truncate(s, f.cellWidth, "…")
	}
	return s
}
