package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/reader"
)

// inspectCommand prints the row group and column chunk layout of files.
type inspectCommand struct {
	g     *globals
	files []string
}

func (cmd *inspectCommand) run(_ *kingpin.ParseContext) error {
	for _, name := range cmd.files {
		r, err := reader.NewReader(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, describe(name, err))
		}
		printLayout(cmd.g.stdout, r)
		_ = r.Close()
	}
	return nil
}

func printLayout(w io.Writer, r *reader.Reader) {
	md := r.Metadata()
	schema := r.Schema()
	bold := color.New(color.Bold)

	bold.Fprintln(w, "File:")
	fmt.Fprintf(w, "\tpath: %s, size: %s, rows: %s, row groups: %d, columns: %d\n",
		r.Path(),
		humanize.Bytes(uint64(r.Size())),
		humanize.Comma(md.NumRows),
		len(md.RowGroups()),
		schema.NumColumns())
	if md.CreatedBy != "" {
		fmt.Fprintf(w, "\tcreated by: %s\n", md.CreatedBy)
	}
	for _, kv := range md.KeyValueMetadata {
		v := ""
		if kv.Value != nil {
			v = humanize.Bytes(uint64(len(*kv.Value)))
		}
		fmt.Fprintf(w, "\tmetadata: %s (%s)\n", kv.Key, v)
	}

	for _, rg := range md.RowGroups() {
		bold.Fprintf(w, "Row group %d:\n", rg.Index)
		fmt.Fprintf(w, "\trows: %s, size: %s\n", humanize.Comma(rg.NumRows), humanize.Bytes(uint64(rg.TotalByteSize)))

		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"Col", "Type", "Codec", "Encodings", "NumVal", "Compressed", "Uncompressed", "%"})
		tw.SetAutoFormatHeaders(false)
		for _, c := range rg.Columns {
			desc := &schema.Columns[c.ColumnIndex]
			tw.Append([]string{
				desc.Name,
				desc.PhysicalType.String(),
				c.Codec.String(),
				encodings(c.Encodings),
				humanize.Comma(c.NumValues),
				humanize.Bytes(uint64(c.ByteLength)),
				humanize.Bytes(uint64(c.TotalUncompressedSize)),
				ratio(c.ByteLength, rg.TotalByteSize),
			})
		}
		tw.Render()
	}
}

func encodings(encs []metadata.Encoding) string {
	names := make([]string, len(encs))
	for i, e := range encs {
		names[i] = e.String()
	}
	return strings.Join(names, ",")
}

// ratio is part as a percentage of whole.
func ratio(part, whole int64) string {
	if whole <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(part)/float64(whole)*100)
}

func addInspectCommand(app *kingpin.Application, g *globals) {
	cmd := &inspectCommand{g: g}
	c := app.Command("inspect", "Print row group and column chunk layout.").Action(cmd.run)
	c.Arg("file", "Parquet files to inspect.").Required().StringsVar(&cmd.files)
}
