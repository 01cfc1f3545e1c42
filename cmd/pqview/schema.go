package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/output"
	"github.com/vegasq/pqview/reader"
	"github.com/vegasq/pqview/table"
)

// schemaCommand prints the leaf columns of a file without decoding rows.
type schemaCommand struct {
	g       *globals
	pattern string
}

func (cmd *schemaCommand) run(_ *kingpin.ParseContext) error {
	formatter, err := output.New(cmd.g.format, cmd.g.stdout)
	if err != nil {
		return err
	}

	// For glob patterns, use first match
	matches, err := reader.Expand(cmd.pattern)
	if err != nil {
		return err
	}
	path := matches[0]
	if len(matches) > 1 {
		fmt.Fprintf(cmd.g.stderr, "# Showing schema from: %s (%d files matched)\n", path, len(matches))
	}

	infos, err := reader.ExtractSchemaInfo(path)
	if err != nil {
		return describe(path, err)
	}
	if err := formatter.Format(schemaTable(infos)); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

var schemaColumns = []metadata.ColumnDescriptor{
	stringColumn("name"),
	stringColumn("type"),
	stringColumn("physical_type"),
	stringColumn("logical_type"),
	boolColumn("required"),
	boolColumn("optional"),
	boolColumn("repeated"),
}

func stringColumn(name string) metadata.ColumnDescriptor {
	return metadata.ColumnDescriptor{
		Name:          name,
		Path:          []string{name},
		PhysicalType:  metadata.ByteArray,
		LogicalType:   &metadata.LogicalType{Kind: metadata.LogicalString},
		ConvertedType: metadata.ConvertedUTF8,
	}
}

func boolColumn(name string) metadata.ColumnDescriptor {
	return metadata.ColumnDescriptor{
		Name:          name,
		Path:          []string{name},
		PhysicalType:  metadata.Boolean,
		ConvertedType: metadata.NoConvertedType,
	}
}

// schemaTable lays schema information out as a table so every output
// format can render it.
func schemaTable(infos []reader.SchemaInfo) *table.Table {
	rows := make([][]logical.Value, len(infos))
	for i, info := range infos {
		rows[i] = []logical.Value{
			logical.NewString(info.Name),
			logical.NewString(info.Type),
			logical.NewString(info.PhysicalType),
			logical.NewString(info.LogicalType),
			logical.NewBool(info.Required),
			logical.NewBool(info.Optional),
			logical.NewBool(info.Repeated),
		}
	}
	return &table.Table{Columns: schemaColumns, Rows: rows, TotalRows: int64(len(rows))}
}

func addSchemaCommand(app *kingpin.Application, g *globals) {
	cmd := &schemaCommand{g: g}
	c := app.Command("schema", "Show schema information instead of data.").Action(cmd.run)
	c.Arg("file", "Parquet file or glob pattern; the first match is used.").Required().StringVar(&cmd.pattern)
}
