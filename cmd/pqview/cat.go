package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vegasq/pqview/internal/filter"
	"github.com/vegasq/pqview/output"
	"github.com/vegasq/pqview/reader"
)

// catCommand prints the first rows of every file matching a pattern.
type catCommand struct {
	g       *globals
	pattern string
	where   string
}

func (cmd *catCommand) run(_ *kingpin.ParseContext) error {
	if err := cmd.g.validate(); err != nil {
		return err
	}
	formatter, err := output.New(cmd.g.format, cmd.g.stdout)
	if err != nil {
		return err
	}
	var expr filter.Expression
	if cmd.where != "" {
		if expr, err = filter.Parse(cmd.where); err != nil {
			return fmt.Errorf("parsing --where: %w", err)
		}
	}

	files, err := reader.ReadMultipleFiles(cmd.g.ctx, cmd.pattern, cmd.g.options())
	if err != nil {
		return describe(cmd.pattern, err)
	}
	for _, f := range files {
		if err := filter.Apply(f.Table, expr); err != nil {
			return fmt.Errorf("filtering %s: %w", f.Path, err)
		}
		applyLimit(f.Table, cmd.g.limit)
		if len(files) > 1 {
			fmt.Fprintf(cmd.g.stderr, "# %s\n", f.Path)
		}
		if err := formatter.Format(f.Table); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
	}
	return nil
}

// describe turns a missing file into a friendlier message.
func describe(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file '%s' not found, please check the file path and try again", path)
	}
	return err
}

func addCatCommand(app *kingpin.Application, g *globals) {
	cmd := &catCommand{g: g}
	c := app.Command("cat", "Print the first rows of a file or glob pattern.").Default().Action(cmd.run)
	c.Flag("where", "Only print rows matching a filter, e.g. \"age > 30 and name != 'bob'\".").Short('w').StringVar(&cmd.where)
	c.Arg("file", "Parquet file or glob pattern, e.g. 'data/*.parquet'.").Required().StringVar(&cmd.pattern)
}
