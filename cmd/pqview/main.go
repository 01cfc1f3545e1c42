// Command pqview previews the rows, schema and layout of Parquet files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vegasq/pqview/output"
	"github.com/vegasq/pqview/table"
)

// globals holds the flags shared by every command.
type globals struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	format   string
	maxRows  int
	limit    int
	workers  int
	logLevel string
}

func newApp(ctx context.Context, stdout, stderr io.Writer) *kingpin.Application {
	g := &globals{ctx: ctx, stdout: stdout, stderr: stderr}

	app := kingpin.New("pqview", "A tool to preview and inspect Parquet files.")
	app.UsageWriter(stderr).ErrorWriter(stderr)
	app.HelpFlag.Short('h')

	app.Flag("format", "Output format: json, jsonl, csv, table.").Short('f').Default("jsonl").EnumVar(&g.format, output.Formats...)
	app.Flag("max-rows", "Maximum number of rows decoded per file.").Envar("PQVIEW_MAX_ROWS").Default(strconv.Itoa(table.DefaultMaxRows)).IntVar(&g.maxRows)
	app.Flag("limit", "Limit number of rows printed (0 = unlimited).").Default("0").IntVar(&g.limit)
	app.Flag("workers", "Column chunks decoded in parallel (0 = one per CPU).").Envar("PQVIEW_WORKERS").Default("0").IntVar(&g.workers)
	app.Flag("log.level", "Only log messages with the given severity or above.").Default("warn").EnumVar(&g.logLevel, "debug", "info", "warn", "error")

	addCatCommand(app, g)
	addSchemaCommand(app, g)
	addInspectCommand(app, g)
	return app
}

var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// signalContext is cancelled on the first interrupt or termination signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), stopSignals...)
}

func main() {
	ctx, stop := signalContext()
	app := newApp(ctx, os.Stdout, os.Stderr)
	_, err := app.Parse(os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (g *globals) validate() error {
	if g.limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", g.limit)
	}
	if g.maxRows < 0 {
		return fmt.Errorf("--max-rows must be non-negative, got %d", g.maxRows)
	}
	if g.workers < 0 {
		return fmt.Errorf("--workers must be non-negative, got %d", g.workers)
	}
	return nil
}

func (g *globals) logger() log.Logger {
	var allow level.Option
	switch g.logLevel {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowWarn()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(g.stderr))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func (g *globals) options() table.Options {
	return table.Options{MaxRows: g.maxRows, Workers: g.workers, Logger: g.logger()}
}

// applyLimit cuts t to at most n rows. The total row count is kept.
func applyLimit(t *table.Table, n int) {
	if n > 0 && len(t.Rows) > n {
		t.Rows = t.Rows[:n]
		t.Truncated = true
	}
}
