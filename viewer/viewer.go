// Package viewer is the entry point for decoding a Parquet file held in
// memory into a bounded table, and for serializing the result for a
// browser front end.
package viewer

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
	"github.com/vegasq/pqview/table"
)

// DefaultMaxRows is the default row cap.
const DefaultMaxRows = table.DefaultMaxRows

type config struct {
	maxRows int
	workers int
	logger  log.Logger
}

// Option configures Decode.
type Option func(*config)

// WithMaxRows caps the number of materialized rows. Non-positive values
// select DefaultMaxRows.
func WithMaxRows(n int) Option {
	return func(c *config) { c.maxRows = n }
}

// WithWorkers bounds the number of column chunks decoded concurrently.
// Non-positive values select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithLogger sets the logger. Decode logs nothing by default.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Decode parses data as a complete Parquet file and materializes its first
// rows. Errors are *pqerr.Error values; a cancelled decode has kind
// Cancelled and wraps the context's error.
func Decode(ctx context.Context, data []byte, opts ...Option) (tbl *table.Table, err error) {
	cfg := config{maxRows: DefaultMaxRows, logger: log.NewNopLogger()}
	for _, o := range opts {
		o(&cfg)
	}

	defer func() {
		if r := recover(); r != nil {
			level.Error(cfg.logger).Log("msg", "decoder panic", "panic", r, "stack", string(debug.Stack()))
			tbl, err = nil, pqerr.New(pqerr.CorruptColumnData, "decoder failure: %v", r)
		}
	}()

	md, err := metadata.ParseFooter(data)
	if err != nil {
		return nil, err
	}
	level.Debug(cfg.logger).Log("msg", "footer parsed", "columns", md.Schema().NumColumns(),
		"row_groups", len(md.RowGroups()), "rows", md.NumRows, "created_by", md.CreatedBy)

	tbl, err = table.Materialize(ctx, data, md, table.Options{
		MaxRows: cfg.maxRows,
		Workers: cfg.workers,
		Logger:  cfg.logger,
	})
	if err != nil {
		return nil, classify(ctx, err)
	}
	return tbl, nil
}

func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return pqerr.Reclassify(pqerr.Cancelled, ctxErr, "decode stopped")
	}
	var pe *pqerr.Error
	if errors.As(err, &pe) {
		return pe
	}
	return pqerr.Wrap(pqerr.CorruptColumnData, err, "decoding table")
}
