package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/table"
)

// Reader holds one Parquet file in memory together with its parsed footer.
type Reader struct {
	path string
	data []byte
	meta *metadata.FileMetaData
}

// NewReader reads the file at path and parses its footer.
//
// Example:
//
//	r, err := reader.NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func NewReader(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewBytesReader(path, data)
}

// NewBytesReader parses the footer of a file already in memory. path is
// only used for reporting.
func NewBytesReader(path string, data []byte) (*Reader, error) {
	meta, err := metadata.ParseFooter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &Reader{path: path, data: data, meta: meta}, nil
}

// Decode materializes the first rows of the file.
func (r *Reader) Decode(ctx context.Context, opts table.Options) (*table.Table, error) {
	if r.data == nil {
		return nil, fmt.Errorf("reader for %s is closed", r.path)
	}
	return table.Materialize(ctx, r.data, r.meta, opts)
}

// Path returns the path the file was read from.
func (r *Reader) Path() string { return r.path }

// Size returns the file size in bytes.
func (r *Reader) Size() int64 { return int64(len(r.data)) }

// Metadata returns the parsed footer.
func (r *Reader) Metadata() *metadata.FileMetaData { return r.meta }

// Schema returns the leaf columns of the file.
func (r *Reader) Schema() *metadata.Schema { return r.meta.Schema() }

// Close releases the file contents. It is safe to call Close multiple times.
func (r *Reader) Close() error {
	r.data = nil
	return nil
}

// File is the decoded preview of one file matched by ReadMultipleFiles.
type File struct {
	Path  string
	Table *table.Table
}

// maxFiles bounds the number of files a glob pattern may expand to.
const maxFiles = 1000

// ReadMultipleFiles decodes every Parquet file matching a glob pattern, in
// lexical order. A pattern without wildcards names a single file.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Each file keeps its own schema and row cap.
func ReadMultipleFiles(ctx context.Context, pattern string, opts table.Options) ([]File, error) {
	paths, err := Expand(pattern)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		r, err := NewReader(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		tbl, err := r.Decode(ctx, opts)
		_ = r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
		}
		files = append(files, File{Path: path, Table: tbl})
	}
	return files, nil
}

// Expand returns the files matching pattern. A pattern without wildcards
// is returned as is, whether or not the file exists.
func Expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}
	return matches, nil
}
