// Package reader opens Parquet files from disk and decodes a preview of
// their rows.
//
// A file is read into memory whole and its footer parsed once; decoding
// then materializes at most the configured number of rows.
//
// # Basic Usage
//
// Reading a single parquet file:
//
//	r, err := reader.NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	tbl, err := r.Decode(ctx, table.Options{MaxRows: 1000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, row := range tbl.Rows {
//	    fmt.Println(row)
//	}
//
// # Multi-file Operations
//
// Decoding every file matched by a glob pattern:
//
//	files, err := reader.ReadMultipleFiles(ctx, "data/*.parquet", table.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range files {
//	    fmt.Printf("%s: %d of %d rows\n", f.Path, len(f.Table.Rows), f.Table.TotalRows)
//	}
//
// # Schema Introspection
//
// ExtractSchemaInfo describes every leaf column without decoding any data:
//
//	infos, err := reader.ExtractSchemaInfo("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, info := range infos {
//	    fmt.Printf("%s: %s\n", info.Name, info.Type)
//	}
//
// Errors from malformed files wrap a *pqerr.Error; use errors.Is with the
// pqerr sentinels to tell them apart from I/O errors.
package reader
