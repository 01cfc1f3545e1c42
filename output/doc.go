// Package output provides formatters for rendering decoded parquet tables.
//
// This package defines the Formatter interface and implementations for the
// formats the command line tool supports. All formatters work on a
// *table.Table and keep its column order.
//
// # Supported Formats
//
//   - json: a single document with schema, rows, totals and warnings
//   - jsonl: one JSON object per row (suitable for streaming)
//   - csv: comma-separated values with header row
//   - table: an aligned text table for terminals
//
// # Basic Usage
//
// Selecting a formatter by name:
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(tbl); err != nil {
//	    log.Fatal(err)
//	}
//
// # Writing to Different Destinations
//
// Change output destination dynamically:
//
//	formatter := output.NewJSONFormatter(os.Stdout)
//
//	file, err := os.Create("output.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	formatter.SetOutput(file)
//
// # Type Handling
//
//   - JSON formatters emit integers, floats and booleans as JSON values and
//     every formatted type (dates, timestamps, decimals, UUIDs) as a string
//   - Non-finite floats are written as the strings "NaN", "Infinity" and
//     "-Infinity"
//   - CSV writes NULL as an empty field and guards strings against formula
//     injection
//   - The table formatter shows NULL literally and cuts wide cells by
//     display width
package output
