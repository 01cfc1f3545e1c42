// Package encoding decodes Parquet value and level encodings.
//
// Decoders read from a page body and append to a typed Values buffer. Every
// length, count and bit width read from the input is validated against the
// bytes actually available; failures are pqerr.CorruptColumnData errors.
package encoding

import (
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

// Values holds decoded physical values of a single type. Only the slice for
// Type is populated. Int96, BYTE_ARRAY and FIXED_LEN_BYTE_ARRAY values are in
// Bytes and alias the page buffer.
type Values struct {
	Type   metadata.Type
	Bools  []bool
	Int32  []int32
	Int64  []int64
	Float  []float32
	Double []float64
	Bytes  [][]byte
}

// Len returns the number of values held.
func (v *Values) Len() int {
	switch v.Type {
	case metadata.Boolean:
		return len(v.Bools)
	case metadata.Int32:
		return len(v.Int32)
	case metadata.Int64:
		return len(v.Int64)
	case metadata.Float:
		return len(v.Float)
	case metadata.Double:
		return len(v.Double)
	default:
		return len(v.Bytes)
	}
}

// Reset empties v, keeping its capacity, and sets its type.
func (v *Values) Reset(t metadata.Type) {
	v.Type = t
	v.Bools = v.Bools[:0]
	v.Int32 = v.Int32[:0]
	v.Int64 = v.Int64[:0]
	v.Float = v.Float[:0]
	v.Double = v.Double[:0]
	v.Bytes = v.Bytes[:0]
}

// Width returns the encoded size of one value of a fixed-width type, or 0
// for BOOLEAN and BYTE_ARRAY.
func Width(t metadata.Type, typeLength int) int {
	switch t {
	case metadata.Int32, metadata.Float:
		return 4
	case metadata.Int64, metadata.Double:
		return 8
	case metadata.Int96:
		return 12
	case metadata.FixedLenByteArray:
		return typeLength
	}
	return 0
}

func corrupt(format string, args ...any) error {
	return pqerr.New(pqerr.CorruptColumnData, format, args...)
}

func corruptWrap(err error, format string, args ...any) error {
	return pqerr.Reclassify(pqerr.CorruptColumnData, err, format, args...)
}
