// Package pqerr defines the error taxonomy returned by the Parquet decoder.
//
// Every failure surfaced by pqview is an *Error carrying a Kind. Callers
// switch on the kind, or use errors.Is with one of the sentinel values:
//
//	table, err := viewer.Decode(ctx, data)
//	if errors.Is(err, pqerr.ErrInvalidMagic) {
//	    // not a parquet file
//	}
package pqerr

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind uint8

const (
	// TruncatedInput means a read ran past the end of the buffer.
	TruncatedInput Kind = iota + 1
	// InvalidMagic means the PAR1 magic bytes are missing.
	InvalidMagic
	// CorruptFooter means the footer metadata could not be decoded.
	CorruptFooter
	// EmptySchema means the schema declares no leaf columns.
	EmptySchema
	// UnsupportedCompression means a column chunk uses an unknown codec.
	UnsupportedCompression
	// DecompressionFailed means the codec rejected a page.
	DecompressionFailed
	// CorruptColumnData means page headers, levels or values are malformed.
	CorruptColumnData
	// InvalidEncoding means a cell holds bytes that are not valid for its
	// logical type, such as invalid UTF-8 in a STRING column. Non-fatal.
	InvalidEncoding
	// UnsupportedLogicalType means a column annotation cannot be converted
	// and its cells are shown raw. Non-fatal.
	UnsupportedLogicalType
	// Cancelled means the caller's context ended the decode. The context's
	// error is the cause.
	Cancelled
)

var kindNames = map[Kind]string{
	TruncatedInput:         "TruncatedInput",
	InvalidMagic:           "InvalidMagic",
	CorruptFooter:          "CorruptFooter",
	EmptySchema:            "EmptySchema",
	UnsupportedCompression: "UnsupportedCompression",
	DecompressionFailed:    "DecompressionFailed",
	CorruptColumnData:      "CorruptColumnData",
	InvalidEncoding:        "InvalidEncoding",
	UnsupportedLogicalType: "UnsupportedLogicalType",
	Cancelled:              "Cancelled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Fatal reports whether errors of this kind abort a decode.
func (k Kind) Fatal() bool {
	return k != InvalidEncoding && k != UnsupportedLogicalType
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a decode failure tagged with its Kind.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
	// Column names the column the error applies to, if any.
	Column string `json:"column,omitempty"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Sentinels for use with errors.Is. Only the Kind is compared.
var (
	ErrTruncatedInput         = &Error{Kind: TruncatedInput}
	ErrInvalidMagic           = &Error{Kind: InvalidMagic}
	ErrCorruptFooter          = &Error{Kind: CorruptFooter}
	ErrEmptySchema            = &Error{Kind: EmptySchema}
	ErrUnsupportedCompression = &Error{Kind: UnsupportedCompression}
	ErrDecompressionFailed    = &Error{Kind: DecompressionFailed}
	ErrCorruptColumnData      = &Error{Kind: CorruptColumnData}
	ErrInvalidEncoding        = &Error{Kind: InvalidEncoding}
	ErrUnsupportedLogicalType = &Error{Kind: UnsupportedLogicalType}
	ErrCancelled              = &Error{Kind: Cancelled}
)

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind wrapping err. If err already is an
// *Error it is returned unchanged so the innermost classification wins.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Reclassify always returns an error of the given kind, keeping err as the
// cause. It is used where a lower layer's classification is too specific,
// e.g. a truncated read inside the footer block is a corrupt footer.
func Reclassify(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithColumn returns a copy of e annotated with a column name.
func (e *Error) WithColumn(name string) *Error {
	c := *e
	c.Column = name
	return &c
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
