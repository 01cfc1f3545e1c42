// Package logical turns physical column values into typed, displayable
// values according to the column's logical (or legacy converted) type.
package logical

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vegasq/pqview/internal/column"
	"github.com/vegasq/pqview/metadata"
)

// Kind is the variant held by a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Uint
	Float
	String
	Bytes
	Date
	Timestamp
	Time
	Decimal
	UUID
	// Raw is the fallback for values whose annotation cannot be converted.
	// It carries the physical value, or the element values of a list cell.
	Raw
)

var kindNames = [...]string{
	Null:      "null",
	Bool:      "bool",
	Int:       "int",
	Uint:      "uint",
	Float:     "float",
	String:    "string",
	Bytes:     "bytes",
	Date:      "date",
	Timestamp: "timestamp",
	Time:      "time",
	Decimal:   "decimal",
	UUID:      "uuid",
	Raw:       "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a converted cell. The zero Value is NULL.
type Value struct {
	kind Kind
	// i holds Int, Date days, Timestamp/Time ticks and the Decimal scale.
	i    int64
	u    uint64
	f    float64
	f32  bool
	s    string
	b    []byte
	unit metadata.TimeUnit
	dec  decimal.Decimal
	id   uuid.UUID
	raw  column.Value
	list []Value
}

func NullValue() Value { return Value{} }
func NewBool(b bool) Value { return Value{kind: Bool, u: b2u(b)} }
func NewInt(i int64) Value { return Value{kind: Int, i: i} }
func NewUint(u uint64) Value { return Value{kind: Uint, u: u} }
func NewDouble(f float64) Value { return Value{kind: Float, f: f} }
func NewFloat(f float32) Value { return Value{kind: Float, f: float64(f), f32: true} }
func NewString(s string) Value { return Value{kind: String, s: s} }
func NewBytes(b []byte) Value { return Value{kind: Bytes, b: b} }
func NewDate(days int64) Value { return Value{kind: Date, i: days} }
func NewUUID(id uuid.UUID) Value { return Value{kind: UUID, id: id} }

// NewDecimal returns a decimal rendered with exactly scale fractional digits.
func NewDecimal(d decimal.Decimal, scale int32) Value {
	return Value{kind: Decimal, dec: d, i: int64(scale)}
}

// NewTimestamp returns a UTC instant of v units since the Unix epoch.
func NewTimestamp(unit metadata.TimeUnit, v int64) Value {
	return Value{kind: Timestamp, unit: unit, i: v}
}

// NewTime returns a time of day of v units since midnight.
func NewTime(unit metadata.TimeUnit, v int64) Value {
	return Value{kind: Time, unit: unit, i: v}
}

// NewRaw wraps a physical value that has no usable logical interpretation.
func NewRaw(v column.Value) Value {
	if v.IsNull() {
		return Value{}
	}
	return Value{kind: Raw, raw: v}
}

// NewList wraps the element values of one repeated cell.
func NewList(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: Raw, list: elems}
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }
func (v Value) Bool() bool { return v.u != 0 }
func (v Value) Int() int64 { return v.i }
func (v Value) Uint() uint64 { return v.u }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string { return v.s }
func (v Value) Bytes() []byte { return v.b }
func (v Value) Unit() metadata.TimeUnit { return v.unit }

// Days returns the day number of a Date.
func (v Value) Days() int64 { return v.i }

// Ticks returns the unit count of a Timestamp or Time.
func (v Value) Ticks() int64 { return v.i }

func (v Value) Decimal() decimal.Decimal { return v.dec }
func (v Value) UUID() uuid.UUID { return v.id }

// Physical returns the wrapped value of a scalar Raw cell.
func (v Value) Physical() column.Value { return v.raw }

// List returns the elements of a list cell, nil for anything else.
func (v Value) List() []Value { return v.list }

// IsList reports whether v is a list cell.
func (v Value) IsList() bool { return v.kind == Raw && v.list != nil }

// String renders the value for display. NULL renders as "NULL".
func (v Value) String() string {
	switch v.kind {
	case Null:
		return "NULL"
	case Bool:
		return strconv.FormatBool(v.Bool())
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Uint:
		return strconv.FormatUint(v.u, 10)
	case Float:
		return formatFloat(v.f, v.f32)
	case String:
		return v.s
	case Bytes:
		return "0x" + hex.EncodeToString(v.b)
	case Date:
		return FormatDate(v.i)
	case Timestamp:
		return FormatTimestamp(v.unit, v.i)
	case Time:
		return FormatTime(v.unit, v.i)
	case Decimal:
		return v.dec.StringFixed(int32(v.i))
	case UUID:
		return v.id.String()
	case Raw:
		if v.list == nil {
			return v.raw.String()
		}
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}

func formatFloat(f float64, f32 bool) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f32 {
		return strconv.FormatFloat(f, 'g', -1, 32)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
