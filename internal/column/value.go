package column

import (
	"encoding/hex"
	"math"
	"strconv"

	"github.com/vegasq/pqview/metadata"
)

// Value is one physical slot of a column: NULL or a value of the column's
// physical type. Byte payloads alias the decoded page buffers.
type Value struct {
	typ   metadata.Type
	valid bool
	bits  uint64
	buf   []byte
}

// Null returns a NULL slot of type t.
func Null(t metadata.Type) Value { return Value{typ: t} }

// BoolValue returns a BOOLEAN value.
func BoolValue(b bool) Value {
	v := Value{typ: metadata.Boolean, valid: true}
	if b {
		v.bits = 1
	}
	return v
}

// Int32Value returns an INT32 value.
func Int32Value(i int32) Value {
	return Value{typ: metadata.Int32, valid: true, bits: uint64(uint32(i))}
}

// Int64Value returns an INT64 value.
func Int64Value(i int64) Value {
	return Value{typ: metadata.Int64, valid: true, bits: uint64(i)}
}

// FloatValue returns a FLOAT value.
func FloatValue(f float32) Value {
	return Value{typ: metadata.Float, valid: true, bits: uint64(math.Float32bits(f))}
}

// DoubleValue returns a DOUBLE value.
func DoubleValue(f float64) Value {
	return Value{typ: metadata.Double, valid: true, bits: math.Float64bits(f)}
}

// BytesValue returns an INT96, BYTE_ARRAY or FIXED_LEN_BYTE_ARRAY value.
func BytesValue(t metadata.Type, b []byte) Value {
	return Value{typ: t, valid: true, buf: b}
}

// IsNull reports whether the slot is NULL.
func (v Value) IsNull() bool { return !v.valid }

// Type returns the physical type.
func (v Value) Type() metadata.Type { return v.typ }

func (v Value) Bool() bool { return v.bits != 0 }
func (v Value) Int32() int32 { return int32(uint32(v.bits)) }
func (v Value) Int64() int64 { return int64(v.bits) }
func (v Value) Float() float32 { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Double() float64 { return math.Float64frombits(v.bits) }
func (v Value) ByteArray() []byte { return v.buf }

// String renders the physical value without any logical interpretation.
// Byte payloads are shown as 0x-prefixed hex.
func (v Value) String() string {
	if !v.valid {
		return "NULL"
	}
	switch v.typ {
	case metadata.Boolean:
		return strconv.FormatBool(v.Bool())
	case metadata.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case metadata.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case metadata.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case metadata.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return "0x" + hex.EncodeToString(v.buf)
	}
}
