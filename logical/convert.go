package logical

import (
	"math/big"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vegasq/pqview/internal/column"
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

type conversion uint8

const (
	convRaw conversion = iota
	convPassthrough
	convUint32
	convUint64
	convString
	convBytes
	convDate
	convTimestamp
	convTimeInt32
	convTimeInt64
	convInt96
	convDecimalInt
	convDecimalBytes
	convUUID
	convFloat16
)

// Converter applies one column's conversion to each of its cells. The
// dispatch over annotation and physical type happens once, in NewConverter.
type Converter struct {
	conv  conversion
	unit  metadata.TimeUnit
	scale int32
	desc  *metadata.ColumnDescriptor

	// Unsupported is non-nil when the column's annotation has no conversion;
	// every cell of such a column is returned as Raw.
	Unsupported *pqerr.Error
}

// NewConverter resolves the conversion for desc.
func NewConverter(desc *metadata.ColumnDescriptor) *Converter {
	c := &Converter{desc: desc, scale: desc.Scale}
	if desc.LogicalType != nil {
		c.fromLogical(desc.LogicalType)
	} else if desc.ConvertedType != metadata.NoConvertedType {
		c.fromConverted(desc.ConvertedType)
	} else {
		c.fromPhysical()
	}
	if c.conv == convRaw {
		c.Unsupported = pqerr.New(pqerr.UnsupportedLogicalType, "%s on %s is shown as raw values",
			desc.LogicalString(), desc.PhysicalType).WithColumn(desc.Name)
	}
	return c
}

func (c *Converter) fromPhysical() {
	switch c.desc.PhysicalType {
	case metadata.Int96:
		c.conv = convInt96
	case metadata.ByteArray, metadata.FixedLenByteArray:
		c.conv = convBytes
	default:
		c.conv = convPassthrough
	}
}

func (c *Converter) fromLogical(lt *metadata.LogicalType) {
	pt := c.desc.PhysicalType
	switch lt.Kind {
	case metadata.LogicalString, metadata.LogicalEnum, metadata.LogicalJSON:
		if pt == metadata.ByteArray {
			c.conv = convString
		}
	case metadata.LogicalBSON:
		if pt == metadata.ByteArray || pt == metadata.FixedLenByteArray {
			c.conv = convBytes
		}
	case metadata.LogicalDate:
		if pt == metadata.Int32 {
			c.conv = convDate
		}
	case metadata.LogicalTimestamp:
		if pt == metadata.Int64 && lt.Unit.PerSecond() != 0 {
			c.conv, c.unit = convTimestamp, lt.Unit
		}
	case metadata.LogicalTime:
		switch {
		case pt == metadata.Int32 && lt.Unit == metadata.Millis:
			c.conv, c.unit = convTimeInt32, lt.Unit
		case pt == metadata.Int64 && (lt.Unit == metadata.Micros || lt.Unit == metadata.Nanos):
			c.conv, c.unit = convTimeInt64, lt.Unit
		}
	case metadata.LogicalInteger:
		c.integer(lt.Signed)
	case metadata.LogicalDecimal:
		c.scale = lt.Scale
		c.decimal()
	case metadata.LogicalUUID:
		if pt == metadata.FixedLenByteArray && c.desc.TypeLength == 16 {
			c.conv = convUUID
		}
	case metadata.LogicalFloat16:
		if pt == metadata.FixedLenByteArray && c.desc.TypeLength == 2 {
			c.conv = convFloat16
		}
	case metadata.LogicalUnknown:
		c.fromPhysical()
	}
}

func (c *Converter) fromConverted(ct metadata.ConvertedType) {
	pt := c.desc.PhysicalType
	switch ct {
	case metadata.ConvertedUTF8, metadata.ConvertedEnum, metadata.ConvertedJSON:
		if pt == metadata.ByteArray {
			c.conv = convString
		}
	case metadata.ConvertedBSON:
		if pt == metadata.ByteArray || pt == metadata.FixedLenByteArray {
			c.conv = convBytes
		}
	case metadata.ConvertedDate:
		if pt == metadata.Int32 {
			c.conv = convDate
		}
	case metadata.ConvertedTimestampMillis, metadata.ConvertedTimestampMicros:
		if pt == metadata.Int64 {
			c.conv, c.unit = convTimestamp, metadata.Millis
			if ct == metadata.ConvertedTimestampMicros {
				c.unit = metadata.Micros
			}
		}
	case metadata.ConvertedTimeMillis:
		if pt == metadata.Int32 {
			c.conv, c.unit = convTimeInt32, metadata.Millis
		}
	case metadata.ConvertedTimeMicros:
		if pt == metadata.Int64 {
			c.conv, c.unit = convTimeInt64, metadata.Micros
		}
	case metadata.ConvertedInt8, metadata.ConvertedInt16, metadata.ConvertedInt32, metadata.ConvertedInt64:
		c.integer(true)
	case metadata.ConvertedUint8, metadata.ConvertedUint16, metadata.ConvertedUint32, metadata.ConvertedUint64:
		c.integer(false)
	case metadata.ConvertedDecimal:
		c.decimal()
	}
}

func (c *Converter) integer(signed bool) {
	switch c.desc.PhysicalType {
	case metadata.Int32:
		c.conv = convPassthrough
		if !signed {
			c.conv = convUint32
		}
	case metadata.Int64:
		c.conv = convPassthrough
		if !signed {
			c.conv = convUint64
		}
	}
}

func (c *Converter) decimal() {
	switch c.desc.PhysicalType {
	case metadata.Int32, metadata.Int64:
		c.conv = convDecimalInt
	case metadata.ByteArray, metadata.FixedLenByteArray:
		c.conv = convDecimalBytes
	}
}

// Convert converts one cell. A non-nil error is an InvalidEncoding for this
// cell only; the returned value is then the raw physical value.
func (c *Converter) Convert(v column.Value) (Value, error) {
	if v.IsNull() {
		return Value{}, nil
	}
	switch c.conv {
	case convPassthrough:
		return passthrough(v), nil
	case convUint32:
		return NewUint(uint64(uint32(v.Int32()))), nil
	case convUint64:
		return NewUint(uint64(v.Int64())), nil
	case convString:
		b := v.ByteArray()
		if !utf8.Valid(b) {
			return NewRaw(v), c.invalid("string is not valid UTF-8")
		}
		return NewString(string(b)), nil
	case convBytes:
		return NewBytes(v.ByteArray()), nil
	case convDate:
		return NewDate(int64(v.Int32())), nil
	case convTimestamp:
		return NewTimestamp(c.unit, v.Int64()), nil
	case convTimeInt32:
		return NewTime(c.unit, int64(v.Int32())), nil
	case convTimeInt64:
		return NewTime(c.unit, v.Int64()), nil
	case convInt96:
		nanos, ok := Int96Nanos(v.ByteArray())
		if !ok {
			return NewRaw(v), c.invalid("INT96 timestamp out of range")
		}
		return NewTimestamp(metadata.Nanos, nanos), nil
	case convDecimalInt:
		n := v.Int64()
		if v.Type() == metadata.Int32 {
			n = int64(v.Int32())
		}
		return NewDecimal(decimal.New(n, -c.scale), c.scale), nil
	case convDecimalBytes:
		b := v.ByteArray()
		if len(b) == 0 {
			return NewRaw(v), c.invalid("empty decimal value")
		}
		return NewDecimal(decimal.NewFromBigInt(twosComplement(b), -c.scale), c.scale), nil
	case convUUID:
		id, err := uuid.FromBytes(v.ByteArray())
		if err != nil {
			return NewRaw(v), c.invalid("%v", err)
		}
		return NewUUID(id), nil
	case convFloat16:
		return NewFloat(Float16(v.ByteArray())), nil
	}
	return NewRaw(v), nil
}

func (c *Converter) invalid(format string, args ...any) error {
	return pqerr.New(pqerr.InvalidEncoding, format, args...).WithColumn(c.desc.Name)
}

// Convert converts v according to desc, falling back to Raw on any error.
// Use a Converter when converting many cells of one column.
func Convert(v column.Value, desc *metadata.ColumnDescriptor) Value {
	out, _ := NewConverter(desc).Convert(v)
	return out
}

func passthrough(v column.Value) Value {
	switch v.Type() {
	case metadata.Boolean:
		return NewBool(v.Bool())
	case metadata.Int32:
		return NewInt(int64(v.Int32()))
	case metadata.Int64:
		return NewInt(v.Int64())
	case metadata.Float:
		return NewFloat(v.Float())
	case metadata.Double:
		return NewDouble(v.Double())
	}
	return NewRaw(v)
}

// twosComplement decodes a big-endian two's complement integer.
func twosComplement(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return n
}
