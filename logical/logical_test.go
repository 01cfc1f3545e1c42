package logical_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/internal/column"
	"github.com/vegasq/pqview/logical"
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		unit metadata.TimeUnit
		v    int64
		want string
	}{
		{metadata.Nanos, 0, "1970-01-01 00:00:00.000000000"},
		{metadata.Micros, 0, "1970-01-01 00:00:00.000000"},
		{metadata.Millis, 0, "1970-01-01 00:00:00.000"},
		{metadata.Seconds, 0, "1970-01-01 00:00:00"},
		{metadata.Seconds, 86400, "1970-01-02 00:00:00"},
		{metadata.Millis, -1, "1969-12-31 23:59:59.999"},
		{metadata.Nanos, -1, "1969-12-31 23:59:59.999999999"},
		{metadata.Micros, 1_700_000_000_123_456, "2023-11-14 22:13:20.123456"},
		{metadata.Millis, 1_700_000_000_007, "2023-11-14 22:13:20.007"},
		{metadata.Nanos, 1_700_000_000_000_000_001, "2023-11-14 22:13:20.000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, logical.FormatTimestamp(tt.unit, tt.v))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "1970-01-01", logical.FormatDate(0))
	assert.Equal(t, "2022-01-08", logical.FormatDate(19000))
	assert.Equal(t, "1969-12-31", logical.FormatDate(-1))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "12:34:56.789", logical.FormatTime(metadata.Millis, 45296789))
	assert.Equal(t, "12:34:56.789012", logical.FormatTime(metadata.Micros, 45296789012))
	assert.Equal(t, "00:00:00.000000001", logical.FormatTime(metadata.Nanos, 1))
	assert.Equal(t, "01:01:01", logical.FormatTime(metadata.Seconds, 3661))
	assert.Equal(t, "23:59:59.999", logical.FormatTime(metadata.Millis, 86399999))
}

func TestInt96Nanos(t *testing.T) {
	int96 := func(day uint32, nanos uint64) []byte {
		b := make([]byte, 12)
		for i := 0; i < 8; i++ {
			b[i] = byte(nanos >> (8 * i))
		}
		for i := 0; i < 4; i++ {
			b[8+i] = byte(day >> (8 * i))
		}
		return b
	}

	n, ok := logical.Int96Nanos(int96(2440588, 0))
	require.True(t, ok)
	assert.Equal(t, int64(0), n)

	n, ok = logical.Int96Nanos(int96(2440589, 1))
	require.True(t, ok)
	assert.Equal(t, int64(86400e9+1), n)

	n, ok = logical.Int96Nanos(int96(2440587, 0))
	require.True(t, ok)
	assert.Equal(t, int64(-86400e9), n)

	_, ok = logical.Int96Nanos(int96(math.MaxUint32, 0))
	assert.False(t, ok)
	_, ok = logical.Int96Nanos([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestFloat16(t *testing.T) {
	tests := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3c00, 1},
		{0xc000, -2},
		{0x3555, 0.333251953125},
		{0x7bff, 65504},
		{0x0001, 1.0 / (1 << 24)},
		{0x7c00, float32(math.Inf(1))},
		{0xfc00, float32(math.Inf(-1))},
	}
	for _, tt := range tests {
		got := logical.Float16([]byte{byte(tt.bits), byte(tt.bits >> 8)})
		assert.Equal(t, tt.want, got, "bits %#04x", tt.bits)
	}
	assert.True(t, math.IsNaN(float64(logical.Float16([]byte{0x00, 0x7e}))))
}

func desc(pt metadata.Type, lt *metadata.LogicalType, ct metadata.ConvertedType) *metadata.ColumnDescriptor {
	return &metadata.ColumnDescriptor{Name: "c", PhysicalType: pt, LogicalType: lt, ConvertedType: ct}
}

func TestConvert(t *testing.T) {
	none := metadata.NoConvertedType
	ts := func(u metadata.TimeUnit) *metadata.LogicalType {
		return &metadata.LogicalType{Kind: metadata.LogicalTimestamp, Unit: u, AdjustedToUTC: true}
	}
	uuidDesc := desc(metadata.FixedLenByteArray, &metadata.LogicalType{Kind: metadata.LogicalUUID}, none)
	uuidDesc.TypeLength = 16
	f16Desc := desc(metadata.FixedLenByteArray, &metadata.LogicalType{Kind: metadata.LogicalFloat16}, none)
	f16Desc.TypeLength = 2
	decBytes := desc(metadata.FixedLenByteArray, &metadata.LogicalType{Kind: metadata.LogicalDecimal, Precision: 5, Scale: 2}, none)
	decLegacy := desc(metadata.Int64, nil, metadata.ConvertedDecimal)
	decLegacy.Precision, decLegacy.Scale = 10, 3

	tests := []struct {
		name string
		desc *metadata.ColumnDescriptor
		in   column.Value
		kind logical.Kind
		want string
	}{
		{"null", desc(metadata.Int64, nil, none), column.Null(metadata.Int64), logical.Null, "NULL"},
		{"bool", desc(metadata.Boolean, nil, none), column.BoolValue(true), logical.Bool, "true"},
		{"int32", desc(metadata.Int32, nil, none), column.Int32Value(-7), logical.Int, "-7"},
		{"int64", desc(metadata.Int64, nil, none), column.Int64Value(math.MaxInt64), logical.Int, "9223372036854775807"},
		{"float", desc(metadata.Float, nil, none), column.FloatValue(1.5), logical.Float, "1.5"},
		{"double", desc(metadata.Double, nil, none), column.DoubleValue(0.1), logical.Float, "0.1"},
		{"bytes", desc(metadata.ByteArray, nil, none), column.BytesValue(metadata.ByteArray, []byte{0xde, 0xad}), logical.Bytes, "0xdead"},
		{"string", desc(metadata.ByteArray, &metadata.LogicalType{Kind: metadata.LogicalString}, none),
			column.BytesValue(metadata.ByteArray, []byte("こんにちは")), logical.String, "こんにちは"},
		{"utf8", desc(metadata.ByteArray, nil, metadata.ConvertedUTF8),
			column.BytesValue(metadata.ByteArray, []byte("abc")), logical.String, "abc"},
		{"enum", desc(metadata.ByteArray, &metadata.LogicalType{Kind: metadata.LogicalEnum}, none),
			column.BytesValue(metadata.ByteArray, []byte("RED")), logical.String, "RED"},
		{"json", desc(metadata.ByteArray, nil, metadata.ConvertedJSON),
			column.BytesValue(metadata.ByteArray, []byte(`{"a":1}`)), logical.String, `{"a":1}`},
		{"bson", desc(metadata.ByteArray, &metadata.LogicalType{Kind: metadata.LogicalBSON}, none),
			column.BytesValue(metadata.ByteArray, []byte{5, 0}), logical.Bytes, "0x0500"},
		{"date", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalDate}, none),
			column.Int32Value(19000), logical.Date, "2022-01-08"},
		{"date converted", desc(metadata.Int32, nil, metadata.ConvertedDate),
			column.Int32Value(0), logical.Date, "1970-01-01"},
		{"timestamp nanos", desc(metadata.Int64, ts(metadata.Nanos), none),
			column.Int64Value(0), logical.Timestamp, "1970-01-01 00:00:00.000000000"},
		{"timestamp micros", desc(metadata.Int64, ts(metadata.Micros), none),
			column.Int64Value(1_700_000_000_123_456), logical.Timestamp, "2023-11-14 22:13:20.123456"},
		{"timestamp millis", desc(metadata.Int64, ts(metadata.Millis), none),
			column.Int64Value(1_700_000_000_123), logical.Timestamp, "2023-11-14 22:13:20.123"},
		{"timestamp_millis converted", desc(metadata.Int64, nil, metadata.ConvertedTimestampMillis),
			column.Int64Value(1000), logical.Timestamp, "1970-01-01 00:00:01.000"},
		{"timestamp_micros converted", desc(metadata.Int64, nil, metadata.ConvertedTimestampMicros),
			column.Int64Value(1), logical.Timestamp, "1970-01-01 00:00:00.000001"},
		{"int96", desc(metadata.Int96, nil, none),
			column.BytesValue(metadata.Int96, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0x8d, 0x3d, 0x25, 0}),
			logical.Timestamp, "1970-01-02 00:00:00.000000001"},
		{"time millis", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalTime, Unit: metadata.Millis}, none),
			column.Int32Value(45296789), logical.Time, "12:34:56.789"},
		{"time nanos", desc(metadata.Int64, &metadata.LogicalType{Kind: metadata.LogicalTime, Unit: metadata.Nanos}, none),
			column.Int64Value(1), logical.Time, "00:00:00.000000001"},
		{"time_micros converted", desc(metadata.Int64, nil, metadata.ConvertedTimeMicros),
			column.Int64Value(1_000_000), logical.Time, "00:00:01.000000"},
		{"int8", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalInteger, BitWidth: 8, Signed: true}, none),
			column.Int32Value(-128), logical.Int, "-128"},
		{"uint32", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalInteger, BitWidth: 32}, none),
			column.Int32Value(-1), logical.Uint, "4294967295"},
		{"uint64 converted", desc(metadata.Int64, nil, metadata.ConvertedUint64),
			column.Int64Value(-1), logical.Uint, "18446744073709551615"},
		{"uint8 converted", desc(metadata.Int32, nil, metadata.ConvertedUint8),
			column.Int32Value(255), logical.Uint, "255"},
		{"decimal int32", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalDecimal, Precision: 5, Scale: 2}, none),
			column.Int32Value(150), logical.Decimal, "1.50"},
		{"decimal legacy", decLegacy, column.Int64Value(-12345), logical.Decimal, "-12.345"},
		{"decimal bytes negative", decBytes,
			column.BytesValue(metadata.FixedLenByteArray, []byte{0xff, 0x85}), logical.Decimal, "-1.23"},
		{"decimal bytes positive", decBytes,
			column.BytesValue(metadata.FixedLenByteArray, []byte{0x00, 0x00, 0x7b}), logical.Decimal, "1.23"},
		{"uuid", uuidDesc, column.BytesValue(metadata.FixedLenByteArray, []byte{
			0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00,
		}), logical.UUID, "123e4567-e89b-12d3-a456-426614174000"},
		{"float16", f16Desc, column.BytesValue(metadata.FixedLenByteArray, []byte{0x00, 0x3c}), logical.Float, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := logical.NewConverter(tt.desc)
			require.Nil(t, c.Unsupported)
			got, err := c.Convert(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.want, logical.Convert(tt.in, tt.desc).String())
		})
	}
}

func TestConvertUnsupported(t *testing.T) {
	tests := []struct {
		name string
		desc *metadata.ColumnDescriptor
		in   column.Value
		want string
	}{
		{"interval", desc(metadata.FixedLenByteArray, nil, metadata.ConvertedInterval),
			column.BytesValue(metadata.FixedLenByteArray, []byte{1, 0, 0, 0}), "0x01000000"},
		{"string on int32", desc(metadata.Int32, &metadata.LogicalType{Kind: metadata.LogicalString}, metadata.NoConvertedType),
			column.Int32Value(3), "3"},
		{"unknown union member", desc(metadata.ByteArray, &metadata.LogicalType{Kind: metadata.LogicalOther}, metadata.NoConvertedType),
			column.BytesValue(metadata.ByteArray, []byte{0xab}), "0xab"},
		{"uuid wrong length", desc(metadata.FixedLenByteArray, &metadata.LogicalType{Kind: metadata.LogicalUUID}, metadata.NoConvertedType),
			column.BytesValue(metadata.FixedLenByteArray, []byte{1}), "0x01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := logical.NewConverter(tt.desc)
			require.NotNil(t, c.Unsupported)
			assert.Equal(t, pqerr.UnsupportedLogicalType, c.Unsupported.Kind)
			assert.Equal(t, "c", c.Unsupported.Column)

			got, err := c.Convert(tt.in)
			require.NoError(t, err)
			assert.Equal(t, logical.Raw, got.Kind())
			assert.Equal(t, tt.want, got.String())

			null, err := c.Convert(column.Null(tt.desc.PhysicalType))
			require.NoError(t, err)
			assert.True(t, null.IsNull())
		})
	}
}

func TestConvertInvalidEncoding(t *testing.T) {
	c := logical.NewConverter(desc(metadata.ByteArray, &metadata.LogicalType{Kind: metadata.LogicalString}, metadata.NoConvertedType))
	got, err := c.Convert(column.BytesValue(metadata.ByteArray, []byte{0xff, 0xfe}))
	require.Error(t, err)
	assert.ErrorIs(t, err, pqerr.ErrInvalidEncoding)
	assert.Equal(t, logical.Raw, got.Kind())
	assert.Equal(t, "0xfffe", got.String())

	ok, err := c.Convert(column.BytesValue(metadata.ByteArray, []byte("fine")))
	require.NoError(t, err)
	assert.Equal(t, "fine", ok.String())
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name string
		v    logical.Value
		want string
	}{
		{"null", logical.NullValue(), `null`},
		{"bool", logical.NewBool(false), `false`},
		{"int", logical.NewInt(math.MinInt64), `-9223372036854775808`},
		{"uint", logical.NewUint(math.MaxUint64), `18446744073709551615`},
		{"float", logical.NewDouble(2.5), `2.5`},
		{"float32", logical.NewFloat(0.1), `0.1`},
		{"nan", logical.NewDouble(math.NaN()), `"NaN"`},
		{"inf", logical.NewDouble(math.Inf(-1)), `"-Infinity"`},
		{"string", logical.NewString("a\"b\n名"), `"a\"b\n名"`},
		{"bytes", logical.NewBytes([]byte{1, 2}), `"0x0102"`},
		{"date", logical.NewDate(0), `"1970-01-01"`},
		{"timestamp", logical.NewTimestamp(metadata.Millis, 0), `"1970-01-01 00:00:00.000"`},
		{"list", logical.NewList([]logical.Value{logical.NewInt(1), logical.NullValue(), logical.NewString("x")}), `[1,null,"x"]`},
		{"empty list", logical.NewList(nil), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.v.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestListString(t *testing.T) {
	v := logical.NewList([]logical.Value{logical.NewInt(1), logical.NewInt(2), logical.NullValue()})
	assert.Equal(t, "[1, 2, NULL]", v.String())
	assert.True(t, v.IsList())
	assert.Equal(t, "[]", logical.NewList(nil).String())
	assert.False(t, logical.NewRaw(column.Int32Value(1)).IsList())
}
