package encoding

import (
	"encoding/binary"
	"math"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

// packLSB packs values LSB first, the order used by the hybrid encoding.
func packLSB(vals []uint64, width int) []byte {
	out := make([]byte, (len(vals)*width+7)/8)
	bit := 0
	for _, v := range vals {
		for j := 0; j < width; j++ {
			if v>>j&1 == 1 {
				out[bit/8] |= 1 << (bit % 8)
			}
			bit++
		}
	}
	return out
}

// deltaEncode writes vals as DELTA_BINARY_PACKED with blocks of 128 values
// in four miniblocks.
func deltaEncode(vals []int64) []byte {
	out := binary.AppendUvarint(nil, 128)
	out = binary.AppendUvarint(out, 4)
	out = binary.AppendUvarint(out, uint64(len(vals)))
	if len(vals) == 0 {
		return binary.AppendVarint(out, 0)
	}
	out = binary.AppendVarint(out, vals[0])

	deltas := make([]int64, 0, len(vals))
	for i := 1; i < len(vals); i++ {
		deltas = append(deltas, vals[i]-vals[i-1])
	}
	for len(deltas) > 0 {
		block := deltas[:min(128, len(deltas))]
		deltas = deltas[len(block):]
		minDelta := block[0]
		for _, d := range block {
			minDelta = min(minDelta, d)
		}
		out = binary.AppendVarint(out, minDelta)
		var minis [][]uint64
		for i := 0; i < len(block); i += 32 {
			m := make([]uint64, 32)
			for j := i; j < min(i+32, len(block)); j++ {
				m[j-i] = uint64(block[j] - minDelta)
			}
			minis = append(minis, m)
		}
		widths := make([]int, 4)
		for i, m := range minis {
			for _, v := range m {
				widths[i] = max(widths[i], bits.Len64(v))
			}
		}
		for _, w := range widths {
			out = append(out, byte(w))
		}
		for i, m := range minis {
			out = append(out, packLSB(m, widths[i])...)
		}
	}
	return out
}

func deltaLengthEncode(vals []string) []byte {
	lengths := make([]int64, len(vals))
	for i, v := range vals {
		lengths[i] = int64(len(v))
	}
	out := deltaEncode(lengths)
	for _, v := range vals {
		out = append(out, v...)
	}
	return out
}

func TestDecodeHybrid(t *testing.T) {
	tests := []struct {
		name     string
		in       []byte
		width    int
		count    int
		want     []int32
		consumed int
	}{
		{
			name:     "bit-packed group",
			in:       []byte{0x03, 0x88, 0xc6, 0xfa},
			width:    3,
			count:    8,
			want:     []int32{0, 1, 2, 3, 4, 5, 6, 7},
			consumed: 4,
		},
		{
			name:     "rle then bit-packed",
			in:       []byte{0x0a, 0x02, 0x03, 0x88, 0xc6, 0xfa},
			width:    3,
			count:    13,
			want:     []int32{2, 2, 2, 2, 2, 0, 1, 2, 3, 4, 5, 6, 7},
			consumed: 6,
		},
		{
			name:     "stops inside a run",
			in:       []byte{0x0a, 0x01},
			width:    1,
			count:    3,
			want:     []int32{1, 1, 1},
			consumed: 2,
		},
		{
			name:     "short final group",
			in:       []byte{0x03, 0x88, 0xc6},
			width:    3,
			count:    3,
			want:     []int32{0, 1, 2},
			consumed: 3,
		},
		{
			name:     "two byte rle value",
			in:       []byte{0x04, 0x34, 0x12},
			width:    13,
			count:    2,
			want:     []int32{0x1234, 0x1234},
			consumed: 3,
		},
		{
			name:  "zero width",
			in:    []byte{0x14},
			width: 0,
			count: 10,
			want:  []int32{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:  "zero width without runs",
			width: 0,
			count: 2,
			want:  []int32{0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeHybrid(nil, tt.in, tt.width, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.consumed > 0 {
				assert.Equal(t, tt.consumed, n)
			}
		})
	}
}

func TestDecodeHybrid_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		width int
		count int
	}{
		{"not enough values", []byte{0x04, 0x01}, 1, 3},
		{"truncated bit-packed run", []byte{0x03, 0x88}, 3, 8},
		{"huge group count", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 8, 8},
		{"rle value too wide", []byte{0x02, 0x05}, 2, 1},
		{"empty rle run", []byte{0x00, 0x01}, 1, 1},
		{"width too large", []byte{0x02, 0, 0, 0, 0, 0}, 33, 1},
		{"missing header", nil, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeHybrid(nil, tt.in, tt.width, tt.count)
			require.Error(t, err)
			assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
		})
	}
}

func TestDecodeBitPacked(t *testing.T) {
	got, n, err := DecodeBitPacked(nil, []byte{0x05, 0x39, 0x77}, 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, got)
	assert.Equal(t, 3, n)

	_, _, err = DecodeBitPacked(nil, []byte{0x05}, 3, 8)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}

func TestDecodeDictionaryIndices(t *testing.T) {
	got, err := DecodeDictionaryIndices(nil, []byte{0x02, 0x06, 0x03}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 3, 3}, got)

	_, err = DecodeDictionaryIndices(nil, nil, 1)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}

func TestDecodePlain(t *testing.T) {
	le32 := func(vs ...uint32) []byte {
		var out []byte
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint32(out, v)
		}
		return out
	}
	le64 := func(vs ...uint64) []byte {
		var out []byte
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint64(out, v)
		}
		return out
	}

	t.Run("boolean", func(t *testing.T) {
		v := Values{Type: metadata.Boolean}
		n, err := DecodePlain(&v, []byte{0b0000_0101, 0b1}, metadata.Boolean, 0, 9)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []bool{true, false, true, false, false, false, false, false, true}, v.Bools)
	})
	t.Run("int32", func(t *testing.T) {
		v := Values{Type: metadata.Int32}
		_, err := DecodePlain(&v, le32(1, math.MaxUint32), metadata.Int32, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []int32{1, -1}, v.Int32)
	})
	t.Run("int64", func(t *testing.T) {
		v := Values{Type: metadata.Int64}
		_, err := DecodePlain(&v, le64(1<<40), metadata.Int64, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{1 << 40}, v.Int64)
	})
	t.Run("float and double", func(t *testing.T) {
		f := Values{Type: metadata.Float}
		_, err := DecodePlain(&f, le32(math.Float32bits(1.5)), metadata.Float, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, []float32{1.5}, f.Float)

		d := Values{Type: metadata.Double}
		_, err = DecodePlain(&d, le64(math.Float64bits(-2.25)), metadata.Double, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, []float64{-2.25}, d.Double)
	})
	t.Run("byte array", func(t *testing.T) {
		in := append(le32(3), "abc"...)
		in = append(in, le32(0)...)
		in = append(in, le32(6)...)
		in = append(in, "名前"...)
		v := Values{Type: metadata.ByteArray}
		n, err := DecodePlain(&v, in, metadata.ByteArray, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, len(in), n)
		require.Len(t, v.Bytes, 3)
		assert.Equal(t, "abc", string(v.Bytes[0]))
		assert.Empty(t, v.Bytes[1])
		assert.Equal(t, "名前", string(v.Bytes[2]))
	})
	t.Run("fixed and int96", func(t *testing.T) {
		v := Values{Type: metadata.FixedLenByteArray}
		_, err := DecodePlain(&v, []byte("abcdef"), metadata.FixedLenByteArray, 3, 2)
		require.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("abc"), []byte("def")}, v.Bytes)

		w := Values{Type: metadata.Int96}
		_, err = DecodePlain(&w, make([]byte, 24), metadata.Int96, 0, 2)
		require.NoError(t, err)
		assert.Len(t, w.Bytes, 2)
	})
}

func TestDecodePlain_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		typ   metadata.Type
		count int
	}{
		{"short int32", []byte{1, 2, 3}, metadata.Int32, 1},
		{"short booleans", []byte{1}, metadata.Boolean, 9},
		{"byte array length past end", []byte{9, 0, 0, 0, 'a'}, metadata.ByteArray, 1},
		{"too many byte arrays", []byte{0, 0, 0, 0}, metadata.ByteArray, 2},
		{"huge count", []byte{0}, metadata.Double, 1 << 40},
		{"zero length fixed", []byte{0}, metadata.FixedLenByteArray, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Values{Type: tt.typ}
			_, err := DecodePlain(&v, tt.in, tt.typ, 0, tt.count)
			assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
		})
	}
}

func TestDecodeRLEBooleans(t *testing.T) {
	body := []byte{0x06, 0x01, 0x03, 0x05}
	in := binary.LittleEndian.AppendUint32(nil, uint32(len(body)))
	in = append(in, body...)

	v := Values{Type: metadata.Boolean}
	require.NoError(t, DecodeRLEBooleans(&v, in, 5))
	assert.Equal(t, []bool{true, true, true, true, false}, v.Bools)
}

func TestDecodeDeltaBinaryPacked(t *testing.T) {
	tests := []struct {
		name string
		vals []int64
	}{
		{"single value", []int64{42}},
		{"ascending", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"mixed", []int64{7, -3, 1000, 1000, -99999, 5, 0}},
		{"extremes", []int64{math.MinInt64, math.MaxInt64, 0, math.MinInt64}},
		{"several blocks", func() []int64 {
			vs := make([]int64, 300)
			for i := range vs {
				vs[i] = int64(i*i) - 5000
			}
			return vs
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := deltaEncode(tt.vals)
			got, n, err := DecodeDeltaBinaryPacked(in, len(tt.vals))
			require.NoError(t, err)
			assert.Equal(t, tt.vals, got)
			assert.Equal(t, len(in), n)
		})
	}
}

func TestDecodeDeltaBinaryPacked_Errors(t *testing.T) {
	valid := deltaEncode([]int64{1, 5, 9, 200})
	tests := []struct {
		name  string
		in    []byte
		count int
	}{
		{"count mismatch", valid, 3},
		// One byte of the only miniblock is left; three 8-bit deltas need three.
		{"truncated", valid[:len(valid)-31], 4},
		{"bad block size", []byte{0x64, 0x04, 0x01, 0x00}, 1},
		{"bad miniblock count", []byte{0x80, 0x01, 0x03, 0x01, 0x00}, 1},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDeltaBinaryPacked(tt.in, tt.count)
			assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
		})
	}
}

func TestDecodeDeltaInts(t *testing.T) {
	v := Values{Type: metadata.Int32}
	_, err := DecodeDeltaInts(&v, deltaEncode([]int64{-1, 2, math.MaxInt32}), 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 2, math.MaxInt32}, v.Int32)
}

func TestDecodeDeltaLengthByteArray(t *testing.T) {
	vals := []string{"Hello", "World", "", "ユーザー"}
	in := deltaLengthEncode(vals)
	v := Values{Type: metadata.ByteArray}
	n, err := DecodeDeltaLengthByteArray(&v, in, len(vals))
	require.NoError(t, err)
	assert.Equal(t, len(in), n)
	require.Len(t, v.Bytes, 4)
	for i, s := range vals {
		assert.Equal(t, s, string(v.Bytes[i]))
	}

	_, err = DecodeDeltaLengthByteArray(&Values{}, in[:len(in)-1], len(vals))
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}

func TestDecodeDeltaByteArray(t *testing.T) {
	// axis, axle, babble, babyhood
	in := deltaEncode([]int64{0, 2, 0, 3})
	in = append(in, deltaLengthEncode([]string{"axis", "le", "babble", "yhood"})...)

	v := Values{Type: metadata.ByteArray}
	n, err := DecodeDeltaByteArray(&v, in, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, len(in), n)
	var got []string
	for _, b := range v.Bytes {
		got = append(got, string(b))
	}
	assert.Equal(t, []string{"axis", "axle", "babble", "babyhood"}, got)

	bad := deltaEncode([]int64{3})
	bad = append(bad, deltaLengthEncode([]string{"x"})...)
	_, err = DecodeDeltaByteArray(&Values{}, bad, 1, 0)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)

	_, err = DecodeDeltaByteArray(&Values{}, in, 4, 4)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}

func TestDecodeByteStreamSplit(t *testing.T) {
	a, b := math.Float32bits(1.5), math.Float32bits(-7.25)
	var in []byte
	for k := 0; k < 4; k++ {
		in = append(in, byte(a>>(8*k)), byte(b>>(8*k)))
	}
	v := Values{Type: metadata.Float}
	n, err := DecodeByteStreamSplit(&v, in, metadata.Float, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []float32{1.5, -7.25}, v.Float)

	_, err = DecodeByteStreamSplit(&Values{}, in, metadata.ByteArray, 0, 2)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
	_, err = DecodeByteStreamSplit(&Values{}, in[:7], metadata.Float, 0, 2)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}
