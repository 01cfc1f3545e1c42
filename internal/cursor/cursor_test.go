package cursor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/pqerr"
)

func TestCursor_FixedReads(t *testing.T) {
	c := New([]byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f, 0xaa})

	v32, err := c.Uint32LE()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v32)

	v64, err := c.Uint64LE()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7fffffffffffffff), v64)

	peek, err := c.Peek(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, peek)
	assert.Equal(t, 1, c.Remaining())

	b, err := c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), b)
	assert.Equal(t, 0, c.Remaining())
}

func TestCursor_FailedReadKeepsPosition(t *testing.T) {
	c := New([]byte{1, 2, 3})
	require.NoError(t, c.Skip(1))

	tests := []struct {
		name string
		read func() error
	}{
		{"ReadFixed", func() error { _, err := c.ReadFixed(3); return err }},
		{"ReadBytes negative", func() error { _, err := c.ReadBytes(-1); return err }},
		{"Peek", func() error { _, err := c.Peek(5); return err }},
		{"Skip", func() error { return c.Skip(3) }},
		{"Uint32LE", func() error { _, err := c.Uint32LE(); return err }},
		{"Uint64LE", func() error { _, err := c.Uint64LE(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, pqerr.ErrTruncatedInput), "got %v", err)
			assert.Equal(t, 1, c.Pos())
		})
	}
}

func TestCursor_Varints(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		want   uint64
		zigzag int64
	}{
		{"zero", []byte{0x00}, 0, 0},
		{"one", []byte{0x01}, 1, -1},
		{"two", []byte{0x02}, 2, 1},
		{"300", []byte{0xac, 0x02}, 300, 150},
		{"max", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, ^uint64(0), -0x8000000000000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := New(tt.in).Uvarint()
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)

			z, err := New(tt.in).Zigzag()
			require.NoError(t, err)
			assert.Equal(t, tt.zigzag, z)
		})
	}
}

func TestCursor_VarintErrors(t *testing.T) {
	c := New([]byte{0x80, 0x80})
	_, err := c.Uvarint()
	assert.ErrorIs(t, err, pqerr.ErrTruncatedInput)
	assert.Equal(t, 0, c.Pos())

	c = New([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	_, err = c.Uvarint()
	assert.ErrorIs(t, err, ErrVarintOverflow)
	assert.Equal(t, 0, c.Pos())
}

func TestBitReader(t *testing.T) {
	// values 0..7 packed at width 3: 0b10001000, 0b11000110, 0b11111010
	r := NewBitReader([]byte{0x88, 0xc6, 0xfa})
	for want := uint64(0); want < 8; want++ {
		v, err := r.Read(3)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 3, r.BytesConsumed())

	_, err := r.Read(1)
	assert.ErrorIs(t, err, pqerr.ErrTruncatedInput)

	v, err := r.Read(0)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestBitReader_WideValues(t *testing.T) {
	r := NewBitReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	v, err := r.Read(64)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), v)
	v, err = r.Read(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	_, err = NewBitReader(nil).Read(65)
	assert.ErrorIs(t, err, pqerr.ErrCorruptColumnData)
}

func TestBitWidth(t *testing.T) {
	assert.Equal(t, uint(0), BitWidth(0))
	assert.Equal(t, uint(1), BitWidth(1))
	assert.Equal(t, uint(2), BitWidth(3))
	assert.Equal(t, uint(3), BitWidth(4))
	assert.Equal(t, uint(64), BitWidth(^uint64(0)))
}
