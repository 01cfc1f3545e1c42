// Package cursor provides bounds-checked reads over an immutable byte slice.
//
// A Cursor never reads outside its buffer. Reads that would run past the end
// fail with a pqerr.TruncatedInput error and leave the position unchanged, so
// callers can parse linearly without backtracking.
package cursor

import (
	"encoding/binary"
	"errors"

	"github.com/vegasq/pqview/pqerr"
)

// MaxVarintLen is the longest valid encoding of a 64-bit varint.
const MaxVarintLen = binary.MaxVarintLen64

// ErrVarintOverflow is returned when a varint does not terminate within
// MaxVarintLen bytes or overflows 64 bits.
var ErrVarintOverflow = errors.New("varint overflows 64 bits")

// Cursor reads from a byte slice, tracking a position.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a Cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Rest returns the unread bytes without advancing.
func (c *Cursor) Rest() []byte { return c.buf[c.pos:] }

func (c *Cursor) check(width int) error {
	if width < 0 || width > len(c.buf)-c.pos {
		return pqerr.New(pqerr.TruncatedInput, "need %d bytes at offset %d, %d remaining", width, c.pos, len(c.buf)-c.pos)
	}
	return nil
}

// ReadFixed returns the next width bytes and advances past them. The
// returned slice aliases the buffer.
func (c *Cursor) ReadFixed(width int) ([]byte, error) {
	if err := c.check(width); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+width : c.pos+width]
	c.pos += width
	return b, nil
}

// ReadBytes is ReadFixed for a length known only at runtime, such as a
// length prefix read from the input. Negative lengths are rejected.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.ReadFixed(n)
}

// Peek returns the next width bytes without advancing.
func (c *Cursor) Peek(width int) ([]byte, error) {
	if err := c.check(width); err != nil {
		return nil, err
	}
	return c.buf[c.pos : c.pos+width : c.pos+width], nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.check(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.check(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Uint32LE reads a little-endian uint32.
func (c *Cursor) Uint32LE() (uint32, error) {
	b, err := c.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64LE reads a little-endian uint64.
func (c *Cursor) Uint64LE() (uint64, error) {
	b, err := c.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Uvarint reads an unsigned LEB128 varint.
func (c *Cursor) Uvarint() (uint64, error) {
	var (
		x     uint64
		shift uint
	)
	for i := 0; i < MaxVarintLen; i++ {
		if c.pos+i >= len(c.buf) {
			return 0, pqerr.New(pqerr.TruncatedInput, "varint at offset %d runs past end of input", c.pos)
		}
		b := c.buf[c.pos+i]
		if i == MaxVarintLen-1 && b > 1 {
			return 0, ErrVarintOverflow
		}
		x |= uint64(b&0x7f) << shift
		if b < 0x80 {
			c.pos += i + 1
			return x, nil
		}
		shift += 7
	}
	return 0, ErrVarintOverflow
}

// Zigzag reads a zigzag-encoded signed varint.
func (c *Cursor) Zigzag() (int64, error) {
	u, err := c.Uvarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}
