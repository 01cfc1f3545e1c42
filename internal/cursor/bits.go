package cursor

import "github.com/vegasq/pqview/pqerr"

// BitReader reads LSB-first bit-packed unsigned integers, the packing used
// by Parquet for levels, dictionary indices and booleans.
type BitReader struct {
	buf []byte
	bit int // absolute bit offset
}

// NewBitReader returns a BitReader over buf.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// Read reads one value of the given width in bits (0..64). A failed read
// leaves the reader unchanged.
func (r *BitReader) Read(width uint) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if width > 64 {
		return 0, pqerr.New(pqerr.CorruptColumnData, "bit width %d exceeds 64", width)
	}
	if r.bit+int(width) > len(r.buf)*8 {
		return 0, pqerr.New(pqerr.TruncatedInput, "need %d bits at bit offset %d of %d", width, r.bit, len(r.buf)*8)
	}
	var (
		v    uint64
		got  uint
		bit  = r.bit
		need = width
	)
	for need > 0 {
		b := r.buf[bit/8]
		off := uint(bit % 8)
		take := 8 - off
		if take > need {
			take = need
		}
		chunk := uint64(b>>off) & (1<<take - 1)
		v |= chunk << got
		got += take
		need -= take
		bit += int(take)
	}
	r.bit = bit
	return v, nil
}

// BytesConsumed returns the number of whole bytes touched so far.
func (r *BitReader) BytesConsumed() int {
	return (r.bit + 7) / 8
}

// BitWidth returns the number of bits needed to represent max.
func BitWidth(max uint64) uint {
	var w uint
	for max != 0 {
		w++
		max >>= 1
	}
	return w
}
