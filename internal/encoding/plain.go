package encoding

import (
	"encoding/binary"
	"math"

	"github.com/vegasq/pqview/internal/cursor"
	"github.com/vegasq/pqview/metadata"
)

// DecodePlain decodes count PLAIN-encoded values of type t into dst and
// returns the number of bytes consumed. typeLength is used only for
// FIXED_LEN_BYTE_ARRAY.
func DecodePlain(dst *Values, src []byte, t metadata.Type, typeLength int, count int) (int, error) {
	if count < 0 {
		return 0, corrupt("negative value count %d", count)
	}
	switch t {
	case metadata.Boolean:
		need := (count + 7) / 8
		if need > len(src) {
			return 0, corrupt("%d PLAIN booleans need %d bytes, %d available", count, need, len(src))
		}
		for i := 0; i < count; i++ {
			dst.Bools = append(dst.Bools, src[i/8]>>(i%8)&1 == 1)
		}
		return need, nil

	case metadata.ByteArray:
		// Every value carries at least its 4-byte length.
		if count > len(src)/4 {
			return 0, corrupt("%d PLAIN byte arrays cannot fit in %d bytes", count, len(src))
		}
		c := cursor.New(src)
		for i := 0; i < count; i++ {
			n, err := c.Uint32LE()
			if err != nil {
				return c.Pos(), corruptWrap(err, "byte array %d length", i)
			}
			if uint64(n) > uint64(c.Remaining()) {
				return c.Pos(), corrupt("byte array %d has length %d, %d bytes remaining", i, n, c.Remaining())
			}
			b, _ := c.ReadBytes(int(n))
			dst.Bytes = append(dst.Bytes, b)
		}
		return c.Pos(), nil
	}

	width := Width(t, typeLength)
	if width <= 0 {
		return 0, corrupt("cannot PLAIN-decode type %s with length %d", t, typeLength)
	}
	if count > len(src)/width {
		return 0, corrupt("%d PLAIN %s values need %d bytes, %d available", count, t, count*width, len(src))
	}
	for i := 0; i < count; i++ {
		b := src[i*width : (i+1)*width : (i+1)*width]
		switch t {
		case metadata.Int32:
			dst.Int32 = append(dst.Int32, int32(binary.LittleEndian.Uint32(b)))
		case metadata.Int64:
			dst.Int64 = append(dst.Int64, int64(binary.LittleEndian.Uint64(b)))
		case metadata.Float:
			dst.Float = append(dst.Float, math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case metadata.Double:
			dst.Double = append(dst.Double, math.Float64frombits(binary.LittleEndian.Uint64(b)))
		default:
			dst.Bytes = append(dst.Bytes, b)
		}
	}
	return count * width, nil
}

// DecodeRLEBooleans decodes the RLE boolean encoding: a 4-byte length
// followed by hybrid-encoded values of bit width 1.
func DecodeRLEBooleans(dst *Values, src []byte, count int) error {
	c := cursor.New(src)
	n, err := c.Uint32LE()
	if err != nil {
		return corruptWrap(err, "RLE boolean length")
	}
	body, err := c.ReadBytes(int(n))
	if err != nil {
		return corruptWrap(err, "RLE boolean body")
	}
	bits, _, err := DecodeHybrid(make([]int32, 0, count), body, 1, count)
	if err != nil {
		return err
	}
	for _, b := range bits {
		dst.Bools = append(dst.Bools, b == 1)
	}
	return nil
}
