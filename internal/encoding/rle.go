package encoding

import (
	"github.com/vegasq/pqview/internal/cursor"
)

// MaxHybridBitWidth is the widest value the RLE/bit-packed hybrid encoding
// carries: levels and dictionary indices are at most 32 bits.
const MaxHybridBitWidth = 32

// DecodeHybrid decodes exactly count values of the RLE/bit-packed hybrid
// encoding from src, appending them to dst. It returns the extended slice
// and the number of bytes of src consumed.
//
// A bit-packed run whose final group is cut short is accepted as long as
// it holds the values still needed.
func DecodeHybrid(dst []int32, src []byte, bitWidth int, count int) ([]int32, int, error) {
	if bitWidth < 0 || bitWidth > MaxHybridBitWidth {
		return dst, 0, corrupt("hybrid bit width %d out of range", bitWidth)
	}
	if count < 0 {
		return dst, 0, corrupt("negative value count %d", count)
	}
	if bitWidth == 0 {
		// Every value is zero. Run headers carry no information, and some
		// writers omit them.
		for i := 0; i < count; i++ {
			dst = append(dst, 0)
		}
		return dst, skipZeroWidthRuns(src, count), nil
	}

	c := cursor.New(src)
	byteWidth := (bitWidth + 7) / 8
	want := len(dst) + count
	for len(dst) < want {
		header, err := c.Uvarint()
		if err != nil {
			return dst, c.Pos(), corruptWrap(err, "reading run header")
		}
		left := want - len(dst)
		if header&1 == 0 {
			run := header >> 1
			if run == 0 {
				return dst, c.Pos(), corrupt("empty RLE run")
			}
			raw, err := c.ReadFixed(byteWidth)
			if err != nil {
				return dst, c.Pos(), corruptWrap(err, "reading RLE run value")
			}
			var v uint32
			for i, b := range raw {
				v |= uint32(b) << (8 * i)
			}
			if bitWidth < 32 && v >= 1<<bitWidth {
				return dst, c.Pos(), corrupt("RLE value %d exceeds bit width %d", v, bitWidth)
			}
			n := left
			if run < uint64(n) {
				n = int(run)
			}
			for i := 0; i < n; i++ {
				dst = append(dst, int32(v))
			}
			continue
		}

		groups := header >> 1
		if groups == 0 {
			return dst, c.Pos(), corrupt("empty bit-packed run")
		}
		if groups > uint64(c.Remaining()) {
			// Clamped so the multiplication below cannot overflow; the byte
			// check catches the short run.
			groups = uint64(c.Remaining()) + 1
		}
		values := int(groups) * 8
		n := left
		if values < n {
			n = values
		}
		need := (n*bitWidth + 7) / 8
		if need > c.Remaining() {
			return dst, c.Pos(), corrupt("bit-packed run needs %d bytes, %d remaining", need, c.Remaining())
		}
		br := cursor.NewBitReader(c.Rest())
		for i := 0; i < n; i++ {
			v, _ := br.Read(uint(bitWidth))
			dst = append(dst, int32(v))
		}
		full := int(groups) * bitWidth
		if full > c.Remaining() {
			full = c.Remaining()
		}
		_ = c.Skip(full)
	}
	return dst, c.Pos(), nil
}

func skipZeroWidthRuns(src []byte, count int) int {
	c := cursor.New(src)
	for seen := 0; seen < count; {
		header, err := c.Uvarint()
		if err != nil {
			break
		}
		run := header >> 1
		if header&1 == 1 {
			run *= 8
		}
		if run == 0 || run >= uint64(count-seen) {
			break
		}
		seen += int(run)
	}
	return c.Pos()
}

// DecodeBitPacked decodes count values of the deprecated BIT_PACKED level
// encoding, which packs values most significant bit first with no run
// headers. It returns the extended slice and the bytes consumed.
func DecodeBitPacked(dst []int32, src []byte, bitWidth int, count int) ([]int32, int, error) {
	if bitWidth < 0 || bitWidth > MaxHybridBitWidth {
		return dst, 0, corrupt("bit width %d out of range", bitWidth)
	}
	if count < 0 {
		return dst, 0, corrupt("negative value count %d", count)
	}
	need := (count*bitWidth + 7) / 8
	if need > len(src) {
		return dst, 0, corrupt("bit-packed levels need %d bytes, %d available", need, len(src))
	}
	bit := 0
	for i := 0; i < count; i++ {
		var v int32
		for j := 0; j < bitWidth; j++ {
			b := src[bit/8] >> (7 - bit%8) & 1
			v = v<<1 | int32(b)
			bit++
		}
		dst = append(dst, v)
	}
	return dst, need, nil
}

// DecodeDictionaryIndices decodes an RLE_DICTIONARY data page body: one byte
// of bit width followed by hybrid-encoded indices.
func DecodeDictionaryIndices(dst []int32, src []byte, count int) ([]int32, error) {
	if count == 0 {
		return dst, nil
	}
	if len(src) == 0 {
		return dst, corrupt("dictionary index page is empty")
	}
	dst, _, err := DecodeHybrid(dst, src[1:], int(src[0]), count)
	return dst, err
}
