package encoding

import (
	"github.com/vegasq/pqview/internal/cursor"
	"github.com/vegasq/pqview/metadata"
)

// DecodeDeltaBinaryPacked decodes a DELTA_BINARY_PACKED stream holding
// exactly count values and returns them with the number of bytes consumed.
// Arithmetic wraps, so INT32 columns can truncate the results.
func DecodeDeltaBinaryPacked(src []byte, count int) ([]int64, int, error) {
	c := cursor.New(src)
	blockSize, err := c.Uvarint()
	if err != nil {
		return nil, 0, corruptWrap(err, "delta block size")
	}
	miniblocks, err := c.Uvarint()
	if err != nil {
		return nil, 0, corruptWrap(err, "delta miniblock count")
	}
	total, err := c.Uvarint()
	if err != nil {
		return nil, 0, corruptWrap(err, "delta value count")
	}
	first, err := c.Zigzag()
	if err != nil {
		return nil, 0, corruptWrap(err, "delta first value")
	}
	if blockSize == 0 || blockSize%128 != 0 || blockSize > 1<<20 {
		return nil, 0, corrupt("delta block size %d is not a positive multiple of 128", blockSize)
	}
	if miniblocks == 0 || blockSize%miniblocks != 0 || (blockSize/miniblocks)%32 != 0 {
		return nil, 0, corrupt("delta block of %d values cannot hold %d miniblocks", blockSize, miniblocks)
	}
	if total != uint64(count) {
		return nil, 0, corrupt("delta stream holds %d values, want %d", total, count)
	}

	out := make([]int64, 0, count)
	if count == 0 {
		return out, c.Pos(), nil
	}
	out = append(out, first)
	perMini := int(blockSize / miniblocks)
	widths := make([]byte, miniblocks)
	prev := first
	for len(out) < count {
		minDelta, err := c.Zigzag()
		if err != nil {
			return nil, c.Pos(), corruptWrap(err, "delta block min delta")
		}
		w, err := c.ReadFixed(int(miniblocks))
		if err != nil {
			return nil, c.Pos(), corruptWrap(err, "delta miniblock widths")
		}
		copy(widths, w)
		for _, width := range widths {
			if len(out) >= count {
				break
			}
			if width > 64 {
				return nil, c.Pos(), corrupt("delta miniblock bit width %d", width)
			}
			size := perMini * int(width) / 8
			left := count - len(out)
			// The last miniblock may be cut short after the final value.
			avail := size
			if avail > c.Remaining() {
				need := (min(left, perMini)*int(width) + 7) / 8
				if need > c.Remaining() {
					return nil, c.Pos(), corrupt("delta miniblock needs %d bytes, %d remaining", need, c.Remaining())
				}
				avail = c.Remaining()
			}
			br := cursor.NewBitReader(c.Rest()[:avail])
			for i := 0; i < perMini && len(out) < count; i++ {
				d, _ := br.Read(uint(width))
				prev += minDelta + int64(d)
				out = append(out, prev)
			}
			_ = c.Skip(avail)
		}
	}
	return out, c.Pos(), nil
}

// DecodeDeltaInts decodes DELTA_BINARY_PACKED values of an INT32 or INT64
// column into dst.
func DecodeDeltaInts(dst *Values, src []byte, count int) (int, error) {
	vals, n, err := DecodeDeltaBinaryPacked(src, count)
	if err != nil {
		return n, err
	}
	switch dst.Type {
	case metadata.Int32:
		for _, v := range vals {
			dst.Int32 = append(dst.Int32, int32(v))
		}
	case metadata.Int64:
		dst.Int64 = append(dst.Int64, vals...)
	default:
		return n, corrupt("DELTA_BINARY_PACKED is not valid for %s", dst.Type)
	}
	return n, nil
}

// DecodeDeltaLengthByteArray decodes DELTA_LENGTH_BYTE_ARRAY values: delta
// encoded lengths followed by the concatenated bytes.
func DecodeDeltaLengthByteArray(dst *Values, src []byte, count int) (int, error) {
	lengths, n, err := DecodeDeltaBinaryPacked(src, count)
	if err != nil {
		return n, err
	}
	c := cursor.New(src[n:])
	for i, l := range lengths {
		if l < 0 || l > int64(c.Remaining()) {
			return n + c.Pos(), corrupt("byte array %d has length %d, %d bytes remaining", i, l, c.Remaining())
		}
		b, _ := c.ReadBytes(int(l))
		dst.Bytes = append(dst.Bytes, b)
	}
	return n + c.Pos(), nil
}

// DecodeDeltaByteArray decodes DELTA_BYTE_ARRAY values: delta encoded
// prefix lengths, then the suffixes as DELTA_LENGTH_BYTE_ARRAY. Each value
// shares its prefix with the previous one. typeLength, when positive, is the
// required length of every value.
func DecodeDeltaByteArray(dst *Values, src []byte, count int, typeLength int) (int, error) {
	prefixes, n, err := DecodeDeltaBinaryPacked(src, count)
	if err != nil {
		return n, err
	}
	var suffixes Values
	m, err := DecodeDeltaLengthByteArray(&suffixes, src[n:], count)
	if err != nil {
		return n + m, err
	}
	var prev []byte
	for i, p := range prefixes {
		if p < 0 || p > int64(len(prev)) {
			return n + m, corrupt("value %d has prefix length %d, previous value is %d bytes", i, p, len(prev))
		}
		v := make([]byte, 0, int(p)+len(suffixes.Bytes[i]))
		v = append(v, prev[:p]...)
		v = append(v, suffixes.Bytes[i]...)
		if typeLength > 0 && len(v) != typeLength {
			return n + m, corrupt("value %d is %d bytes, want %d", i, len(v), typeLength)
		}
		dst.Bytes = append(dst.Bytes, v)
		prev = v
	}
	return n + m, nil
}

// DecodeByteStreamSplit decodes BYTE_STREAM_SPLIT values: byte k of every
// value is stored in stream k.
func DecodeByteStreamSplit(dst *Values, src []byte, t metadata.Type, typeLength int, count int) (int, error) {
	width := Width(t, typeLength)
	if width <= 0 || t == metadata.Int96 {
		return 0, corrupt("BYTE_STREAM_SPLIT is not valid for %s", t)
	}
	if count < 0 || count > len(src)/width {
		return 0, corrupt("%d split values need %d bytes, %d available", count, count*width, len(src))
	}
	joined := make([]byte, count*width)
	for k := 0; k < width; k++ {
		stream := src[k*count : (k+1)*count]
		for i, b := range stream {
			joined[i*width+k] = b
		}
	}
	if _, err := DecodePlain(dst, joined, t, typeLength, count); err != nil {
		return 0, err
	}
	return count * width, nil
}
