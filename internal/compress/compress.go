// Package compress decompresses Parquet page bodies.
//
// Every codec must expand to exactly the size announced by the page header.
// That size is untrusted: buffers grow with the decoded output instead of
// being sized from it, and pages above MaxPageSize are rejected. A codec
// error or a size mismatch yields a pqerr.DecompressionFailed error. LZO
// and unknown codec ids yield pqerr.UnsupportedCompression.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

// MaxPageSize is the largest uncompressed page Decompress accepts.
const MaxPageSize = 1 << 30

// maxBlockRatio bounds the expansion of the block codecs. LZ4 blocks reach
// about 255, snappy much less.
const maxBlockRatio = 256

var errSizeMismatch = errors.New("decompressed size does not match page header")

// Supported reports whether Decompress can handle codec.
func Supported(codec metadata.Codec) bool {
	switch codec {
	case metadata.Uncompressed, metadata.Snappy, metadata.Gzip, metadata.Brotli,
		metadata.LZ4, metadata.Zstd, metadata.LZ4Raw:
		return true
	}
	return false
}

// Decompress decodes src, which must expand to exactly size bytes. The
// result may alias src for uncompressed pages.
func Decompress(codec metadata.Codec, src []byte, size int) ([]byte, error) {
	if !Supported(codec) {
		return nil, pqerr.New(pqerr.UnsupportedCompression, "codec %s is not supported", codec)
	}
	if size < 0 {
		return nil, pqerr.New(pqerr.DecompressionFailed, "negative uncompressed size %d", size)
	}
	if size > MaxPageSize {
		return nil, pqerr.New(pqerr.DecompressionFailed, "uncompressed size %d exceeds the %d byte page limit", size, MaxPageSize)
	}

	var (
		out []byte
		err error
	)
	switch codec {
	case metadata.Uncompressed:
		out = src
	case metadata.Snappy:
		out, err = decodeSnappy(src, size)
	case metadata.Gzip:
		out, err = decodeGzip(src, size)
	case metadata.Brotli:
		out, err = readAll(brotli.NewReader(bytes.NewReader(src)), len(src), size)
	case metadata.Zstd:
		out, err = decodeZstd(src, size)
	case metadata.LZ4Raw:
		out, err = decodeLZ4Block(src, size)
	case metadata.LZ4:
		out, err = decodeLZ4(src, size)
	}
	if err == nil && len(out) != size {
		err = errSizeMismatch
	}
	if err != nil {
		return nil, pqerr.Wrap(pqerr.DecompressionFailed, err, "%s page (%d bytes, want %d)", codec, len(src), size)
	}
	return out, nil
}

// readAll reads r, which decodes n input bytes, and fails unless it yields
// exactly size bytes. At most size+1 bytes are decoded.
func readAll(r io.Reader, n, size int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(size, initialSize(n)))
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, err
	}
	if buf.Len() != size {
		return nil, errSizeMismatch
	}
	return buf.Bytes(), nil
}

func initialSize(n int) int {
	return 4*n + bytes.MinRead
}

// checkBlock rejects sizes a block codec cannot reach from src.
func checkBlock(src []byte, size int) error {
	if size > maxBlockRatio*len(src)+bytes.MinRead {
		return fmt.Errorf("%d compressed bytes cannot expand to %d", len(src), size)
	}
	return nil
}

func decodeSnappy(src []byte, size int) ([]byte, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, errSizeMismatch
	}
	if err := checkBlock(src, size); err != nil {
		return nil, err
	}
	return snappy.Decode(make([]byte, size), src)
}

var gzipPool sync.Pool

func decodeGzip(src []byte, size int) ([]byte, error) {
	zr, _ := gzipPool.Get().(*gzip.Reader)
	if zr == nil {
		var err error
		if zr, err = gzip.NewReader(bytes.NewReader(src)); err != nil {
			return nil, err
		}
	} else if err := zr.Reset(bytes.NewReader(src)); err != nil {
		gzipPool.Put(zr)
		return nil, err
	}
	defer gzipPool.Put(zr)
	return readAll(zr, len(src), size)
}

var zstdPool sync.Pool

// decodeZstd streams the frames of src. A declared content size must match
// the page header.
func decodeZstd(src []byte, size int) ([]byte, error) {
	var h zstd.Header
	if err := h.Decode(src); err != nil {
		return nil, err
	}
	if h.HasFCS && h.FrameContentSize != uint64(size) {
		return nil, errSizeMismatch
	}
	zd, _ := zstdPool.Get().(*zstd.Decoder)
	if zd == nil {
		var err error
		if zd, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderLowmem(true)); err != nil {
			return nil, err
		}
	}
	defer zstdPool.Put(zd)
	if err := zd.Reset(bytes.NewReader(src)); err != nil {
		return nil, err
	}
	return readAll(zd, len(src), size)
}

func decodeLZ4Block(src []byte, size int) ([]byte, error) {
	if err := checkBlock(src, size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// decodeLZ4 handles the LZ4 codec id, which writers have used for three
// different framings over the years. Hadoop block framing is tried first,
// then a bare block, then the LZ4 frame format.
func decodeLZ4(src []byte, size int) ([]byte, error) {
	if checkBlock(src, size) == nil {
		if out, err := decodeLZ4Hadoop(src, size); err == nil && len(out) == size {
			return out, nil
		}
		if out, err := decodeLZ4Block(src, size); err == nil && len(out) == size {
			return out, nil
		}
	}
	return readAll(lz4.NewReader(bytes.NewReader(src)), len(src), size)
}

// decodeLZ4Hadoop decodes a sequence of blocks, each prefixed by its
// big-endian decompressed and compressed sizes.
func decodeLZ4Hadoop(src []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for len(src) > 0 {
		if len(src) < 8 {
			return nil, fmt.Errorf("lz4 hadoop: truncated block header")
		}
		rawLen := int(binary.BigEndian.Uint32(src))
		compLen := int(binary.BigEndian.Uint32(src[4:]))
		src = src[8:]
		if compLen > len(src) || rawLen > size-len(out) {
			return nil, fmt.Errorf("lz4 hadoop: block sizes %d/%d out of range", rawLen, compLen)
		}
		block := out[len(out) : len(out)+rawLen]
		n, err := lz4.UncompressBlock(src[:compLen], block)
		if err != nil {
			return nil, err
		}
		if n != rawLen {
			return nil, errSizeMismatch
		}
		out = out[:len(out)+rawLen]
		src = src[compLen:]
	}
	return out, nil
}
