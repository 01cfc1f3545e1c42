// Package column decodes the pages of one column chunk into a dense slice
// of physical values.
//
// DecodeChunk is a pure function of the file bytes, the chunk location and
// the column descriptor; it keeps no state between calls and is safe to run
// concurrently for different chunks.
package column

import (
	"context"
	"fmt"

	"github.com/vegasq/pqview/internal/compress"
	"github.com/vegasq/pqview/internal/cursor"
	"github.com/vegasq/pqview/internal/encoding"
	"github.com/vegasq/pqview/metadata"
	"github.com/vegasq/pqview/pqerr"
)

// MaxPageValues bounds the slot count a single page may declare.
const MaxPageValues = 1 << 24

// Column is a decoded column chunk, or its first rows when decoding was
// limited.
type Column struct {
	Descriptor *metadata.ColumnDescriptor
	// Values holds one slot per leaf value, NULL slots included.
	Values []Value

	// Repeated columns only: the levels of each slot and the index of the
	// first slot of every row.
	RepLevels []int32
	DefLevels []int32
	rowStarts []int
}

// NumRows returns the number of rows the column covers.
func (c *Column) NumRows() int {
	if c.Descriptor.Repeated() {
		return len(c.rowStarts)
	}
	return len(c.Values)
}

// Row returns the slots of row i for a flat column, always exactly one.
// For a repeated column it returns the list elements of the row with NULL
// elements kept; an empty list yields none, and a missing list yields none
// with null set.
func (c *Column) Row(i int) (elems []Value, null bool) {
	if !c.Descriptor.Repeated() {
		return c.Values[i : i+1 : i+1], false
	}
	start, end := c.rowStarts[i], len(c.Values)
	if i+1 < len(c.rowStarts) {
		end = c.rowStarts[i+1]
	}
	if c.DefLevels[start] < int32(c.Descriptor.ListDefinitionLevel) {
		return nil, true
	}
	elemDef := int32(c.Descriptor.ElementDefinitionLevel)
	for j := start; j < end; j++ {
		if c.DefLevels[j] >= elemDef {
			elems = append(elems, c.Values[j])
		}
	}
	return elems, false
}

// DecodeChunk decodes a column chunk. If limit is positive, decoding stops
// after the pages that cover the first limit rows and the result is trimmed
// to them.
func DecodeChunk(ctx context.Context, data []byte, chunk metadata.ColumnChunk, desc *metadata.ColumnDescriptor, limit int) (*Column, error) {
	d := &chunkDecoder{
		desc:   desc,
		chunk:  chunk,
		limit:  limit,
		col:    &Column{Descriptor: desc},
		defBW:  int(cursor.BitWidth(uint64(desc.MaxDefinitionLevel))),
		repBW:  int(cursor.BitWidth(uint64(desc.MaxRepetitionLevel))),
		maxDef: int32(desc.MaxDefinitionLevel),
	}
	if err := d.decode(ctx, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return nil, err
		}
		return nil, columnError(err, desc.Name)
	}
	return d.col, nil
}

// columnError classifies err for the column: decoder and truncation
// failures become CorruptColumnData, codec errors keep their kind.
func columnError(err error, name string) error {
	kind := pqerr.KindOf(err)
	if kind == 0 || kind == pqerr.TruncatedInput {
		kind = pqerr.CorruptColumnData
	}
	if pe, ok := err.(*pqerr.Error); ok && pe.Kind == kind {
		return pe.WithColumn(name)
	}
	return pqerr.Reclassify(kind, err, "decoding column chunk").WithColumn(name)
}

type chunkDecoder struct {
	desc  *metadata.ColumnDescriptor
	chunk metadata.ColumnChunk
	limit int
	col   *Column

	defBW, repBW int
	maxDef       int32

	dict    *encoding.Values
	vals    encoding.Values
	levels  []int32
	indices []int32
	slots   int64
	stopped bool
}

func (d *chunkDecoder) decode(ctx context.Context, data []byte) error {
	ch := d.chunk
	if ch.FilePath != "" {
		return pqerr.New(pqerr.CorruptColumnData, "chunk is stored in external file %q", ch.FilePath)
	}
	if ch.ByteOffset < 0 || ch.ByteLength < 0 || ch.ByteOffset > int64(len(data)) || ch.ByteLength > int64(len(data))-ch.ByteOffset {
		return pqerr.New(pqerr.CorruptColumnData, "chunk bytes [%d, +%d) lie outside the %d byte file", ch.ByteOffset, ch.ByteLength, len(data))
	}
	if !compress.Supported(ch.Codec) {
		return pqerr.New(pqerr.UnsupportedCompression, "codec %s is not supported", ch.Codec)
	}
	if ch.NumValues < 0 || ch.NumRows < 0 {
		return fmt.Errorf("negative value or row count (%d, %d)", ch.NumValues, ch.NumRows)
	}

	body := data[ch.ByteOffset : ch.ByteOffset+ch.ByteLength]
	for pos := 0; pos < len(body) && d.slots < ch.NumValues; {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.done() {
			d.stopped = true
			break
		}
		h, n, err := metadata.DecodePageHeader(body[pos:])
		if err != nil {
			return fmt.Errorf("page header at chunk offset %d: %w", pos, err)
		}
		pos += n
		if err := d.checkPageSize(h); err != nil {
			return fmt.Errorf("page at chunk offset %d: %w", pos, err)
		}
		if int(h.CompressedPageSize) > len(body)-pos {
			return fmt.Errorf("page at chunk offset %d is %d bytes, %d left in chunk", pos, h.CompressedPageSize, len(body)-pos)
		}
		page := body[pos : pos+int(h.CompressedPageSize)]
		pos += int(h.CompressedPageSize)

		switch h.Type {
		case metadata.DictionaryPage:
			err = d.readDictionary(h, page)
		case metadata.DataPage:
			err = d.readDataPageV1(h, page)
		case metadata.DataPageV2:
			err = d.readDataPageV2(h, page)
		default:
			// Index pages and unknown page types carry no values.
		}
		if err != nil {
			return err
		}
	}
	return d.finish()
}

// checkPageSize bounds the uncompressed size a page header declares by the
// chunk's total and by compress.MaxPageSize before anything is allocated
// from it.
func (d *chunkDecoder) checkPageSize(h *metadata.PageHeader) error {
	size := int64(h.UncompressedPageSize)
	if size > compress.MaxPageSize {
		return fmt.Errorf("uncompressed size %d exceeds the %d byte page limit", size, compress.MaxPageSize)
	}
	if total := d.chunk.TotalUncompressedSize; total > 0 && size > total {
		return fmt.Errorf("uncompressed size %d exceeds the chunk's %d bytes", size, total)
	}
	return nil
}

// done reports whether enough rows have been decoded to satisfy the limit.
func (d *chunkDecoder) done() bool {
	if d.limit <= 0 {
		return false
	}
	if d.desc.Repeated() {
		// The last row may continue in the next page until another row starts.
		return len(d.col.rowStarts) > d.limit
	}
	return len(d.col.Values) >= d.limit
}

func (d *chunkDecoder) finish() error {
	c := d.col
	if d.stopped || d.done() {
		if d.limit < c.NumRows() {
			end := d.limit
			if d.desc.Repeated() {
				end = c.rowStarts[d.limit]
				c.rowStarts = c.rowStarts[:d.limit]
				c.RepLevels = c.RepLevels[:end]
				c.DefLevels = c.DefLevels[:end]
			}
			c.Values = c.Values[:end]
		}
		return nil
	}
	if d.slots != d.chunk.NumValues {
		return fmt.Errorf("chunk declares %d values, pages hold %d", d.chunk.NumValues, d.slots)
	}
	if int64(c.NumRows()) != d.chunk.NumRows {
		return fmt.Errorf("row group has %d rows, column holds %d", d.chunk.NumRows, c.NumRows())
	}
	return nil
}

func (d *chunkDecoder) readDictionary(h *metadata.PageHeader, page []byte) error {
	if d.dict != nil {
		return fmt.Errorf("second dictionary page")
	}
	dh := h.DictionaryPage
	if dh == nil {
		return fmt.Errorf("dictionary page without header")
	}
	if dh.Encoding != metadata.Plain && dh.Encoding != metadata.PlainDictionary {
		return fmt.Errorf("dictionary page encoding %s", dh.Encoding)
	}
	if dh.NumValues < 0 {
		return fmt.Errorf("dictionary page declares %d values", dh.NumValues)
	}
	raw, err := compress.Decompress(d.chunk.Codec, page, int(h.UncompressedPageSize))
	if err != nil {
		return err
	}
	dict := &encoding.Values{Type: d.desc.PhysicalType}
	if _, err := encoding.DecodePlain(dict, raw, d.desc.PhysicalType, int(d.desc.TypeLength), int(dh.NumValues)); err != nil {
		return fmt.Errorf("dictionary page: %w", err)
	}
	d.dict = dict
	return nil
}

func (d *chunkDecoder) readDataPageV1(h *metadata.PageHeader, page []byte) error {
	dh := h.DataPage
	if dh == nil {
		return fmt.Errorf("data page without header")
	}
	n, err := d.checkCount(dh.NumValues)
	if err != nil {
		return err
	}
	raw, err := compress.Decompress(d.chunk.Codec, page, int(h.UncompressedPageSize))
	if err != nil {
		return err
	}

	var rep, def []int32
	pos := 0
	if d.desc.MaxRepetitionLevel > 0 {
		var used int
		if rep, used, err = d.levelsV1(raw[pos:], dh.RepetitionLevelEncoding, d.repBW, n); err != nil {
			return fmt.Errorf("repetition levels: %w", err)
		}
		pos += used
	}
	if d.desc.MaxDefinitionLevel > 0 {
		var used int
		if def, used, err = d.levelsV1(raw[pos:], dh.DefinitionLevelEncoding, d.defBW, n); err != nil {
			return fmt.Errorf("definition levels: %w", err)
		}
		pos += used
	}
	return d.readValues(dh.Encoding, raw[pos:], rep, def, n)
}

// levelsV1 decodes v1 page levels, which are length-prefixed when RLE
// encoded.
func (d *chunkDecoder) levelsV1(src []byte, enc metadata.Encoding, bitWidth, n int) ([]int32, int, error) {
	switch enc {
	case metadata.RLE:
		c := cursor.New(src)
		size, err := c.Uint32LE()
		if err != nil {
			return nil, 0, err
		}
		body, err := c.ReadBytes(int(size))
		if err != nil {
			return nil, 0, err
		}
		levels, _, err := encoding.DecodeHybrid(make([]int32, 0, n), body, bitWidth, n)
		return levels, 4 + int(size), err
	case metadata.BitPacked:
		return encoding.DecodeBitPacked(make([]int32, 0, n), src, bitWidth, n)
	}
	return nil, 0, fmt.Errorf("level encoding %s", enc)
}

func (d *chunkDecoder) readDataPageV2(h *metadata.PageHeader, page []byte) error {
	dh := h.DataPageV2
	if dh == nil {
		return fmt.Errorf("data page v2 without header")
	}
	n, err := d.checkCount(dh.NumValues)
	if err != nil {
		return err
	}
	repLen, defLen := int(dh.RepetitionLevelsByteLength), int(dh.DefinitionLevelsByteLength)
	if repLen < 0 || defLen < 0 || repLen > len(page) || defLen > len(page)-repLen {
		return fmt.Errorf("level sections (%d, %d bytes) exceed %d byte page", repLen, defLen, len(page))
	}

	var rep, def []int32
	if d.desc.MaxRepetitionLevel > 0 {
		if rep, _, err = encoding.DecodeHybrid(make([]int32, 0, n), page[:repLen], d.repBW, n); err != nil {
			return fmt.Errorf("repetition levels: %w", err)
		}
	}
	if d.desc.MaxDefinitionLevel > 0 {
		if def, _, err = encoding.DecodeHybrid(make([]int32, 0, n), page[repLen:repLen+defLen], d.defBW, n); err != nil {
			return fmt.Errorf("definition levels: %w", err)
		}
	}

	values := page[repLen+defLen:]
	size := int(h.UncompressedPageSize) - repLen - defLen
	if dh.Compressed() && d.chunk.Codec != metadata.Uncompressed {
		if values, err = compress.Decompress(d.chunk.Codec, values, size); err != nil {
			return err
		}
	} else if size != len(values) {
		return fmt.Errorf("uncompressed v2 page holds %d value bytes, header says %d", len(values), size)
	}
	return d.readValues(dh.Encoding, values, rep, def, n)
}

func (d *chunkDecoder) checkCount(numValues int32) (int, error) {
	if numValues < 0 || numValues > MaxPageValues {
		return 0, fmt.Errorf("page declares %d values", numValues)
	}
	if int64(numValues) > d.chunk.NumValues-d.slots {
		return 0, fmt.Errorf("page declares %d values, chunk has %d left", numValues, d.chunk.NumValues-d.slots)
	}
	return int(numValues), nil
}

// readValues decodes the non-null values of a page and spreads them over
// the page's slots.
func (d *chunkDecoder) readValues(enc metadata.Encoding, src []byte, rep, def []int32, n int) error {
	present := n
	if def != nil {
		present = 0
		for _, l := range def {
			if l > d.maxDef {
				return fmt.Errorf("definition level %d exceeds maximum %d", l, d.maxDef)
			}
			if l == d.maxDef {
				present++
			}
		}
	}
	if rep != nil {
		for i, l := range rep {
			if l > int32(d.desc.MaxRepetitionLevel) {
				return fmt.Errorf("repetition level %d exceeds maximum %d", l, d.desc.MaxRepetitionLevel)
			}
			if l == 0 {
				d.col.rowStarts = append(d.col.rowStarts, len(d.col.Values)+i)
			} else if len(d.col.Values)+i == 0 {
				return fmt.Errorf("first slot continues a row (repetition level %d)", l)
			}
		}
		d.col.RepLevels = append(d.col.RepLevels, rep...)
		d.col.DefLevels = append(d.col.DefLevels, def...)
		if def == nil {
			for i := 0; i < n; i++ {
				d.col.DefLevels = append(d.col.DefLevels, d.maxDef)
			}
		}
	}

	t := d.desc.PhysicalType
	typeLen := int(d.desc.TypeLength)
	d.vals.Reset(t)
	var lookup func(i int) Value
	switch enc {
	case metadata.Plain:
		if _, err := encoding.DecodePlain(&d.vals, src, t, typeLen, present); err != nil {
			return err
		}
	case metadata.PlainDictionary, metadata.RLEDictionary:
		if d.dict == nil {
			return fmt.Errorf("dictionary-encoded page without a dictionary")
		}
		idx, err := encoding.DecodeDictionaryIndices(d.indices[:0], src, present)
		if err != nil {
			return err
		}
		d.indices = idx
		size := d.dict.Len()
		for _, i := range idx {
			if i < 0 || int(i) >= size {
				return fmt.Errorf("dictionary index %d out of range [0, %d)", i, size)
			}
		}
		lookup = func(i int) Value { return valueAt(d.dict, int(d.indices[i])) }
	case metadata.RLE:
		if t != metadata.Boolean {
			return fmt.Errorf("RLE value encoding on %s column", t)
		}
		if err := encoding.DecodeRLEBooleans(&d.vals, src, present); err != nil {
			return err
		}
	case metadata.DeltaBinaryPacked:
		if _, err := encoding.DecodeDeltaInts(&d.vals, src, present); err != nil {
			return err
		}
	case metadata.DeltaLengthByteArray:
		if t != metadata.ByteArray {
			return fmt.Errorf("DELTA_LENGTH_BYTE_ARRAY on %s column", t)
		}
		if _, err := encoding.DecodeDeltaLengthByteArray(&d.vals, src, present); err != nil {
			return err
		}
	case metadata.DeltaByteArray:
		if t != metadata.ByteArray && t != metadata.FixedLenByteArray {
			return fmt.Errorf("DELTA_BYTE_ARRAY on %s column", t)
		}
		fixed := 0
		if t == metadata.FixedLenByteArray {
			fixed = typeLen
		}
		if _, err := encoding.DecodeDeltaByteArray(&d.vals, src, present, fixed); err != nil {
			return err
		}
	case metadata.ByteStreamSplit:
		if _, err := encoding.DecodeByteStreamSplit(&d.vals, src, t, typeLen, present); err != nil {
			return err
		}
	default:
		return fmt.Errorf("value encoding %s", enc)
	}
	if lookup == nil {
		if got := d.vals.Len(); got != present {
			return fmt.Errorf("page holds %d values, levels call for %d", got, present)
		}
		lookup = func(i int) Value { return valueAt(&d.vals, i) }
	}

	next := 0
	for i := 0; i < n; i++ {
		if def != nil && def[i] != d.maxDef {
			d.col.Values = append(d.col.Values, Null(t))
			continue
		}
		d.col.Values = append(d.col.Values, lookup(next))
		next++
	}
	d.slots += int64(n)
	return nil
}

func valueAt(v *encoding.Values, i int) Value {
	switch v.Type {
	case metadata.Boolean:
		return BoolValue(v.Bools[i])
	case metadata.Int32:
		return Int32Value(v.Int32[i])
	case metadata.Int64:
		return Int64Value(v.Int64[i])
	case metadata.Float:
		return FloatValue(v.Float[i])
	case metadata.Double:
		return DoubleValue(v.Double[i])
	default:
		return BytesValue(v.Type, v.Bytes[i])
	}
}
