// Package pqtest builds small Parquet files byte by byte for tests that need
// layouts the reference writer will not produce: TIME and INT96 columns,
// hand-picked encodings, and corrupt metadata.
//
// Pages are written uncompressed whatever the chunk codec says.
package pqtest

import (
	"encoding/binary"
	"math"

	"github.com/vegasq/pqview/metadata"
)

// File describes a Parquet file.
type File struct {
	// Schema holds every schema element including the root. Use Flat to
	// build a single-level schema.
	Schema    []metadata.SchemaElement
	RowGroups []RowGroup
	// NumRows overrides the footer row count, which defaults to the sum
	// of the row group counts.
	NumRows   *int64
	CreatedBy string
	KeyValue  []metadata.KeyValue
}

// RowGroup holds one chunk per leaf column.
type RowGroup struct {
	NumRows int64
	Chunks  []Chunk
}

// Chunk is a column chunk.
type Chunk struct {
	Codec metadata.Codec
	Pages []Page
	// NumValues overrides the chunk value count, which defaults to the sum
	// of the data page value counts.
	NumValues *int64
	// TotalUncompressedSize overrides the chunk's uncompressed size, which
	// defaults to its compressed size.
	TotalUncompressedSize int64
}

// Page is one page of a chunk. For v1 data pages, non-nil level slices are
// written with their 4-byte length prefix.
type Page struct {
	Type      metadata.PageType
	NumValues int32
	Encoding  metadata.Encoding
	RepLevels []byte
	DefLevels []byte
	Values    []byte

	// DATA_PAGE_V2 only.
	NumNulls     int32
	NumRows      int32
	Uncompressed bool

	// UncompressedSize overrides the header size when non-zero.
	UncompressedSize int32
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Leaf returns a leaf schema element.
func Leaf(name string, t metadata.Type, rep metadata.Repetition) metadata.SchemaElement {
	return metadata.SchemaElement{Name: name, Type: &t, RepetitionType: &rep}
}

// Group returns a group schema element with n children.
func Group(name string, rep metadata.Repetition, n int32) metadata.SchemaElement {
	return metadata.SchemaElement{Name: name, RepetitionType: &rep, NumChildren: &n}
}

// Flat prepends a root element to leaves.
func Flat(leaves ...metadata.SchemaElement) []metadata.SchemaElement {
	n := int32(len(leaves))
	return append([]metadata.SchemaElement{{Name: "schema", NumChildren: &n}}, leaves...)
}

// Bytes encodes the file.
func (f *File) Bytes() []byte {
	buf := []byte(metadata.Magic)
	leaves := leafTypes(f.Schema)

	md := &metadata.FileMetaData{
		Version:          2,
		SchemaElements:   f.Schema,
		RowGroupsRaw:     []metadata.RowGroupMeta{},
		KeyValueMetadata: f.KeyValue,
		CreatedBy:        f.CreatedBy,
	}
	for _, rg := range f.RowGroups {
		meta := metadata.RowGroupMeta{NumRows: rg.NumRows, Columns: []metadata.ColumnChunkMeta{}}
		for i, c := range rg.Chunks {
			var typ metadata.Type
			if i < len(leaves) {
				typ = leaves[i]
			}
			var cc metadata.ColumnChunkMeta
			buf, cc = writeChunk(buf, c, typ)
			meta.TotalByteSize += cc.MetaData.TotalCompressedSize
			meta.Columns = append(meta.Columns, cc)
		}
		md.RowGroupsRaw = append(md.RowGroupsRaw, meta)
		md.NumRows += rg.NumRows
	}
	if f.NumRows != nil {
		md.NumRows = *f.NumRows
	}
	return Footer(buf, must(md.Marshal()))
}

// Footer appends an encoded FileMetaData block, its length and the
// trailing magic to body.
func Footer(body, meta []byte) []byte {
	body = append(body, meta...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(meta)))
	return append(body, metadata.Magic...)
}

func must(b []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return b
}

func leafTypes(schema []metadata.SchemaElement) []metadata.Type {
	var types []metadata.Type
	for i, el := range schema {
		if i > 0 && el.Type != nil && (el.NumChildren == nil || *el.NumChildren == 0) {
			types = append(types, *el.Type)
		}
	}
	return types
}

// writeChunk appends the pages of c to buf and returns the chunk's
// metadata.
func writeChunk(buf []byte, c Chunk, typ metadata.Type) ([]byte, metadata.ColumnChunkMeta) {
	start := len(buf)
	dataOffset, dictOffset := int64(-1), int64(-1)
	var numValues int64
	for _, p := range c.Pages {
		if p.Type == metadata.DictionaryPage {
			if dictOffset < 0 {
				dictOffset = int64(len(buf))
			}
		} else {
			if dataOffset < 0 {
				dataOffset = int64(len(buf))
			}
			numValues += int64(p.NumValues)
		}
		buf = append(buf, EncodePage(p)...)
	}
	if dataOffset < 0 {
		dataOffset = int64(len(buf))
	}
	if c.NumValues != nil {
		numValues = *c.NumValues
	}
	size := int64(len(buf) - start)

	cm := &metadata.ColumnMetaData{
		Type:                  typ,
		Encodings:             []metadata.Encoding{metadata.Plain},
		PathInSchema:          []string{},
		Codec:                 c.Codec,
		NumValues:             numValues,
		TotalUncompressedSize: size,
		TotalCompressedSize:   size,
		DataPageOffset:        dataOffset,
	}
	if c.TotalUncompressedSize != 0 {
		cm.TotalUncompressedSize = c.TotalUncompressedSize
	}
	if dictOffset >= 0 {
		cm.DictionaryPageOffset = &dictOffset
	}
	return buf, metadata.ColumnChunkMeta{FileOffset: int64(start), MetaData: cm}
}

// EncodePage returns the page header followed by the page body.
func EncodePage(p Page) []byte {
	var body []byte
	switch p.Type {
	case metadata.DataPage:
		if p.RepLevels != nil {
			body = binary.LittleEndian.AppendUint32(body, uint32(len(p.RepLevels)))
			body = append(body, p.RepLevels...)
		}
		if p.DefLevels != nil {
			body = binary.LittleEndian.AppendUint32(body, uint32(len(p.DefLevels)))
			body = append(body, p.DefLevels...)
		}
	case metadata.DataPageV2:
		body = append(body, p.RepLevels...)
		body = append(body, p.DefLevels...)
	}
	body = append(body, p.Values...)

	h := &metadata.PageHeader{
		Type:                 p.Type,
		UncompressedPageSize: int32(len(body)),
		CompressedPageSize:   int32(len(body)),
	}
	if p.UncompressedSize != 0 {
		h.UncompressedPageSize = p.UncompressedSize
	}
	switch p.Type {
	case metadata.DataPage:
		h.DataPage = &metadata.DataPageHeader{
			NumValues:               p.NumValues,
			Encoding:                p.Encoding,
			DefinitionLevelEncoding: metadata.RLE,
			RepetitionLevelEncoding: metadata.RLE,
		}
	case metadata.DictionaryPage:
		h.DictionaryPage = &metadata.DictionaryPageHeader{NumValues: p.NumValues, Encoding: p.Encoding}
	case metadata.DataPageV2:
		h.DataPageV2 = &metadata.DataPageHeaderV2{
			NumValues:                  p.NumValues,
			NumNulls:                   p.NumNulls,
			NumRows:                    p.NumRows,
			Encoding:                   p.Encoding,
			DefinitionLevelsByteLength: int32(len(p.DefLevels)),
			RepetitionLevelsByteLength: int32(len(p.RepLevels)),
		}
		if p.Uncompressed {
			h.DataPageV2.IsCompressed = Ptr(false)
		}
	}
	return append(must(h.Marshal()), body...)
}

// Levels encodes levels as an RLE/bit-packed hybrid run sequence using
// only RLE runs.
func Levels(bitWidth int, levels ...int) []byte {
	var out []byte
	byteWidth := (bitWidth + 7) / 8
	for i := 0; i < len(levels); {
		j := i
		for j < len(levels) && levels[j] == levels[i] {
			j++
		}
		out = binary.AppendUvarint(out, uint64(j-i)<<1)
		v := uint64(levels[i])
		for b := 0; b < byteWidth; b++ {
			out = append(out, byte(v>>(8*b)))
		}
		i = j
	}
	return out
}

// DictIndices encodes dictionary indices as an RLE_DICTIONARY page body.
func DictIndices(bitWidth int, idx ...int) []byte {
	return append([]byte{byte(bitWidth)}, Levels(bitWidth, idx...)...)
}

// PlainInt32 encodes values with the PLAIN encoding.
func PlainInt32(vs ...int32) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, uint32(v))
	}
	return out
}

// PlainInt64 encodes values with the PLAIN encoding.
func PlainInt64(vs ...int64) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint64(out, uint64(v))
	}
	return out
}

// PlainDouble encodes values with the PLAIN encoding.
func PlainDouble(vs ...float64) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}
	return out
}

// PlainFloat encodes values with the PLAIN encoding.
func PlainFloat(vs ...float32) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// PlainBool encodes values with the PLAIN encoding (bit-packed, LSB first).
func PlainBool(vs ...bool) []byte {
	out := make([]byte, (len(vs)+7)/8)
	for i, v := range vs {
		if v {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// PlainByteArray encodes values with the PLAIN encoding.
func PlainByteArray(vs ...string) []byte {
	var out []byte
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(v)))
		out = append(out, v...)
	}
	return out
}

// PlainFixed concatenates fixed-length values.
func PlainFixed(vs ...[]byte) []byte {
	var out []byte
	for _, v := range vs {
		out = append(out, v...)
	}
	return out
}

// Int96 encodes a legacy timestamp: nanoseconds of the day followed by the
// Julian day number.
func Int96(julianDay uint32, nanosOfDay uint64) []byte {
	out := binary.LittleEndian.AppendUint64(nil, nanosOfDay)
	return binary.LittleEndian.AppendUint32(out, julianDay)
}
