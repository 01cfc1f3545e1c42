// Package metadata parses the Parquet footer: the schema, the row group
// directory and the total row count.
//
// The footer is the last part of every Parquet file:
//
//	<file body> <FileMetaData (thrift compact)> <4-byte LE length> "PAR1"
//
// ParseFooter validates the framing, decodes the metadata and resolves the
// schema tree into leaf ColumnDescriptors. The result is read-only.
package metadata

import (
	"encoding/binary"
	"math"

	"github.com/vegasq/pqview/pqerr"
)

const (
	// Magic starts and ends every Parquet file.
	Magic = "PAR1"
	// MagicEncrypted ends files with an encrypted footer.
	MagicEncrypted = "PARE"

	// MinFileSize is the smallest buffer ParseFooter will look at: a
	// footer length and the trailing magic.
	MinFileSize = 8
)

// ParseFooter decodes the footer of a complete Parquet file held in buf.
func ParseFooter(buf []byte) (*FileMetaData, error) {
	if len(buf) < MinFileSize {
		return nil, pqerr.New(pqerr.TruncatedInput, "file is %d bytes, need at least %d", len(buf), MinFileSize)
	}
	switch string(buf[len(buf)-4:]) {
	case Magic:
	case MagicEncrypted:
		return nil, pqerr.New(pqerr.InvalidMagic, "encrypted footers are not supported")
	default:
		return nil, pqerr.New(pqerr.InvalidMagic, "trailer is %q, want %q", buf[len(buf)-4:], Magic)
	}

	footerLen := int64(binary.LittleEndian.Uint32(buf[len(buf)-8:]))
	if footerLen+8 > int64(len(buf)) {
		return nil, pqerr.New(pqerr.TruncatedInput, "footer length %d exceeds file size %d", footerLen, len(buf))
	}
	if len(buf) >= 12 && string(buf[:4]) != Magic {
		return nil, pqerr.New(pqerr.InvalidMagic, "header is %q, want %q", buf[:4], Magic)
	}

	block := buf[int64(len(buf))-8-footerLen : len(buf)-8]
	md := &FileMetaData{}
	if _, err := unmarshal(block, md); err != nil {
		return nil, pqerr.Reclassify(pqerr.CorruptFooter, err, "decoding file metadata")
	}
	if md.NumRows < 0 {
		return nil, pqerr.New(pqerr.CorruptFooter, "negative row count %d", md.NumRows)
	}
	for i := range md.SchemaElements {
		if a := md.SchemaElements[i].Annotation; a != nil {
			md.SchemaElements[i].LogicalType = a.logicalType()
		}
	}

	var err error
	md.schema, err = buildSchema(md.SchemaElements)
	if err != nil {
		return nil, pqerr.Reclassify(pqerr.CorruptFooter, err, "resolving schema")
	}
	if md.schema.NumColumns() == 0 {
		return nil, pqerr.New(pqerr.EmptySchema, "schema %q has no leaf columns", md.schema.Root)
	}

	md.rowGroups, err = buildRowGroups(md.RowGroupsRaw, md.schema)
	if err != nil {
		return nil, err
	}
	var rows int64
	for _, rg := range md.rowGroups {
		if rg.NumRows > math.MaxInt64-rows {
			return nil, pqerr.New(pqerr.CorruptFooter, "row group counts overflow")
		}
		rows += rg.NumRows
	}
	if rows != md.NumRows {
		return nil, pqerr.New(pqerr.CorruptFooter, "footer declares %d rows, row groups hold %d", md.NumRows, rows)
	}
	return md, nil
}

func buildRowGroups(raw []RowGroupMeta, schema *Schema) ([]RowGroup, error) {
	groups := make([]RowGroup, len(raw))
	for i, rg := range raw {
		if rg.NumRows < 0 {
			return nil, pqerr.New(pqerr.CorruptFooter, "row group %d has negative row count %d", i, rg.NumRows)
		}
		if len(rg.Columns) != schema.NumColumns() {
			return nil, pqerr.New(pqerr.CorruptFooter, "row group %d has %d column chunks, schema has %d columns",
				i, len(rg.Columns), schema.NumColumns())
		}
		g := RowGroup{
			Index:         i,
			NumRows:       rg.NumRows,
			TotalByteSize: rg.TotalByteSize,
			Columns:       make([]ColumnChunk, len(rg.Columns)),
		}
		for j, cc := range rg.Columns {
			if cc.MetaData == nil {
				return nil, pqerr.New(pqerr.CorruptFooter, "row group %d column %d has no metadata", i, j).
					WithColumn(schema.Columns[j].Name)
			}
			cm := cc.MetaData
			chunk := ColumnChunk{
				ColumnIndex:           j,
				NumRows:               rg.NumRows,
				ByteOffset:            cm.DataPageOffset,
				ByteLength:            cm.TotalCompressedSize,
				Codec:                 cm.Codec,
				Encodings:             cm.Encodings,
				NumValues:             cm.NumValues,
				DataPageOffset:        cm.DataPageOffset,
				TotalUncompressedSize: cm.TotalUncompressedSize,
				FilePath:              cc.FilePath,
			}
			if off := cm.DictionaryPageOffset; off != nil && *off > 0 && *off < chunk.ByteOffset {
				chunk.ByteOffset = *off
				chunk.DictionaryPageOffset = *off
			}
			g.Columns[j] = chunk
		}
		groups[i] = g
	}
	return groups, nil
}
