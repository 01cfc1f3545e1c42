package metadata

import "fmt"

// PageHeader precedes every page in a column chunk.
type PageHeader struct {
	Type                 PageType `thrift:"1,required"`
	UncompressedPageSize int32    `thrift:"2,required"`
	CompressedPageSize   int32    `thrift:"3,required"`
	CRC                  *int32   `thrift:"4,optional"`

	DataPage       *DataPageHeader       `thrift:"5,optional"`
	DictionaryPage *DictionaryPageHeader `thrift:"7,optional"`
	DataPageV2     *DataPageHeaderV2     `thrift:"8,optional"`
}

// DataPageHeader is the header of a v1 data page.
type DataPageHeader struct {
	NumValues               int32    `thrift:"1,required"`
	Encoding                Encoding `thrift:"2,required"`
	DefinitionLevelEncoding Encoding `thrift:"3,required"`
	RepetitionLevelEncoding Encoding `thrift:"4,required"`
}

// DictionaryPageHeader is the header of a dictionary page.
type DictionaryPageHeader struct {
	NumValues int32    `thrift:"1,required"`
	Encoding  Encoding `thrift:"2,required"`
	IsSorted  *bool    `thrift:"3,optional"`
}

// DataPageHeaderV2 is the header of a v2 data page. Levels are stored
// uncompressed ahead of the values and are never length-prefixed.
type DataPageHeaderV2 struct {
	NumValues                  int32    `thrift:"1,required"`
	NumNulls                   int32    `thrift:"2,required"`
	NumRows                    int32    `thrift:"3,required"`
	Encoding                   Encoding `thrift:"4,required"`
	DefinitionLevelsByteLength int32    `thrift:"5,required"`
	RepetitionLevelsByteLength int32    `thrift:"6,required"`
	IsCompressed               *bool    `thrift:"7,optional"`
}

// Compressed reports whether the values section went through the chunk
// codec. The field defaults to true when absent.
func (h *DataPageHeaderV2) Compressed() bool {
	return h.IsCompressed == nil || *h.IsCompressed
}

// DecodePageHeader decodes a page header from the start of buf and returns
// it with the number of bytes it occupied.
func DecodePageHeader(buf []byte) (*PageHeader, int, error) {
	h := &PageHeader{}
	n, err := unmarshal(buf, h)
	if err != nil {
		return nil, 0, err
	}
	if h.UncompressedPageSize < 0 || h.CompressedPageSize < 0 {
		return nil, 0, fmt.Errorf("page header has negative size (%d compressed, %d uncompressed)",
			h.CompressedPageSize, h.UncompressedPageSize)
	}
	return h, n, nil
}
