package metadata

// FileMetaData is the decoded Parquet footer. Fields carry their Thrift
// field ids; optional fields are pointers.
type FileMetaData struct {
	Version          int32           `thrift:"1,required"`
	SchemaElements   []SchemaElement `thrift:"2,required"`
	NumRows          int64           `thrift:"3,required"`
	RowGroupsRaw     []RowGroupMeta  `thrift:"4,required"`
	KeyValueMetadata []KeyValue      `thrift:"5,optional"`
	CreatedBy        string          `thrift:"6,optional"`

	schema    *Schema
	rowGroups []RowGroup
}

// SchemaElement is one node of the flattened schema tree.
type SchemaElement struct {
	Type           *Type          `thrift:"1,optional"`
	TypeLength     *int32         `thrift:"2,optional"`
	RepetitionType *Repetition    `thrift:"3,optional"`
	Name           string         `thrift:"4,required"`
	NumChildren    *int32         `thrift:"5,optional"`
	ConvertedType  *ConvertedType `thrift:"6,optional"`
	Scale          *int32         `thrift:"7,optional"`
	Precision      *int32         `thrift:"8,optional"`
	FieldID        *int32         `thrift:"9,optional"`
	Annotation     *annotation    `thrift:"10,optional"`

	// LogicalType is resolved from Annotation by ParseFooter and written
	// back by Marshal.
	LogicalType *LogicalType
}

// RowGroupMeta is a row group as stored in the footer.
type RowGroupMeta struct {
	Columns             []ColumnChunkMeta `thrift:"1,required"`
	TotalByteSize       int64             `thrift:"2,required"`
	NumRows             int64             `thrift:"3,required"`
	SortingColumns      []SortingColumn   `thrift:"4,optional"`
	FileOffset          *int64            `thrift:"5,optional"`
	TotalCompressedSize *int64            `thrift:"6,optional"`
	Ordinal             *int16            `thrift:"7,optional"`
}

// SortingColumn records a sort order the writer guarantees within a row
// group.
type SortingColumn struct {
	ColumnIdx  int32 `thrift:"1,required"`
	Descending bool  `thrift:"2,required"`
	NullsFirst bool  `thrift:"3,required"`
}

// ColumnChunkMeta is a column chunk as stored in the footer.
type ColumnChunkMeta struct {
	FilePath   string          `thrift:"1,optional"`
	FileOffset int64           `thrift:"2,required"`
	MetaData   *ColumnMetaData `thrift:"3,optional"`
}

// ColumnMetaData describes the pages of one column chunk.
type ColumnMetaData struct {
	Type                  Type       `thrift:"1,required"`
	Encodings             []Encoding `thrift:"2,required"`
	PathInSchema          []string   `thrift:"3,required"`
	Codec                 Codec      `thrift:"4,required"`
	NumValues             int64      `thrift:"5,required"`
	TotalUncompressedSize int64      `thrift:"6,required"`
	TotalCompressedSize   int64      `thrift:"7,required"`
	KeyValueMetadata      []KeyValue `thrift:"8,optional"`
	DataPageOffset        int64      `thrift:"9,required"`
	IndexPageOffset       *int64     `thrift:"10,optional"`
	DictionaryPageOffset  *int64     `thrift:"11,optional"`
}

// KeyValue is an application-defined metadata entry.
type KeyValue struct {
	Key   string  `thrift:"1,required"`
	Value *string `thrift:"2,optional"`
}

// Schema returns the leaf columns in file order.
func (m *FileMetaData) Schema() *Schema { return m.schema }

// RowGroups returns the row group directory.
func (m *FileMetaData) RowGroups() []RowGroup { return m.rowGroups }

// RowGroup is the decoder's view of one row group: its row count and one
// chunk per leaf column, in schema order.
type RowGroup struct {
	Index         int
	NumRows       int64
	TotalByteSize int64
	Columns       []ColumnChunk
}

// ColumnChunk locates one column's pages within the file.
type ColumnChunk struct {
	ColumnIndex int
	// NumRows is the row count of the enclosing row group.
	NumRows int64
	// ByteOffset is the offset of the first page (the dictionary page when
	// present) and ByteLength the total compressed size of all pages.
	ByteOffset int64
	ByteLength int64
	Codec      Codec
	Encodings  []Encoding
	NumValues  int64

	DataPageOffset        int64
	DictionaryPageOffset  int64 // 0 when the chunk has no dictionary page
	TotalUncompressedSize int64

	// FilePath is set when the chunk lives in another file, which pqview
	// cannot read.
	FilePath string
}
