package metadata

import (
	"fmt"
	"strings"
)

// maxSchemaDepth bounds group nesting in the schema tree.
const maxSchemaDepth = 1000

// Schema is the ordered list of leaf columns of a file.
type Schema struct {
	// Root is the name of the root schema element, often "schema".
	Root    string
	Columns []ColumnDescriptor
}

// NumColumns returns the number of leaf columns.
func (s *Schema) NumColumns() int { return len(s.Columns) }

// Names returns the column names in file order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnDescriptor describes one leaf column.
type ColumnDescriptor struct {
	// Name is the leaf name for top-level columns and the dot-joined path for
	// nested ones. It is passed through from the file unchanged.
	Name  string
	Path  []string
	Index int

	PhysicalType  Type
	TypeLength    int32
	Repetition    Repetition
	LogicalType   *LogicalType
	ConvertedType ConvertedType
	Precision     int32
	Scale         int32

	MaxDefinitionLevel int
	MaxRepetitionLevel int

	// Repeated columns only. A row whose first slot is defined below
	// ListDefinitionLevel holds a NULL list; slots defined at or above
	// ElementDefinitionLevel, the level of the innermost repeated field,
	// are list elements.
	ListDefinitionLevel    int
	ElementDefinitionLevel int
}

// Nullable reports whether slots may be NULL.
func (c *ColumnDescriptor) Nullable() bool { return c.MaxDefinitionLevel > 0 }

// Repeated reports whether the column is repeated anywhere along its path.
func (c *ColumnDescriptor) Repeated() bool { return c.MaxRepetitionLevel > 0 }

// LogicalString returns the logical annotation as text, falling back to
// the converted type, or "" when the column has none.
func (c *ColumnDescriptor) LogicalString() string {
	if c.LogicalType != nil {
		return c.LogicalType.String()
	}
	return c.ConvertedType.String()
}

// levels are the definition and repetition levels reached at a schema node.
type levels struct {
	def, rep int
	// listDef is the definition level above the outermost repeated field,
	// elemDef the level of the innermost one.
	listDef, elemDef int
}

type schemaBuilder struct {
	elems   []SchemaElement
	next    int
	columns []ColumnDescriptor
}

// buildSchema walks the depth-first flattened schema tree and returns its
// leaves. The first element is the root; its repetition is ignored.
func buildSchema(elems []SchemaElement) (*Schema, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("schema has no elements")
	}
	root := elems[0]
	b := &schemaBuilder{elems: elems, next: 1}
	n, err := numChildren(root)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := b.walk(nil, levels{}, 1); err != nil {
			return nil, err
		}
	}
	if b.next != len(elems) {
		return nil, fmt.Errorf("schema tree covers %d of %d elements", b.next, len(elems))
	}
	return &Schema{Root: root.Name, Columns: b.columns}, nil
}

func numChildren(el SchemaElement) (int, error) {
	if el.NumChildren == nil {
		return 0, nil
	}
	if *el.NumChildren < 0 {
		return 0, fmt.Errorf("schema element %q has %d children", el.Name, *el.NumChildren)
	}
	return int(*el.NumChildren), nil
}

func (b *schemaBuilder) walk(path []string, lv levels, depth int) error {
	if depth > maxSchemaDepth {
		return fmt.Errorf("schema nesting exceeds %d", maxSchemaDepth)
	}
	if b.next >= len(b.elems) {
		return fmt.Errorf("schema declares more children than elements (%d)", len(b.elems))
	}
	el := b.elems[b.next]
	b.next++

	repetition := Required
	if el.RepetitionType != nil {
		repetition = *el.RepetitionType
	}
	switch repetition {
	case Required:
	case Optional:
		lv.def++
	case Repeated:
		if lv.rep == 0 {
			lv.listDef = lv.def
		}
		lv.def++
		lv.rep++
		lv.elemDef = lv.def
	default:
		return fmt.Errorf("schema element %q has repetition %d", el.Name, repetition)
	}

	// Copy so sibling paths do not share a backing array.
	path = append(path[:len(path):len(path)], el.Name)

	n, err := numChildren(el)
	if err != nil {
		return err
	}
	if n > 0 {
		if n > len(b.elems)-b.next {
			return fmt.Errorf("schema element %q declares %d children, %d elements left", el.Name, n, len(b.elems)-b.next)
		}
		for i := 0; i < n; i++ {
			if err := b.walk(path, lv, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if el.Type == nil {
		// An empty group contributes no leaves.
		return nil
	}
	if !el.Type.Valid() {
		return fmt.Errorf("column %q has unknown physical type %d", el.Name, int32(*el.Type))
	}

	col := ColumnDescriptor{
		Name:               strings.Join(path, "."),
		Path:               path,
		Index:              len(b.columns),
		PhysicalType:       *el.Type,
		Repetition:         repetition,
		LogicalType:        el.LogicalType,
		ConvertedType:      NoConvertedType,
		MaxDefinitionLevel: lv.def,
		MaxRepetitionLevel: lv.rep,

		ListDefinitionLevel:    lv.listDef,
		ElementDefinitionLevel: lv.elemDef,
	}
	if el.TypeLength != nil {
		col.TypeLength = *el.TypeLength
	}
	if col.PhysicalType == FixedLenByteArray && col.TypeLength <= 0 {
		return fmt.Errorf("column %q: FIXED_LEN_BYTE_ARRAY with length %d", col.Name, col.TypeLength)
	}
	if el.ConvertedType != nil {
		col.ConvertedType = *el.ConvertedType
	}
	if el.Precision != nil {
		col.Precision = *el.Precision
	}
	if el.Scale != nil {
		col.Scale = *el.Scale
	}
	if lt := el.LogicalType; lt != nil && lt.Kind == LogicalDecimal {
		col.Precision, col.Scale = lt.Precision, lt.Scale
	}
	b.columns = append(b.columns, col)
	return nil
}
