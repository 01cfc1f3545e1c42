package reader

import (
	"fmt"

	"github.com/vegasq/pqview/metadata"
)

// SchemaInfo represents metadata about a single column in a Parquet file.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// ExtractSchemaInfo extracts schema information from a Parquet file.
//
// Returns one SchemaInfo per leaf column with its name, type information,
// and whether the field is required/optional/repeated. Nested fields use dot
// notation (e.g., "address.street").
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = r.Close() }()

	return SchemaInfoOf(r.Schema()), nil
}

// SchemaInfoOf describes the leaf columns of schema.
func SchemaInfoOf(schema *metadata.Schema) []SchemaInfo {
	infos := make([]SchemaInfo, len(schema.Columns))
	for i := range schema.Columns {
		c := &schema.Columns[i]
		infos[i] = SchemaInfo{
			Name:         c.Name,
			Type:         getUserFriendlyType(c),
			PhysicalType: c.PhysicalType.String(),
			LogicalType:  c.LogicalString(),
			// A leaf under a repeated group is repeated even when the leaf
			// itself is required.
			Required: c.MaxDefinitionLevel == 0,
			Optional: c.Repetition == metadata.Optional,
			Repeated: c.Repeated(),
		}
	}
	return infos
}

// getUserFriendlyType returns a user-friendly type name for a column.
//
// This converts Parquet's physical and logical types into simpler, more
// recognizable type names for end users.
func getUserFriendlyType(c *metadata.ColumnDescriptor) string {
	// Check logical type first for more specific typing
	if lt := c.LogicalType; lt != nil {
		switch lt.Kind {
		case metadata.LogicalString:
			return "STRING"
		case metadata.LogicalEnum:
			return "ENUM"
		case metadata.LogicalUUID:
			return "UUID"
		case metadata.LogicalInteger:
			if lt.Signed {
				return fmt.Sprintf("INT%d", lt.BitWidth)
			}
			return fmt.Sprintf("UINT%d", lt.BitWidth)
		case metadata.LogicalDate:
			return "DATE"
		case metadata.LogicalTime:
			return "TIME"
		case metadata.LogicalTimestamp:
			return "TIMESTAMP"
		case metadata.LogicalDecimal:
			return "DECIMAL"
		case metadata.LogicalJSON:
			return "JSON"
		case metadata.LogicalBSON:
			return "BSON"
		case metadata.LogicalFloat16:
			return "FLOAT16"
		}
	}

	switch c.ConvertedType {
	case metadata.ConvertedUTF8:
		return "STRING"
	case metadata.ConvertedEnum:
		return "ENUM"
	case metadata.ConvertedDate:
		return "DATE"
	case metadata.ConvertedTimeMillis, metadata.ConvertedTimeMicros:
		return "TIME"
	case metadata.ConvertedTimestampMillis, metadata.ConvertedTimestampMicros:
		return "TIMESTAMP"
	case metadata.ConvertedDecimal:
		return "DECIMAL"
	case metadata.ConvertedJSON:
		return "JSON"
	case metadata.ConvertedBSON:
		return "BSON"
	case metadata.ConvertedInt8:
		return "INT8"
	case metadata.ConvertedInt16:
		return "INT16"
	case metadata.ConvertedUint8:
		return "UINT8"
	case metadata.ConvertedUint16:
		return "UINT16"
	case metadata.ConvertedUint32:
		return "UINT32"
	case metadata.ConvertedUint64:
		return "UINT64"
	}

	// Fall back to physical type
	switch c.PhysicalType {
	case metadata.Int96:
		return "TIMESTAMP"
	case metadata.Float:
		return "FLOAT32"
	case metadata.Double:
		return "FLOAT64"
	default:
		return c.PhysicalType.String()
	}
}
