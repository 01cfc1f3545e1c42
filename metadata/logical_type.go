package metadata

import "fmt"

// TimeUnit is the precision of a TIME or TIMESTAMP annotation.
type TimeUnit uint8

const (
	// UnknownUnit is a unit this decoder does not recognize.
	UnknownUnit TimeUnit = iota
	// Seconds never appears in Parquet files; it exists so second-precision
	// values share the formatting path.
	Seconds
	Millis
	Micros
	Nanos
)

func (u TimeUnit) String() string {
	switch u {
	case Seconds:
		return "SECONDS"
	case Millis:
		return "MILLIS"
	case Micros:
		return "MICROS"
	case Nanos:
		return "NANOS"
	default:
		return "UNKNOWN"
	}
}

// PerSecond returns the number of ticks of u in one second, or 0 for
// UnknownUnit.
func (u TimeUnit) PerSecond() int64 {
	switch u {
	case Seconds:
		return 1
	case Millis:
		return 1e3
	case Micros:
		return 1e6
	case Nanos:
		return 1e9
	default:
		return 0
	}
}

// LogicalKind selects the variant of a LogicalType.
type LogicalKind uint8

const (
	LogicalOther LogicalKind = iota // a union member this decoder does not know
	LogicalString
	LogicalMap
	LogicalList
	LogicalEnum
	LogicalDecimal
	LogicalDate
	LogicalTime
	LogicalTimestamp
	LogicalInteger
	LogicalUnknown // the Parquet UNKNOWN (always-null) type
	LogicalJSON
	LogicalBSON
	LogicalUUID
	LogicalFloat16
	LogicalVariant
	LogicalGeometry
	LogicalGeography
)

var logicalNames = map[LogicalKind]string{
	LogicalOther:     "OTHER",
	LogicalString:    "STRING",
	LogicalMap:       "MAP",
	LogicalList:      "LIST",
	LogicalEnum:      "ENUM",
	LogicalDecimal:   "DECIMAL",
	LogicalDate:      "DATE",
	LogicalTime:      "TIME",
	LogicalTimestamp: "TIMESTAMP",
	LogicalInteger:   "INTEGER",
	LogicalUnknown:   "UNKNOWN",
	LogicalJSON:      "JSON",
	LogicalBSON:      "BSON",
	LogicalUUID:      "UUID",
	LogicalFloat16:   "FLOAT16",
	LogicalVariant:   "VARIANT",
	LogicalGeometry:  "GEOMETRY",
	LogicalGeography: "GEOGRAPHY",
}

func (k LogicalKind) String() string { return logicalNames[k] }

// LogicalType is the decoded logical type union. Only the fields relevant to
// Kind are set.
type LogicalType struct {
	Kind LogicalKind

	// TIME and TIMESTAMP.
	Unit          TimeUnit
	AdjustedToUTC bool

	// DECIMAL.
	Precision int32
	Scale     int32

	// INTEGER.
	BitWidth int8
	Signed   bool
}

// String renders the annotation the way parquet tools usually print it,
// e.g. "TIMESTAMP(MICROS,true)" or "DECIMAL(10,2)".
func (l *LogicalType) String() string {
	if l == nil {
		return ""
	}
	switch l.Kind {
	case LogicalTime, LogicalTimestamp:
		return fmt.Sprintf("%s(%s,%t)", l.Kind, l.Unit, l.AdjustedToUTC)
	case LogicalDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", l.Precision, l.Scale)
	case LogicalInteger:
		return fmt.Sprintf("INTEGER(%d,%t)", l.BitWidth, l.Signed)
	default:
		return l.Kind.String()
	}
}

type empty struct{}

type decimalAnnotation struct {
	Scale     int32 `thrift:"1,required"`
	Precision int32 `thrift:"2,required"`
}

type timeUnitAnnotation struct {
	Millis *empty `thrift:"1"`
	Micros *empty `thrift:"2"`
	Nanos  *empty `thrift:"3"`
}

type timeAnnotation struct {
	AdjustedToUTC bool               `thrift:"1,required"`
	Unit          timeUnitAnnotation `thrift:"2,required"`
}

type intAnnotation struct {
	BitWidth int8 `thrift:"1,required"`
	Signed   bool `thrift:"2,required"`
}

// annotation is the LogicalType union as written in the footer. Exactly
// one member is set; members unknown to this decoder are skipped and
// leave all of them nil.
type annotation struct {
	String    *empty             `thrift:"1"`
	Map       *empty             `thrift:"2"`
	List      *empty             `thrift:"3"`
	Enum      *empty             `thrift:"4"`
	Decimal   *decimalAnnotation `thrift:"5"`
	Date      *empty             `thrift:"6"`
	Time      *timeAnnotation    `thrift:"7"`
	Timestamp *timeAnnotation    `thrift:"8"`
	Integer   *intAnnotation     `thrift:"10"`
	Unknown   *empty             `thrift:"11"`
	JSON      *empty             `thrift:"12"`
	BSON      *empty             `thrift:"13"`
	UUID      *empty             `thrift:"14"`
	Float16   *empty             `thrift:"15"`
	Variant   *empty             `thrift:"16"`
	Geometry  *empty             `thrift:"17"`
	Geography *empty             `thrift:"18"`
}

func (a *annotation) markers() map[LogicalKind]**empty {
	return map[LogicalKind]**empty{
		LogicalString:    &a.String,
		LogicalMap:       &a.Map,
		LogicalList:      &a.List,
		LogicalEnum:      &a.Enum,
		LogicalDate:      &a.Date,
		LogicalUnknown:   &a.Unknown,
		LogicalJSON:      &a.JSON,
		LogicalBSON:      &a.BSON,
		LogicalUUID:      &a.UUID,
		LogicalFloat16:   &a.Float16,
		LogicalVariant:   &a.Variant,
		LogicalGeometry:  &a.Geometry,
		LogicalGeography: &a.Geography,
	}
}

// logicalType flattens the union.
func (a *annotation) logicalType() *LogicalType {
	switch {
	case a.Decimal != nil:
		return &LogicalType{Kind: LogicalDecimal, Scale: a.Decimal.Scale, Precision: a.Decimal.Precision}
	case a.Time != nil:
		return &LogicalType{Kind: LogicalTime, Unit: a.Time.Unit.unit(), AdjustedToUTC: a.Time.AdjustedToUTC}
	case a.Timestamp != nil:
		return &LogicalType{Kind: LogicalTimestamp, Unit: a.Timestamp.Unit.unit(), AdjustedToUTC: a.Timestamp.AdjustedToUTC}
	case a.Integer != nil:
		return &LogicalType{Kind: LogicalInteger, BitWidth: a.Integer.BitWidth, Signed: a.Integer.Signed}
	}
	for kind, m := range a.markers() {
		if *m != nil {
			return &LogicalType{Kind: kind}
		}
	}
	return &LogicalType{Kind: LogicalOther}
}

func (u timeUnitAnnotation) unit() TimeUnit {
	switch {
	case u.Millis != nil:
		return Millis
	case u.Micros != nil:
		return Micros
	case u.Nanos != nil:
		return Nanos
	default:
		return UnknownUnit
	}
}

func annotationOf(lt *LogicalType) *annotation {
	a := &annotation{}
	switch lt.Kind {
	case LogicalDecimal:
		a.Decimal = &decimalAnnotation{Scale: lt.Scale, Precision: lt.Precision}
	case LogicalTime, LogicalTimestamp:
		t := &timeAnnotation{AdjustedToUTC: lt.AdjustedToUTC}
		switch lt.Unit {
		case Millis:
			t.Unit.Millis = &empty{}
		case Micros:
			t.Unit.Micros = &empty{}
		case Nanos:
			t.Unit.Nanos = &empty{}
		}
		if lt.Kind == LogicalTime {
			a.Time = t
		} else {
			a.Timestamp = t
		}
	case LogicalInteger:
		a.Integer = &intAnnotation{BitWidth: lt.BitWidth, Signed: lt.Signed}
	default:
		if p, ok := a.markers()[lt.Kind]; ok {
			*p = &empty{}
		}
	}
	return a
}
