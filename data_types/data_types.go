package data_types

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

const DATA_TYPE_NAME_INT64 = "BIGINT"
const DATA_TYPE_NAME_UINT64 = "UBIGINT"
const DATA_TYPE_NAME_FLOAT64 = "DOUBLE"
const DATA_TYPE_NAME_BOOL = "BOOLEAN"
const DATA_TYPE_NAME_STRING = "VARCHAR"

// IColumn accumulates the scanned values of one result column and writes
// them to an arrow builder.
type IColumn interface {
	GetName() string
	GetTypeName() string
	ArrowDataType() arrow.DataType
	GetLength() int64
	AppendNull()
	// AppendOne appends a value as returned by a database/sql driver.
	// Values that cannot be converted are appended as null.
	AppendOne(val any)
	WriteToBatch(batch array.Builder) error
}

type ColumnBuilder func(name string, sizeAndCap ...int64) IColumn

var DataTypes = map[string]ColumnBuilder{
	"BIGINT":   int64Builder,
	"INT8":     int64Builder,
	"LONG":     int64Builder,
	"INTEGER":  int64Builder,
	"INT4":     int64Builder,
	"INT":      int64Builder,
	"SIGNED":   int64Builder,
	"SMALLINT": int64Builder,
	"INT2":     int64Builder,
	"SHORT":    int64Builder,
	"TINYINT":  int64Builder,
	"INT1":     int64Builder,

	"UBIGINT":   uint64Builder,
	"UINTEGER":  uint64Builder,
	"USMALLINT": uint64Builder,
	"UTINYINT":  uint64Builder,

	"DOUBLE": float64Builder,
	"FLOAT8": float64Builder,
	"FLOAT":  float64Builder,
	"FLOAT4": float64Builder,
	"REAL":   float64Builder,

	"BOOLEAN": boolBuilder,
	"BOOL":    boolBuilder,
	"LOGICAL": boolBuilder,

	"VARCHAR": strBuilder,
	"STRING":  strBuilder,
	"CHAR":    strBuilder,
	"BPCHAR":  strBuilder,
	"TEXT":    strBuilder,
}

// BuilderFor returns the column builder of a database type name. Types
// without a native mapping (dates, decimals, blobs, nested types) are
// rendered as strings.
func BuilderFor(typeName string) ColumnBuilder {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if b, ok := DataTypes[name]; ok {
		return b
	}
	return strBuilder
}

// BuilderForAffinity maps a declared SQLite column type using SQLite's
// type affinity rules.
func BuilderForAffinity(decl string) ColumnBuilder {
	d := strings.ToUpper(decl)
	switch {
	case strings.Contains(d, "INT"):
		return int64Builder
	case strings.Contains(d, "CHAR"), strings.Contains(d, "CLOB"), strings.Contains(d, "TEXT"):
		return strBuilder
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"):
		return float64Builder
	case strings.Contains(d, "BOOL"):
		return boolBuilder
	}
	return strBuilder
}
