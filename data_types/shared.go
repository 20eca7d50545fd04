package data_types

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func FastFillArray[T any](arr []T, data T) []T {
	if len(arr) == 0 {
		return arr
	}
	arr[0] = data
	for i := 1; i < len(arr); i *= 2 {
		copy(arr[i:], arr[:i])
	}
	return arr
}

// Schema builds the arrow schema of a set of columns.
func Schema(cols []IColumn) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.GetName(), Type: c.ArrowDataType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord writes the columns into a new record. All columns must have the
// same length.
func ToRecord(mem memory.Allocator, cols []IColumn) (arrow.Record, error) {
	schema := Schema(cols)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	var rows int64 = -1
	for i, c := range cols {
		if rows >= 0 && c.GetLength() != rows {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", c.GetName(), c.GetLength(), rows)
		}
		rows = c.GetLength()
		if err := c.WriteToBatch(b.Field(i)); err != nil {
			return nil, err
		}
	}
	return b.NewRecord(), nil
}
