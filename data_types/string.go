package data_types

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

func strBuilder(name string, sizeAndCap ...int64) IColumn {
	return colBuilder(func() *Column[string] {
		return &Column[string]{
			typeName:  DATA_TYPE_NAME_STRING,
			arrowType: arrow.BinaryTypes.String,
			getBuilder: func(builder array.Builder) IArrowAppender[string] {
				return builder.(*array.StringBuilder)
			},
			convert: toString,
		}
	}, name, sizeAndCap...)
}

func toString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return v.String(), true
	}
	return fmt.Sprint(val), true
}
