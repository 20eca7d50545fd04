package data_types

import (
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

func int64Builder(name string, sizeAndCap ...int64) IColumn {
	return colBuilder(func() *Column[int64] {
		return &Column[int64]{
			typeName:  DATA_TYPE_NAME_INT64,
			arrowType: arrow.PrimitiveTypes.Int64,
			getBuilder: func(builder array.Builder) IArrowAppender[int64] {
				return builder.(*array.Int64Builder)
			},
			convert: toInt64,
		}
	}, name, sizeAndCap...)
}

func uint64Builder(name string, sizeAndCap ...int64) IColumn {
	return colBuilder(func() *Column[uint64] {
		return &Column[uint64]{
			typeName:  DATA_TYPE_NAME_UINT64,
			arrowType: arrow.PrimitiveTypes.Uint64,
			getBuilder: func(builder array.Builder) IArrowAppender[uint64] {
				return builder.(*array.Uint64Builder)
			},
			convert: toUint64,
		}
	}, name, sizeAndCap...)
}

func float64Builder(name string, sizeAndCap ...int64) IColumn {
	return colBuilder(func() *Column[float64] {
		return &Column[float64]{
			typeName:  DATA_TYPE_NAME_FLOAT64,
			arrowType: arrow.PrimitiveTypes.Float64,
			getBuilder: func(builder array.Builder) IArrowAppender[float64] {
				return builder.(*array.Float64Builder)
			},
			convert: toFloat64,
		}
	}, name, sizeAndCap...)
}

func toInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(string(v), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toUint64(val any) (uint64, bool) {
	switch v := val.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case string:
		i, err := strconv.ParseUint(v, 10, 64)
		return i, err == nil
	}
	i, ok := toInt64(val)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func toFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	}
	if i, ok := toInt64(val); ok {
		return float64(i), true
	}
	return 0, false
}
