package data_types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Bool is kept apart from Column since bool is not ordered.
type Bool struct {
	data   []bool
	valids []bool
	name   string
}

var _ IColumn = &Bool{}

func boolBuilder(name string, sizeAndCap ...int64) IColumn {
	var size int64 = 1000
	if len(sizeAndCap) > 0 {
		size = sizeAndCap[0]
	}
	return &Bool{name: name, data: make([]bool, 0, size), valids: make([]bool, 0, size)}
}

func (b *Bool) GetName() string               { return b.name }
func (b *Bool) GetTypeName() string           { return DATA_TYPE_NAME_BOOL }
func (b *Bool) ArrowDataType() arrow.DataType { return arrow.FixedWidthTypes.Boolean }
func (b *Bool) GetLength() int64              { return int64(len(b.data)) }

func (b *Bool) AppendNull() {
	b.data = append(b.data, false)
	b.valids = append(b.valids, false)
}

func (b *Bool) AppendOne(val any) {
	var v bool
	switch x := val.(type) {
	case bool:
		v = x
	case nil:
		b.AppendNull()
		return
	default:
		i, ok := toInt64(val)
		if !ok {
			b.AppendNull()
			return
		}
		v = i != 0
	}
	b.data = append(b.data, v)
	b.valids = append(b.valids, true)
}

func (b *Bool) WriteToBatch(batch array.Builder) error {
	batch.(*array.BooleanBuilder).AppendValues(b.data, b.valids)
	return nil
}
