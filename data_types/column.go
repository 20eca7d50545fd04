package data_types

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"golang.org/x/exp/constraints"
)

type IArrowAppender[T any] interface {
	AppendValues(values []T, valid []bool)
}

var _ IColumn = &Column[int64]{}

type Column[T constraints.Ordered] struct {
	data       []T
	valids     []bool
	name       string
	typeName   string
	arrowType  arrow.DataType
	getBuilder func(builder array.Builder) IArrowAppender[T]
	convert    func(val any) (T, bool)
}

func colBuilder[T constraints.Ordered](createColumn func() *Column[T], name string, sizeAndCap ...int64) IColumn {
	col := createColumn()
	col.name = name
	col.InitializeData(sizeAndCap...)
	return col
}

// InitializeData reserves capacity. The column starts empty.
func (c *Column[T]) InitializeData(sizeAndCap ...int64) {
	var size int64 = 1000
	if len(sizeAndCap) > 0 {
		size = sizeAndCap[0]
	}
	c.data = make([]T, 0, size)
	c.valids = make([]bool, 0, size)
}

func (c *Column[T]) GetName() string {
	return c.name
}

func (c *Column[T]) GetTypeName() string {
	return c.typeName
}

func (c *Column[T]) ArrowDataType() arrow.DataType {
	return c.arrowType
}

func (c *Column[T]) GetLength() int64 {
	return int64(len(c.data))
}

func (c *Column[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.valids = append(c.valids, false)
}

func (c *Column[T]) AppendOne(val any) {
	if val == nil {
		c.AppendNull()
		return
	}
	v, ok := c.convert(val)
	if !ok {
		c.AppendNull()
		return
	}
	c.data = append(c.data, v)
	c.valids = append(c.valids, true)
}

// Append adds already typed values, all valid.
func (c *Column[T]) Append(data []T) {
	lenBefore := len(c.valids)
	c.data = append(c.data, data...)
	c.valids = append(c.valids, make([]bool, len(data))...)
	FastFillArray(c.valids[lenBefore:], true)
}

func (c *Column[T]) GetVal(i int64) (T, bool) {
	return c.data[i], c.valids[i]
}

func (c *Column[T]) WriteToBatch(batch array.Builder) error {
	c.getBuilder(batch).AppendValues(c.data, c.valids)
	return nil
}
