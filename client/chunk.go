package client

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/metrico/quackgrid/grid"
)

var _ grid.Chunk = &ArrowChunk{}

// ArrowChunk is a chunk received as an Arrow IPC stream, possibly split
// over several record batches.
type ArrowChunk struct {
	records []arrow.Record
	offsets []int
	rows    int
	cols    int
}

func (c *ArrowChunk) add(rec arrow.Record) {
	c.records = append(c.records, rec)
	c.offsets = append(c.offsets, c.rows)
	c.rows += int(rec.NumRows())
}

func (c *ArrowChunk) NumRows() int { return c.rows }

func (c *ArrowChunk) NumCols() int { return c.cols }

func (c *ArrowChunk) Value(row, col int) (string, bool) {
	i := sort.Search(len(c.offsets), func(i int) bool { return c.offsets[i] > row }) - 1
	arr := c.records[i].Column(col)
	r := row - c.offsets[i]
	if arr.IsNull(r) {
		return "", false
	}
	return arr.ValueStr(r), true
}

func (c *ArrowChunk) Release() {
	for _, rec := range c.records {
		rec.Release()
	}
	c.records = nil
}
