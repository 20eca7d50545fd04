package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/metrico/quackgrid/grid"
	"github.com/metrico/quackgrid/model"
)

// clip restricts the viewport to the table.
func clip(tbl *grid.Table, vp model.Viewport) model.Viewport {
	rows, cols := tbl.RowCount(grid.RegionBody), tbl.ColumnCount(grid.RegionBody)
	vp.Row = max(0, min(vp.Row, rows))
	vp.Col = max(0, min(vp.Col, cols))
	vp.Rows = max(0, min(vp.Rows, rows-vp.Row))
	vp.Cols = max(0, min(vp.Cols, cols-vp.Col))
	return vp
}

// pending counts the viewport cells that still show the loading text.
func pending(tbl *grid.Table, vp model.Viewport) int {
	loading := tbl.Params().LoadingRepr
	n := 0
	for r := vp.Row; r < vp.Row+vp.Rows; r++ {
		for c := vp.Col; c < vp.Col+vp.Cols; c++ {
			if tbl.ReadCell(r, c) == loading {
				n++
			}
		}
	}
	return n
}

// fill reads the viewport until every cell is loaded. Each read requests
// the missing chunks; events wake the loop up when chunks arrive.
func fill(ctx context.Context, tbl *grid.Table, events <-chan grid.Event, vp model.Viewport) error {
	for pending(tbl, vp) > 0 {
		select {
		case ev, ok := <-events:
			if !ok {
				return grid.ErrClosed
			}
			if ev.Kind == grid.InitFailed {
				return ev.Err
			}
		case <-ctx.Done():
			return fmt.Errorf("viewport not loaded: %w", ctx.Err())
		}
	}
	return nil
}

func render(w io.Writer, tbl *grid.Table, vp model.Viewport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{tbl.Data(grid.RegionCornerHeader, 0, 0)}
	for c := vp.Col; c < vp.Col+vp.Cols; c++ {
		header = append(header, tbl.Data(grid.RegionColumnHeader, 0, c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for r := vp.Row; r < vp.Row+vp.Rows; r++ {
		line := []string{tbl.Data(grid.RegionRowHeader, r, 0)}
		for c := vp.Col; c < vp.Col+vp.Cols; c++ {
			line = append(line, sanitize(tbl.Data(grid.RegionBody, r, c)))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	return tw.Flush()
}

func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
