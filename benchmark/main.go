package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/metrico/quackgrid/client"
	"github.com/metrico/quackgrid/grid"
	"github.com/metrico/quackgrid/utils/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var labels = prometheus.Labels{"job": "quackgrid_benchmark"}

var fillDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:        "viewport_fill_duration_seconds",
	Help:        "Time until every cell of a viewport is loaded",
	ConstLabels: labels,
	Buckets:     []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

var totalViewports = promauto.NewCounter(prometheus.CounterOpts{
	Name:        "total_viewports",
	Help:        "Number of viewports loaded",
	ConstLabels: labels,
})

var totalCells = promauto.NewCounter(prometheus.CounterOpts{
	Name:        "total_cells",
	Help:        "Number of cells read",
	ConstLabels: labels,
})

var failedViewports = promauto.NewCounter(prometheus.CounterOpts{
	Name:        "failed_viewports",
	Help:        "Number of viewports not loaded in time",
	ConstLabels: labels,
})

type scroll struct {
	rows, cols int
	step       int
	timeout    time.Duration
}

func main() {
	server := flag.String("server", "http://localhost:8123", "Data service URL")
	path := flag.String("path", "gen.parquet", "Table to scroll through")
	clients := flag.Int("clients", 1, "Number of concurrent viewers")
	duration := flag.Duration("duration", time.Minute, "Benchmark duration")
	metrics := flag.String("metrics", ":9090", "Metrics listen address")
	rows := flag.Int("rows", 40, "Viewport rows")
	cols := flag.Int("cols", 10, "Viewport columns")
	step := flag.Int("step", 20, "Rows scrolled per iteration")
	flag.Parse()
	logger.Init("info")

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metrics, nil); err != nil {
			panic(err)
		}
	}()
	s := scroll{rows: *rows, cols: *cols, step: *step, timeout: 30 * time.Second}
	if err := runBenchmark(*server, *path, *clients, *duration, s); err != nil {
		panic(err)
	}
}

func runBenchmark(server, path string, clients int, timeout time.Duration, s scroll) error {
	c, err := client.New(server)
	if err != nil {
		return err
	}
	var working int32 = 1
	wg := &sync.WaitGroup{}
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := viewer(c, path, s, &working); err != nil {
				errs <- fmt.Errorf("viewer %d: %w", i, err)
			}
		}(i)
	}
	time.Sleep(timeout)
	atomic.StoreInt32(&working, 0)
	wg.Wait()
	close(errs)
	return <-errs
}

// viewer scrolls one table top to bottom, wrapping around, until stopped.
func viewer(c *client.Client, path string, s scroll, working *int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	tbl, err := c.OpenTable(ctx, grid.LoadingParams{Path: path, LoadingRepr: "…"}, nil, grid.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer tbl.Close()
	events, err := tbl.Subscribe()
	if err != nil {
		return err
	}
	if err = tbl.WaitReady(ctx); err != nil {
		return err
	}
	ext, err := tbl.Extent()
	if err != nil {
		return err
	}
	cols := min(s.cols, ext.NumCols)
	row := 0
	for atomic.LoadInt32(working) == 1 {
		rows := min(s.rows, ext.NumRows-row)
		start := time.Now()
		if err := fillViewport(tbl, events, row, rows, cols, s.timeout); err != nil {
			failedViewports.Inc()
			slog.Warn("viewport not loaded", "path", path, "row", row, "error", err)
		} else {
			fillDuration.Observe(time.Since(start).Seconds())
			totalViewports.Inc()
			totalCells.Add(float64(rows * cols))
		}
		row += s.step
		if row >= ext.NumRows {
			row = 0
		}
	}
	return nil
}

func fillViewport(tbl *grid.Table, events <-chan grid.Event, row, rows, cols int, timeout time.Duration) error {
	loading := tbl.Params().LoadingRepr
	deadline := time.After(timeout)
	for {
		missing := false
		for r := row; r < row+rows; r++ {
			for c := 0; c < cols; c++ {
				missing = tbl.ReadCell(r, c) == loading || missing
			}
		}
		if !missing {
			return nil
		}
		select {
		case ev, ok := <-events:
			if !ok {
				return grid.ErrClosed
			}
			if ev.Kind == grid.InitFailed {
				return ev.Err
			}
		case <-deadline:
			return fmt.Errorf("timeout after %v", timeout)
		}
	}
}
