package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/metrico/quackgrid/client"
	"github.com/metrico/quackgrid/config"
	"github.com/metrico/quackgrid/grid"
	"github.com/metrico/quackgrid/model"
	"github.com/metrico/quackgrid/utils/logger"
)

type viewerFlags struct {
	server    *string
	profile   *string
	delimiter *string
	table     *string
	row       *int
	col       *int
	rows      *int
	cols      *int
	rowChunk  *int
	colChunk  *int
	null      *string
	timeout   *time.Duration
	logLevel  *string
}

func initFlags(fs *flag.FlagSet, args []string) (*viewerFlags, error) {
	f := &viewerFlags{}
	f.server = fs.String("server", "http://localhost:8123", "Data service URL")
	f.profile = fs.String("profile", "", "YAML viewer profile")
	f.delimiter = fs.String("delimiter", "", "CSV delimiter. Default: server default")
	f.table = fs.String("table", "", "SQLite table. Default: first table")
	f.row = fs.Int("row", 0, "First row shown")
	f.col = fs.Int("col", 0, "First column shown")
	f.rows = fs.Int("rows", 20, "Number of rows shown")
	f.cols = fs.Int("cols", 8, "Number of columns shown")
	f.rowChunk = fs.Int("row-chunk", grid.DefaultRowChunkSize, "Rows per chunk")
	f.colChunk = fs.Int("col-chunk", grid.DefaultColChunkSize, "Columns per chunk")
	f.null = fs.String("null", "", "Text shown for null cells")
	f.timeout = fs.Duration("timeout", 30*time.Second, "Time allowed to load the viewport")
	f.logLevel = fs.String("log-level", "warn", "Log level")
	return f, fs.Parse(args)
}

// buildProfile merges the profile file with the flags set on the command
// line, flags taking precedence.
func buildProfile(fs *flag.FlagSet, f *viewerFlags) (*model.Profile, error) {
	p := &model.Profile{
		Server:       *f.server,
		RowChunkSize: *f.rowChunk,
		ColChunkSize: *f.colChunk,
		NullRepr:     *f.null,
		Viewport:     model.Viewport{Row: *f.row, Col: *f.col, Rows: *f.rows, Cols: *f.cols},
	}
	if *f.profile != "" {
		loaded, err := config.LoadProfile(*f.profile)
		if err != nil {
			return nil, err
		}
		set := map[string]bool{}
		fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
		merge := func(name string, dst *string, v string) {
			if !set[name] && v != "" {
				*dst = v
			}
		}
		mergeInt := func(name string, dst *int, v int) {
			if !set[name] && v != 0 {
				*dst = v
			}
		}
		merge("server", &p.Server, loaded.Server)
		merge("null", &p.NullRepr, loaded.NullRepr)
		mergeInt("row-chunk", &p.RowChunkSize, loaded.RowChunkSize)
		mergeInt("col-chunk", &p.ColChunkSize, loaded.ColChunkSize)
		mergeInt("row", &p.Viewport.Row, loaded.Viewport.Row)
		mergeInt("col", &p.Viewport.Col, loaded.Viewport.Col)
		mergeInt("rows", &p.Viewport.Rows, loaded.Viewport.Rows)
		mergeInt("cols", &p.Viewport.Cols, loaded.Viewport.Cols)
		p.Path, p.Delimiter, p.TableName, p.LoadingRepr = loaded.Path, loaded.Delimiter, loaded.TableName, loaded.LoadingRepr
	}
	if fs.NArg() > 0 {
		p.Path = fs.Arg(0)
	}
	if *f.delimiter != "" {
		p.Delimiter = *f.delimiter
	}
	if *f.table != "" {
		p.TableName = *f.table
	}
	if p.Path == "" {
		return nil, fmt.Errorf("usage: quackgrid [flags] <path>")
	}
	if p.LoadingRepr == "" {
		p.LoadingRepr = "…"
	}
	return p, nil
}

// readOptions returns the options requested by the profile, nil to use the
// server defaults.
func readOptions(p *model.Profile) (model.ReadOptions, error) {
	format, err := model.FormatFromFilename(p.Path)
	if err != nil {
		return nil, err
	}
	switch {
	case format == model.FormatCsv && p.Delimiter != "":
		return model.CsvOptions{Delimiter: p.Delimiter}, nil
	case format == model.FormatSqlite && p.TableName != "":
		return model.SqliteOptions{TableName: p.TableName}, nil
	}
	return nil, nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("quackgrid", flag.ContinueOnError)
	f, err := initFlags(fs, args)
	if err != nil {
		return err
	}
	logger.Init(*f.logLevel)
	p, err := buildProfile(fs, f)
	if err != nil {
		return err
	}
	opts, err := readOptions(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *f.timeout)
	defer cancel()
	c, err := client.New(p.Server)
	if err != nil {
		return err
	}
	tbl, err := c.OpenTable(ctx, grid.LoadingParams{
		Path:         p.Path,
		RowChunkSize: p.RowChunkSize,
		ColChunkSize: p.ColChunkSize,
		LoadingRepr:  p.LoadingRepr,
		NullRepr:     p.NullRepr,
	}, opts, grid.WithLogger(slog.Default()))
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

	vp := clip(tbl, p.Viewport)
	start := time.Now()
	if err = fill(ctx, tbl, events, vp); err != nil {
		return err
	}
	slog.Info("viewport loaded", "path", p.Path, "rows", vp.Rows, "cols", vp.Cols, "took", time.Since(start))
	fmt.Printf("%s: %d rows x %d columns\n", p.Path, tbl.RowCount(grid.RegionBody), tbl.ColumnCount(grid.RegionBody))
	return render(os.Stdout, tbl, vp)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
