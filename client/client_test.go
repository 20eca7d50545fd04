package client

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/metrico/quackgrid/handler"
	"github.com/metrico/quackgrid/grid"
	"github.com/metrico/quackgrid/model"
	"github.com/metrico/quackgrid/router"
	"github.com/metrico/quackgrid/service"
	"github.com/metrico/quackgrid/service/db"
	"github.com/metrico/quackgrid/storage"
	"github.com/metrico/quackgrid/utils/sample"
)

const rows = 50

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	rec := sample.Table(memory.DefaultAllocator, rows)
	defer rec.Release()
	require.NoError(t, sample.WriteCSV(filepath.Join(root, "gen.csv"), rec, ';'))
	require.NoError(t, sample.WriteParquet(filepath.Join(root, "gen.parquet"), rec))
	require.NoError(t, sample.WriteSqlite(filepath.Join(root, "gen.sqlite"), "people", rec))

	duck, err := db.ConnectDuckDB("")
	require.NoError(t, err)
	store, err := storage.NewFSStore(root)
	require.NoError(t, err)
	svc := service.NewTableService(store, duck)
	r := router.NewRouter()
	handlers.Init(r, svc)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		svc.Close()
		duck.Close()
	})
	return srv
}

func TestGetStats(t *testing.T) {
	srv := newServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	ext, err := c.GetStats(context.Background(), "gen.parquet", model.NoOptions{For: model.FormatParquet})
	require.NoError(t, err)
	assert.Equal(t, rows, ext.NumRows)
	assert.Equal(t, 5, ext.NumCols)
	assert.Equal(t, []string{"name", "address", "age", "id", "score"}, ext.Schema.Names())
	assert.Equal(t, "int64", ext.Schema[2].Type)
}

func TestGetChunk(t *testing.T) {
	srv := newServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	chunk, err := c.GetChunk(context.Background(), grid.ChunkRequest{
		Path:         "gen.csv",
		Options:      model.CsvOptions{Delimiter: ";"},
		RowChunk:     2,
		RowChunkSize: 20,
		ColChunk:     1,
		ColChunkSize: 3,
	})
	require.NoError(t, err)
	defer chunk.(*ArrowChunk).Release()
	assert.Equal(t, 10, chunk.NumRows())
	assert.Equal(t, 2, chunk.NumCols())
	v, ok := chunk.Value(0, 0)
	assert.True(t, ok)
	assert.Equal(t, sample.ID(40), v)
	_, ok = chunk.Value(9, 1)
	assert.False(t, ok)
}

func TestFileInfo(t *testing.T) {
	srv := newServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)

	info, err := c.FileInfo(context.Background(), "gen.sqlite")
	require.NoError(t, err)
	assert.Equal(t, model.FormatSqlite, info.Format)
	assert.Equal(t, []string{"people"}, info.Info.TableNames)
	assert.Equal(t, model.SqliteOptions{TableName: "people"}, info.ReadParams)

	info, err = c.FileInfo(context.Background(), "gen.csv")
	require.NoError(t, err)
	assert.Equal(t, model.CsvOptions{Delimiter: ","}, info.ReadParams)
	assert.Equal(t, model.DefaultDelimiters, info.Info.Delimiters)
}

func TestOpenTable(t *testing.T) {
	srv := newServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tbl, err := c.OpenTable(ctx, grid.LoadingParams{Path: "gen.sqlite", RowChunkSize: 16, ColChunkSize: 2, NullRepr: "-"}, nil)
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, tbl.WaitReady(ctx))

	assert.Equal(t, rows, tbl.RowCount(grid.RegionBody))
	assert.Equal(t, "age", tbl.Data(grid.RegionColumnHeader, 0, 2))
	assert.Equal(t, sample.Name(0), tbl.ReadCell(0, 0))
	assert.Eventually(t, func() bool { return tbl.ReadCell(45, 3) == sample.ID(45) }, 5*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return tbl.ReadCell(49, 4) == "-" }, 5*time.Second, 5*time.Millisecond)
}

func TestOpenTableSemicolon(t *testing.T) {
	srv := newServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tbl, err := c.OpenTable(ctx, grid.LoadingParams{Path: "gen.csv"}, nil)
	require.NoError(t, err)
	defer tbl.Close()
	require.NoError(t, tbl.WaitReady(ctx))
	assert.Equal(t, 1, tbl.ColumnCount(grid.RegionBody), "comma does not split the semicolon file")

	require.NoError(t, tbl.SetReadOptions(model.CsvOptions{Delimiter: ";"}))
	require.NoError(t, tbl.WaitReady(ctx))
	assert.Equal(t, 5, tbl.ColumnCount(grid.RegionBody))
	assert.Equal(t, sample.Address(3), tbl.ReadCell(3, 1))
}

func TestDecodeSchema(t *testing.T) {
	_, err := DecodeSchema(model.SchemaInfo{Encoding: "hex", Mimetype: model.ArrowStreamMimetype})
	var decodeErr *grid.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "hex", decodeErr.Got)

	_, err = DecodeSchema(model.SchemaInfo{Encoding: model.SchemaEncoding, Mimetype: "text/plain"})
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "schema.mimetype", decodeErr.Field)

	_, err = DecodeSchema(model.SchemaInfo{
		Encoding: model.SchemaEncoding,
		Mimetype: model.ArrowStreamMimetype,
		Data:     base64.StdEncoding.EncodeToString([]byte("garbage")),
	})
	assert.ErrorAs(t, err, &decodeErr)
}

func TestNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such file", http.StatusNotFound)
	}))
	defer srv.Close()
	c, err := New(srv.URL, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.GetStats(context.Background(), "a.csv", nil)
	var netErr *grid.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
	assert.Contains(t, netErr.Error(), "no such file")

	srv.Close()
	_, err = c.GetChunk(context.Background(), grid.ChunkRequest{Path: "a.csv", RowChunkSize: 1, ColChunkSize: 1})
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestNewRejectsScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}
