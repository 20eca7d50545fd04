package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	jsoniter "github.com/json-iterator/go"

	"github.com/metrico/quackgrid/grid"
	"github.com/metrico/quackgrid/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ grid.Service = &Client{}

// Client talks to the table data service over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	mem     memory.Allocator
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the transport timeout of every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

func WithAllocator(mem memory.Allocator) Option {
	return func(c *Client) {
		c.mem = mem
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	c := &Client{baseURL: u, http: &http.Client{Timeout: time.Minute}, mem: memory.DefaultAllocator}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) endpoint(route, path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + route + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &grid.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &grid.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &grid.NetworkError{
			Op:         http.MethodGet,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}
	return resp, nil
}

// GetStats fetches the size and schema of a table.
func (c *Client) GetStats(ctx context.Context, path string, opts model.ReadOptions) (*grid.Extent, error) {
	resp, err := c.get(ctx, c.endpoint("/arrow/stats", path, optionValues(opts)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var stats model.StatsResponse
	if err = json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, &grid.DecodeError{Field: "stats", Err: err}
	}
	schema, err := DecodeSchema(stats.Schema)
	if err != nil {
		return nil, err
	}
	return &grid.Extent{NumRows: int(stats.NumRows), NumCols: stats.NumCols, Schema: GridSchema(schema)}, nil
}

// DecodeSchema decodes a schema sent as a base64 Arrow IPC stream.
func DecodeSchema(info model.SchemaInfo) (*arrow.Schema, error) {
	if info.Encoding != model.SchemaEncoding {
		return nil, &grid.DecodeError{Field: "schema.encoding", Want: model.SchemaEncoding, Got: info.Encoding}
	}
	if info.Mimetype != model.ArrowStreamMimetype {
		return nil, &grid.DecodeError{Field: "schema.mimetype", Want: model.ArrowStreamMimetype, Got: info.Mimetype}
	}
	data, err := base64.StdEncoding.DecodeString(info.Data)
	if err != nil {
		return nil, &grid.DecodeError{Field: "schema.data", Err: err}
	}
	r, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &grid.DecodeError{Field: "schema.data", Err: err}
	}
	defer r.Release()
	return r.Schema(), nil
}

// GridSchema lists the fields of an arrow schema.
func GridSchema(schema *arrow.Schema) grid.Schema {
	fields := make(grid.Schema, schema.NumFields())
	for i, f := range schema.Fields() {
		fields[i] = grid.Field{Name: f.Name, Type: f.Type.String()}
	}
	return fields
}

func optionValues(opts model.ReadOptions) url.Values {
	if opts == nil {
		return url.Values{}
	}
	return opts.Values()
}

// GetChunk fetches one chunk of a table.
func (c *Client) GetChunk(ctx context.Context, req grid.ChunkRequest) (grid.Chunk, error) {
	query := optionValues(req.Options)
	query.Set("row_chunk_size", strconv.Itoa(req.RowChunkSize))
	query.Set("row_chunk", strconv.Itoa(req.RowChunk))
	query.Set("col_chunk_size", strconv.Itoa(req.ColChunkSize))
	query.Set("col_chunk", strconv.Itoa(req.ColChunk))
	endpoint := c.endpoint("/arrow/stream", req.Path, query)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r, err := ipc.NewReader(resp.Body, ipc.WithAllocator(c.mem))
	if err != nil {
		return nil, c.readError(ctx, endpoint, err)
	}
	defer r.Release()
	chunk := &ArrowChunk{cols: r.Schema().NumFields()}
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		chunk.add(rec)
	}
	if err = r.Err(); err != nil {
		chunk.Release()
		return nil, c.readError(ctx, endpoint, err)
	}
	return chunk, nil
}

// readError tells transport failures while reading a body apart from
// malformed payloads.
func (c *Client) readError(ctx context.Context, endpoint string, err error) error {
	if ctx.Err() != nil || errors.Is(err, io.ErrUnexpectedEOF) {
		return &grid.NetworkError{Op: http.MethodGet, URL: endpoint, Err: err}
	}
	return &grid.DecodeError{Field: "chunk", Err: err}
}

type fileInfoResponse struct {
	Format     string            `json:"format"`
	Info       model.FileInfo    `json:"info"`
	ReadParams map[string]string `json:"read_params"`
}

// FileInfo fetches the read option choices of a file and its default
// read options.
func (c *Client) FileInfo(ctx context.Context, path string) (*model.FileInfoResponse, error) {
	resp, err := c.get(ctx, c.endpoint("/file/info", path, nil))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw fileInfoResponse
	if err = json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &grid.DecodeError{Field: "file info", Err: err}
	}
	format := model.FileFormat(raw.Format)
	if format == "" {
		format, err = model.FormatFromFilename(path)
		if err != nil {
			return nil, err
		}
	}
	values := url.Values{}
	for k, v := range raw.ReadParams {
		values.Set(k, v)
	}
	return &model.FileInfoResponse{
		Format:     format,
		Info:       raw.Info,
		ReadParams: model.ReadOptionsFor(format, values),
	}, nil
}

// OpenTable creates a table over path. When opts is nil the default read
// options reported by the server are used.
func (c *Client) OpenTable(ctx context.Context, params grid.LoadingParams, opts model.ReadOptions,
	options ...grid.Option) (*grid.Table, error) {
	if opts == nil {
		info, err := c.FileInfo(ctx, params.Path)
		if err != nil {
			return nil, err
		}
		opts = info.ReadParams
	}
	return grid.New(c, params, opts, options...)
}
