// Package rest implements dialect.Driver over the HTTP endpoint of Crate.
//
//	c, err := rest.Connect([]string{"localhost:4200", "crate-2:4200"})
//	tables, err := c.Tables(ctx)
//
// Every statement is sent as one POST request to the _sql endpoint.
// Endpoints are used in turn; a failed request is not retried on the next
// endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/syssam/crate/dialect"
)

// DefaultPort is the HTTP port of Crate.
const DefaultPort = "4200"

// DefaultSchema is the schema Crate creates user tables in.
const DefaultSchema = "doc"

// Introspection queries.
const (
	tablesQuery  = "SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name"
	columnsQuery = "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position"
)

// Client is a dialect.Driver sending statements to the _sql endpoint. It
// is not safe for concurrent use.
type Client struct {
	endpoints []*url.URL
	next      int
	http      *http.Client
	schema    string
	user      *url.Userinfo
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client requests are sent with.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of each request. Default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithSchema sets the schema used by Tables and TableStructure.
func WithSchema(schema string) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

// WithBasicAuth sets the credentials of every request.
func WithBasicAuth(user, password string) Option {
	return func(c *Client) {
		c.user = url.UserPassword(user, password)
	}
}

// Connect returns a Client for the given endpoints. An endpoint is a
// "host[:port]" pair or an http(s) URL. No request is sent.
func Connect(endpoints []string, opts ...Option) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, &dialect.WireError{Op: "connect", Err: errors.New("no endpoints")}
	}
	c := &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		schema: DefaultSchema,
	}
	for _, e := range endpoints {
		u, err := parseEndpoint(e)
		if err != nil {
			return nil, &dialect.WireError{Op: "connect", Err: err}
		}
		c.endpoints = append(c.endpoints, u)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseEndpoint(e string) (*url.URL, error) {
	e = strings.TrimSpace(e)
	if !strings.Contains(e, "://") {
		e = "http://" + e
	}
	u, err := url.Parse(e)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", e, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", e)
	}
	if u.Port() == "" {
		u.Host += ":" + DefaultPort
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/_sql"
	return u, nil
}

// Endpoints returns the _sql URLs of the client.
func (c *Client) Endpoints() []string {
	urls := make([]string, len(c.endpoints))
	for i, u := range c.endpoints {
		urls[i] = u.String()
	}
	return urls
}

// Dialect implements the dialect.Driver interface.
func (c *Client) Dialect() string {
	return dialect.Crate
}

// Close implements the dialect.Driver interface.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Ping sends "SELECT 1".
func (c *Client) Ping(ctx context.Context) error {
	return c.Query(ctx, "SELECT 1", nil, nil)
}

// Exec implements the dialect.ExecQuerier interface. v may be nil or a
// *dialect.ResultSet.
func (c *Client) Exec(ctx context.Context, query string, args, v any) error {
	return c.do(ctx, "exec", query, args, v)
}

// Query implements the dialect.ExecQuerier interface. v may be nil or a
// *dialect.ResultSet.
func (c *Client) Query(ctx context.Context, query string, args, v any) error {
	return c.do(ctx, "query", query, args, v)
}

// Tables implements the dialect.Driver interface.
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	var rs dialect.ResultSet
	if err := c.Query(ctx, tablesQuery, []any{c.schema}, &rs); err != nil {
		return nil, err
	}
	tables := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		if len(row) > 0 {
			tables = append(tables, fmt.Sprint(row[0]))
		}
	}
	return tables, nil
}

// TableStructure implements the dialect.Driver interface.
func (c *Client) TableStructure(ctx context.Context, table string) ([]dialect.Field, error) {
	var rs dialect.ResultSet
	if err := c.Query(ctx, columnsQuery, []any{c.schema, table}, &rs); err != nil {
		return nil, err
	}
	fields := make([]dialect.Field, 0, rs.Len())
	for _, row := range rs.Rows {
		if len(row) < 2 {
			continue
		}
		fields = append(fields, dialect.Field{Path: fmt.Sprint(row[0]), Type: fmt.Sprint(row[1])})
	}
	return fields, nil
}

// request is the body of a _sql request.
type request struct {
	Stmt string `json:"stmt"`
	Args []any  `json:"args,omitempty"`
}

// response is the body of a _sql response.
type response struct {
	Cols     []string `json:"cols"`
	Rows     [][]any  `json:"rows"`
	RowCount int64    `json:"rowcount"`
	Error    *Error   `json:"error"`
}

func (c *Client) do(ctx context.Context, op, query string, args, v any) error {
	rs, ok := v.(*dialect.ResultSet)
	if v != nil && !ok {
		return fmt.Errorf("dialect/rest: invalid type %T. expect *dialect.ResultSet for v", v)
	}
	argv, ok := args.([]any)
	if args != nil && !ok {
		return fmt.Errorf("dialect/rest: invalid type %T. expect []any for args", args)
	}
	body, err := json.Marshal(request{Stmt: query, Args: argv})
	if err != nil {
		return &dialect.WireError{Op: op, Query: query, Err: err}
	}
	res, err := c.send(ctx, body)
	if err != nil {
		return &dialect.WireError{Op: op, Query: query, Err: err}
	}
	if rs != nil {
		rs.Columns, rs.Rows, rs.RowCount = res.Cols, res.Rows, res.RowCount
	}
	return nil
}

// send posts the body to the next endpoint and decodes the response.
func (c *Client) send(ctx context.Context, body []byte) (*response, error) {
	u := c.endpoints[c.next%len(c.endpoints)]
	c.next++
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.user != nil {
		password, _ := c.user.Password()
		req.SetBasicAuth(c.user.Username(), password)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var res response
	dec := json.NewDecoder(io.LimitReader(resp.Body, 64<<20))
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if res.Error != nil {
		res.Error.Status = resp.StatusCode
		return nil, res.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	for _, row := range res.Rows {
		for i := range row {
			row[i] = number(row[i])
		}
	}
	return &res, nil
}

// number converts the json.Number values of a decoded value to int64 or
// float64.
func number(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = number(v[i])
		}
	case map[string]any:
		for k := range v {
			v[k] = number(v[k])
		}
	}
	return v
}

// Error is an error reported by the _sql endpoint.
type Error struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// CrateCode returns the Crate error code.
func (e *Error) CrateCode() int {
	return e.Code
}

var _ dialect.Driver = (*Client)(nil)
