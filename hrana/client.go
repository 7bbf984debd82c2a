// Package hrana is a minimal Hrana-over-HTTP client.
//
// Each call sends one pipeline made of a single execute step followed by the
// close step the protocol requires, and reads back a single result set.
// There is no connection pooling, batching, transaction support or retry.
package hrana

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/srwicak/freelance-directory/codec"
	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/json"
)

// PipelinePath is appended to the endpoint base URL.
const PipelinePath = "/v2/pipeline"

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how a Client reaches the remote database.
type Config struct {
	// Source provides DATABASE_URL and AUTH_TOKEN. It is consulted on every call.
	Source config.Source

	// HTTPClient overrides the transport. Defaults to http.DefaultClient.
	HTTPClient Doer

	// Codec overrides the body codec. Defaults to JSON, which the protocol requires.
	Codec codec.Codec
}

// Client executes single statements against a Hrana endpoint.
// A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	src   config.Source
	http  Doer
	codec codec.Codec
}

// ResultSet is the raw outcome of one statement.
// Rows hold undecoded cells in the order the endpoint returned them.
type ResultSet struct {
	Columns      []string
	Rows         [][]any
	AffectedRows int64
	LastInsertID string
}

// Map decodes every row of the result set.
func (rs *ResultSet) Map() []*Row {
	return MapRows(rs.Columns, rs.Rows)
}

// New creates a Client.
func New(cfg Config) *Client {
	c := &Client{
		src:   cfg.Source,
		http:  cfg.HTTPClient,
		codec: cfg.Codec,
	}

	if c.src == nil {
		c.src = config.Env()
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.codec == nil {
		c.codec = json.New()
	}

	return c
}

// pipelineRequest is the body POSTed to PipelinePath.
type pipelineRequest struct {
	Requests []streamRequest `json:"requests"`
}

type streamRequest struct {
	Type string     `json:"type"`
	Stmt *statement `json:"stmt,omitempty"`
}

type statement struct {
	SQL  string  `json:"sql"`
	Args []Value `json:"args"`
}

// pipelineResponse is the body returned by PipelinePath.
type pipelineResponse struct {
	Results []streamResult `json:"results"`
}

type streamResult struct {
	Type     string          `json:"type"`
	Response *streamResponse `json:"response"`
	Error    *streamError    `json:"error"`
}

type streamResponse struct {
	Type   string      `json:"type"`
	Result *stmtResult `json:"result"`
}

type streamError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type stmtResult struct {
	Cols             []any   `json:"cols"`
	Columns          []any   `json:"columns"`
	Rows             [][]any `json:"rows"`
	AffectedRowCount int64   `json:"affected_row_count"`
	LastInsertRowID  any     `json:"last_insert_rowid"`
}

// Execute runs one statement with positional parameters and returns its raw
// result set. Exactly one HTTP request is made.
func (c *Client) Execute(ctx context.Context, sql string, args ...any) (*ResultSet, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyStatement
	}

	ep, err := config.ResolveEndpoint(c.src)
	if err != nil {
		return nil, err
	}

	host := hostOf(ep.URL)
	start := time.Now()
	emitExecuteStart(ctx, host, sql, len(args))

	var (
		retErr error
		status int
		rs     *ResultSet
	)
	defer func() {
		rows := 0
		if rs != nil {
			rows = len(rs.Rows)
		}
		emitExecuteComplete(ctx, host, sql, status, rows, time.Since(start), retErr)
	}()

	rs, status, retErr = c.roundTrip(ctx, ep, pipelineRequest{
		Requests: []streamRequest{
			{Type: "execute", Stmt: &statement{SQL: sql, Args: EncodeParams(args)}},
			{Type: "close"},
		},
	})

	return rs, retErr
}

// Query runs one statement and decodes every returned row.
func (c *Client) Query(ctx context.Context, sql string, args ...any) ([]*Row, error) {
	rs, err := c.Execute(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rs.Map(), nil
}

// QueryRow runs one statement and decodes its first row.
// It returns ErrNoRows when nothing matched.
func (c *Client) QueryRow(ctx context.Context, sql string, args ...any) (*Row, error) {
	rs, err := c.Execute(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(rs.Rows) == 0 {
		return nil, ErrNoRows
	}
	return mapRow(rs.Columns, rs.Rows[0]), nil
}

func (c *Client) roundTrip(ctx context.Context, ep config.Endpoint, body pipelineRequest) (*ResultSet, int, error) {
	data, err := c.codec.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL+PipelinePath, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}
	if ep.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+ep.AuthToken)
	}
	req.Header.Set("Content-Type", c.codec.ContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, newTransportError(0, "", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, newTransportError(resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, newTransportError(resp.StatusCode, string(raw), nil)
	}

	var pr pipelineResponse
	if err := c.codec.Unmarshal(raw, &pr); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %w", ErrResponseInvalid, err)
	}

	rs, err := pr.resultSet()
	return rs, resp.StatusCode, err
}

// resultSet extracts the outcome of the execute step.
// The close step's outcome is not inspected.
func (pr *pipelineResponse) resultSet() (*ResultSet, error) {
	if len(pr.Results) == 0 {
		return nil, fmt.Errorf("%w: no results", ErrResponseInvalid)
	}

	first := pr.Results[0]
	if first.Type == "error" {
		return nil, newQueryError(first.Error)
	}

	if first.Response == nil || first.Response.Result == nil {
		return nil, fmt.Errorf("%w: no result in %q step", ErrResponseInvalid, first.Type)
	}

	res := first.Response.Result

	cols := res.Cols
	if len(cols) == 0 {
		cols = res.Columns
	}

	rows := res.Rows
	if rows == nil {
		rows = [][]any{}
	}

	rs := &ResultSet{
		Columns:      columnNames(cols),
		Rows:         rows,
		AffectedRows: res.AffectedRowCount,
	}
	if res.LastInsertRowID != nil {
		rs.LastInsertID = fmt.Sprint(res.LastInsertRowID)
	}

	return rs, nil
}

// columnNames accepts both bare strings and {"name": ...} descriptors.
func columnNames(cols []any) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		switch x := c.(type) {
		case string:
			names = append(names, x)
		case map[string]any:
			name, _ := x["name"].(string)
			names = append(names, name)
		default:
			names = append(names, "")
		}
	}
	return names
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return u.Host
}
