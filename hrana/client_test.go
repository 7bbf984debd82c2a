package hrana

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwicak/freelance-directory/config"
)

// setupServer starts a pipeline endpoint answering with body and status.
// It returns a client pointed at it and a pointer to the last request body.
func setupServer(t *testing.T, status int, body string) (*Client, *[]byte, *atomic.Int32) {
	t.Helper()

	var got []byte
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PipelinePath, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		got = b

		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		Source:     config.Map{config.KeyDatabaseURL: srv.URL, config.KeyAuthToken: "test-token"},
		HTTPClient: srv.Client(),
	})

	return c, &got, &calls
}

func TestExecute_RequestBody(t *testing.T) {
	t.Parallel()

	c, got, calls := setupServer(t, http.StatusOK, `{"baton":null,"results":[
		{"type":"ok","response":{"type":"execute","result":{"cols":[],"rows":[],"affected_row_count":1,"last_insert_rowid":"12"}}},
		{"type":"ok","response":{"type":"close"}}
	]}`)

	rs, err := c.Execute(context.Background(),
		"INSERT INTO freelancers (id, name, score, note) VALUES (?, ?, ?, ?)",
		"abc", "Ana", 3.14, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	expected := `{"requests":[
		{"type":"execute","stmt":{
			"sql":"INSERT INTO freelancers (id, name, score, note) VALUES (?, ?, ?, ?)",
			"args":[
				{"type":"text","value":"abc"},
				{"type":"text","value":"Ana"},
				{"type":"float","value":3.14},
				{"type":"null"}
			]
		}},
		{"type":"close"}
	]}`
	assert.JSONEq(t, expected, string(*got))

	assert.Equal(t, int64(1), rs.AffectedRows)
	assert.Equal(t, "12", rs.LastInsertID)
	assert.Empty(t, rs.Columns)
	assert.Empty(t, rs.Rows)
}

func TestQuery_ColumnShapes(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"objects": `{"results":[{"type":"ok","response":{"type":"execute","result":{
			"cols":[{"name":"id","decltype":"TEXT"},{"name":"age","decltype":"INTEGER"}],
			"rows":[[{"type":"text","value":"1"},{"type":"integer","value":"30"}],
			        [{"type":"text","value":"2"},{"type":"null"}]]}}}]}`,
		"strings": `{"results":[{"type":"ok","response":{"type":"execute","result":{
			"columns":["id","age"],
			"rows":[["1",30],["2",null]]}}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, _, _ := setupServer(t, http.StatusOK, body)

			rows, err := c.Query(context.Background(), "SELECT id, age FROM freelancers ORDER BY id")
			require.NoError(t, err)
			require.Len(t, rows, 2)

			assert.Equal(t, []string{"id", "age"}, rows[0].Keys())
			assert.Equal(t, map[string]any{"id": "1", "age": int64(30)}, rows[0].Map())
			assert.Equal(t, map[string]any{"id": "2", "age": nil}, rows[1].Map())
		})
	}
}

func TestQueryRow(t *testing.T) {
	t.Parallel()

	c, _, _ := setupServer(t, http.StatusOK, `{"results":[{"type":"ok","response":{"type":"execute","result":{
		"cols":[{"name":"test"}],"rows":[[{"type":"integer","value":"1"}]]}}}]}`)

	row, err := c.QueryRow(context.Background(), "SELECT 1 AS test")
	require.NoError(t, err)

	v, ok := row.Int("test")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v)

	c, _, _ = setupServer(t, http.StatusOK, `{"results":[{"type":"ok","response":{"type":"execute","result":{
		"cols":[{"name":"test"}],"rows":[]}}}]}`)

	_, err = c.QueryRow(context.Background(), "SELECT 1 WHERE 0")
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestExecute_TransportError(t *testing.T) {
	t.Parallel()

	c, _, _ := setupServer(t, http.StatusUnauthorized, `{"error":"Unauthorized"}`)

	_, err := c.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, `{"error":"Unauthorized"}`, te.Body)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestExecute_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{Source: config.Map{config.KeyDatabaseURL: url}})

	_, err := c.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Cause)
}

func TestExecute_QueryError(t *testing.T) {
	t.Parallel()

	c, _, _ := setupServer(t, http.StatusOK, `{"results":[
		{"type":"error","error":{"message":"SQLite error: no such table: freelancer","code":"SQLITE_UNKNOWN"}},
		{"type":"ok","response":{"type":"close"}}
	]}`)

	_, err := c.Execute(context.Background(), "SELECT * FROM freelancer")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuery)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "SQLite error: no such table: freelancer", qe.Message)
	assert.Equal(t, "SQLITE_UNKNOWN", qe.Code)
}

func TestExecute_InvalidResponses(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"not json":      `<html>`,
		"no results":    `{"results":[]}`,
		"missing field": `{}`,
		"no result":     `{"results":[{"type":"ok","response":{"type":"execute"}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, _, _ := setupServer(t, http.StatusOK, body)

			_, err := c.Execute(context.Background(), "SELECT 1")
			assert.ErrorIs(t, err, ErrResponseInvalid)
		})
	}
}

func TestExecute_ConfigurationError(t *testing.T) {
	t.Parallel()

	c := New(Config{Source: config.Map{config.KeyEnvironment: "production"}})

	_, err := c.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestExecute_EmptyStatement(t *testing.T) {
	t.Parallel()

	c := New(Config{Source: config.Map{}})

	_, err := c.Execute(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyStatement)
}

func TestExecute_ResolvesConfigPerCall(t *testing.T) {
	t.Parallel()

	newServer := func(calls *atomic.Int32) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{
				map[string]any{"type": "ok", "response": map[string]any{
					"type":   "execute",
					"result": map[string]any{"cols": []any{}, "rows": []any{}},
				}},
			}})
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	var calls1, calls2 atomic.Int32
	srv1, srv2 := newServer(&calls1), newServer(&calls2)

	src := config.Map{config.KeyDatabaseURL: srv1.URL}
	c := New(Config{Source: src})

	_, err := c.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)

	src[config.KeyDatabaseURL] = srv2.URL

	_, err = c.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls1.Load())
	assert.Equal(t, int32(1), calls2.Load())
}

func TestExecute_NoTokenOmitsAuthorization(t *testing.T) {
	t.Parallel()

	var header atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Values("Authorization"))
		_, _ = io.WriteString(w, `{"results":[{"type":"ok","response":{"type":"execute","result":{"cols":[],"rows":[]}}}]}`)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		Source:     config.Map{config.KeyDatabaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})

	_, err := c.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Empty(t, header.Load())
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (failingBody) Close() error             { return nil }

func TestExecute_BodyReadErrorKeepsStatus(t *testing.T) {
	t.Parallel()

	c := New(Config{
		Source: config.Map{config.KeyDatabaseURL: "https://db.example"},
		HTTPClient: doerFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusBadGateway, Body: failingBody{}, Request: r}, nil
		}),
	})

	_, err := c.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Contains(t, err.Error(), "HTTP 502")
}
