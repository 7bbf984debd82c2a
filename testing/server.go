package testing

import (
	"context"
	"database/sql"
	"encoding/base64"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite" // register database/sql driver

	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/hrana"
)

// Server is an in-process pipeline endpoint backed by an in-memory SQLite
// database. It understands the execute and close steps only.
type Server struct {
	URL string
	DB  *sql.DB

	requests atomic.Int32

	mu       sync.Mutex
	failures []failure
}

type failure struct {
	status int
	body   string
}

// NewServer starts a Server and applies schema statements to its database.
// The server and database are closed when the test ends.
func NewServer(tb testing.TB, schema ...string) *Server {
	tb.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		tb.Fatalf("sql.Open() error: %v", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			tb.Fatalf("schema %q: %v", stmt, err)
		}
	}

	s := &Server{DB: db}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = srv.URL

	tb.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})

	return s
}

// Source returns a configuration pointing at the server.
func (s *Server) Source() config.Map {
	return Source(s.URL)
}

// Client returns a hrana.Client configured for the server.
func (s *Server) Client() *hrana.Client {
	return hrana.New(hrana.Config{Source: s.Source()})
}

// Requests reports how many pipeline requests were received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// FailNext makes the next request answer with status and body instead of
// touching the database.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, body: body})
}

func (s *Server) nextFailure() (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return failure{}, false
	}
	f := s.failures[0]
	s.failures = s.failures[1:]
	return f, true
}

type wireRequest struct {
	Requests []struct {
		Type string `json:"type"`
		Stmt *struct {
			SQL  string      `json:"sql"`
			Args []wireValue `json:"args"`
		} `json:"stmt"`
	} `json:"requests"`
}

type wireValue struct {
	Type   string `json:"type"`
	Value  any    `json:"value,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	if f, ok := s.nextFailure(); ok {
		http.Error(w, f.body, f.status)
		return
	}

	if r.Method != http.MethodPost || r.URL.Path != hrana.PipelinePath {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+TestToken {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req wireRequest
	dec := stdjson.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(req.Requests))
	for _, step := range req.Requests {
		switch step.Type {
		case "execute":
			if step.Stmt == nil {
				results = append(results, stepError("missing stmt", "PROTOCOL_ERROR"))
				continue
			}
			results = append(results, s.execute(r.Context(), step.Stmt.SQL, step.Stmt.Args))
		case "close":
			results = append(results, map[string]any{
				"type":     "ok",
				"response": map[string]any{"type": "close"},
			})
		default:
			results = append(results, stepError("unknown request type "+step.Type, "PROTOCOL_ERROR"))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = stdjson.NewEncoder(w).Encode(map[string]any{
		"baton":    nil,
		"base_url": nil,
		"results":  results,
	})
}

func stepError(msg, code string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"message": msg, "code": code},
	}
}

func (s *Server) execute(ctx context.Context, query string, args []wireValue) map[string]any {
	params := make([]any, 0, len(args))
	for _, a := range args {
		v, err := a.native()
		if err != nil {
			return stepError(err.Error(), "ARGS_INVALID")
		}
		params = append(params, v)
	}

	var (
		result map[string]any
		err    error
	)
	if returnsRows(query) {
		result, err = s.query(ctx, query, params)
	} else {
		result, err = s.exec(ctx, query, params)
	}
	if err != nil {
		return stepError(err.Error(), "SQLITE_ERROR")
	}

	return map[string]any{
		"type": "ok",
		"response": map[string]any{
			"type":   "execute",
			"result": result,
		},
	}
}

func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return strings.Contains(q, " RETURNING ")
}

func (s *Server) query(ctx context.Context, query string, params []any) (map[string]any, error) {
	rows, err := s.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	cols := make([]map[string]any, len(names))
	for i, n := range names {
		cols[i] = map[string]any{"name": n}
	}

	out := [][]map[string]any{}
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make([]map[string]any, len(cells))
		for i, c := range cells {
			row[i] = encodeCell(c)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"cols":               cols,
		"rows":               out,
		"affected_row_count": 0,
		"last_insert_rowid":  nil,
	}, nil
}

func (s *Server) exec(ctx context.Context, query string, params []any) (map[string]any, error) {
	res, err := s.DB.ExecContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()

	return map[string]any{
		"cols":               []any{},
		"rows":               []any{},
		"affected_row_count": affected,
		"last_insert_rowid":  strconv.FormatInt(lastID, 10),
	}, nil
}

func (v wireValue) native() (any, error) {
	switch v.Type {
	case "null":
		return nil, nil
	case "integer":
		return strconv.ParseInt(fmt.Sprint(v.Value), 10, 64)
	case "float":
		return strconv.ParseFloat(fmt.Sprint(v.Value), 64)
	case "text":
		s, ok := v.Value.(string)
		if !ok {
			return nil, fmt.Errorf("text value is %T", v.Value)
		}
		return s, nil
	case "blob":
		return base64.StdEncoding.DecodeString(v.Base64)
	default:
		return nil, fmt.Errorf("unknown value type %q", v.Type)
	}
}

func encodeCell(c any) map[string]any {
	switch x := c.(type) {
	case nil:
		return map[string]any{"type": "null"}
	case int64:
		return map[string]any{"type": "integer", "value": strconv.FormatInt(x, 10)}
	case float64:
		return map[string]any{"type": "float", "value": x}
	case string:
		return map[string]any{"type": "text", "value": x}
	case []byte:
		return map[string]any{"type": "blob", "base64": base64.StdEncoding.EncodeToString(x)}
	default:
		return map[string]any{"type": "text", "value": fmt.Sprint(x)}
	}
}
