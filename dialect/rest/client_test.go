package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crate/dialect"
)

// crateServer answers _sql requests with the response returned by fn.
func crateServer(t *testing.T, fn func(req request) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/_sql", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := fn(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnect(t *testing.T) {
	c, err := Connect([]string{"localhost", "crate-2:4201", "https://crate.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://localhost:4200/_sql",
		"http://crate-2:4201/_sql",
		"https://crate.example.com:4200/_sql",
	}, c.Endpoints())
	assert.Equal(t, dialect.Crate, c.Dialect())
	assert.NoError(t, c.Close())

	_, err = Connect(nil)
	require.Error(t, err)
	assert.True(t, dialect.IsWireError(err))
	assert.EqualError(t, err, "crate: connect: no endpoints")

	_, err = Connect([]string{"http://"})
	assert.ErrorContains(t, err, "missing host")
}

func TestClientQuery(t *testing.T) {
	srv := crateServer(t, func(req request) (int, any) {
		assert.Equal(t, "SELECT id, n, meta FROM posts WHERE author = $1", req.Stmt)
		assert.Equal(t, []any{"amy"}, req.Args)
		return http.StatusOK, map[string]any{
			"cols":     []string{"id", "n", "meta"},
			"rows":     [][]any{{"1", 2, map[string]any{"views": 10}}, {"2", 2.5, nil}},
			"rowcount": 2,
		}
	})
	c, err := Connect([]string{srv.URL})
	require.NoError(t, err)

	var rs dialect.ResultSet
	err = c.Query(context.Background(), "SELECT id, n, meta FROM posts WHERE author = $1", []any{"amy"}, &rs)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "n", "meta"}, rs.Columns)
	assert.Equal(t, int64(2), rs.RowCount)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, map[string]any{"id": "1", "n": int64(2), "meta": map[string]any{"views": int64(10)}}, rs.Map(0))
	assert.Equal(t, 2.5, rs.Rows[1][1])
}

func TestClientExec(t *testing.T) {
	srv := crateServer(t, func(req request) (int, any) {
		assert.Empty(t, req.Args)
		return http.StatusOK, map[string]any{"cols": []string{}, "rows": [][]any{}, "rowcount": 1}
	})
	c, err := Connect([]string{srv.URL})
	require.NoError(t, err)
	require.NoError(t, c.Exec(context.Background(), "REFRESH TABLE posts", nil, nil))

	var rs dialect.ResultSet
	require.NoError(t, c.Exec(context.Background(), "INSERT INTO posts (id) VALUES ('1')", []any{}, &rs))
	assert.Equal(t, int64(1), rs.RowCount)
	require.NoError(t, c.Ping(context.Background()))
}

func TestClientIntrospection(t *testing.T) {
	srv := crateServer(t, func(req request) (int, any) {
		switch req.Stmt {
		case tablesQuery:
			assert.Equal(t, []any{"blog"}, req.Args)
			return http.StatusOK, map[string]any{"cols": []string{"table_name"}, "rows": [][]any{{"authors"}, {"posts"}}}
		case columnsQuery:
			assert.Equal(t, []any{"blog", "posts"}, req.Args)
			return http.StatusOK, map[string]any{
				"cols": []string{"column_name", "data_type"},
				"rows": [][]any{{"id", "text"}, {"tags", "text_array"}, {"meta['author']", "text"}},
			}
		}
		t.Errorf("unexpected statement %q", req.Stmt)
		return http.StatusBadRequest, nil
	})
	c, err := Connect([]string{srv.URL}, WithSchema("blog"))
	require.NoError(t, err)

	tables, err := c.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"authors", "posts"}, tables)

	fields, err := c.TableStructure(context.Background(), "posts")
	require.NoError(t, err)
	assert.Equal(t, []dialect.Field{
		{Path: "id", Type: "text"},
		{Path: "tags", Type: "text_array"},
		{Path: "meta['author']", Type: "text"},
	}, fields)
}

func TestClientErrors(t *testing.T) {
	srv := crateServer(t, func(request) (int, any) {
		return http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": `RelationUnknown[Relation 'doc.missing' unknown]`, "code": 4041},
		}
	})
	c, err := Connect([]string{srv.URL})
	require.NoError(t, err)

	err = c.Query(context.Background(), "SELECT * FROM missing", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dialect.ErrWire))
	assert.True(t, dialect.IsUnknownRelationError(err))
	var werr *dialect.WireError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "query", werr.Op)
	assert.Equal(t, "SELECT * FROM missing", werr.Query)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 4041, cerr.Code)
	assert.Equal(t, http.StatusNotFound, cerr.Status)
	assert.Equal(t, `crate: query "SELECT * FROM missing": RelationUnknown[Relation 'doc.missing' unknown] (code 4041)`, err.Error())
}

func TestClientHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c, err := Connect([]string{srv.URL})
	require.NoError(t, err)
	err = c.Exec(context.Background(), "SELECT 1", nil, nil)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusInternalServerError, cerr.Status)
	assert.EqualError(t, cerr, "Internal Server Error (status 500)")

	srv.Close()
	err = c.Exec(context.Background(), "SELECT 1", nil, nil)
	require.Error(t, err)
	assert.True(t, dialect.IsWireError(err))
}

func TestClientRoundRobin(t *testing.T) {
	var hits []string
	server := func(name string) *httptest.Server {
		return crateServer(t, func(request) (int, any) {
			hits = append(hits, name)
			return http.StatusOK, map[string]any{"cols": []string{}, "rows": [][]any{}}
		})
	}
	a, b := server("a"), server("b")
	c, err := Connect([]string{a.URL, b.URL})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Exec(context.Background(), "SELECT 1", nil, nil))
	}
	assert.Equal(t, []string{"a", "b", "a"}, hits)
}

func TestClientBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "crate", user)
		assert.Equal(t, "secret", pass)
		_, _ = w.Write([]byte(`{"cols":[],"rows":[],"rowcount":0}`))
	}))
	defer srv.Close()
	c, err := Connect([]string{srv.URL}, WithBasicAuth("crate", "secret"))
	require.NoError(t, err)
	require.NoError(t, c.Exec(context.Background(), "SELECT 1", nil, nil))
}

func TestClientInvalidTypes(t *testing.T) {
	c, err := Connect([]string{"localhost"})
	require.NoError(t, err)
	err = c.Query(context.Background(), "SELECT 1", nil, &[]string{})
	assert.EqualError(t, err, "dialect/rest: invalid type *[]string. expect *dialect.ResultSet for v")
	err = c.Query(context.Background(), "SELECT 1", "x", nil)
	assert.EqualError(t, err, "dialect/rest: invalid type string. expect []any for args")
}
