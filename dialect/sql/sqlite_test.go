package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/crate/dialect"
)

// TestDatabaseSQLRoundTrip runs rendered statements through a real
// database/sql driver.
func TestDatabaseSQLRoundTrip(t *testing.T) {
	drv, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	ctx := context.Background()
	require.NoError(t, drv.Ping(ctx))

	v := NewVisitor(WithPlaceholder(Question))
	require.NoError(t, drv.Exec(ctx, `CREATE TABLE "posts" ("id" TEXT PRIMARY KEY, "title" TEXT)`, nil, nil))

	query, args, err := v.Render(Insert("posts").Columns("id", "title").Values("1", "hello").Values("2", "world"))
	require.NoError(t, err)
	var res dialect.ResultSet
	require.NoError(t, drv.Exec(ctx, query, args, &res))
	assert.EqualValues(t, 2, res.RowCount)

	query, args, err = v.Render(Select("id", "title").From(Table("posts")).Where(Contains("title", "ell")).OrderBy(Asc("id")))
	require.NoError(t, err)
	var rs dialect.ResultSet
	require.NoError(t, drv.Query(ctx, query, args, &rs))
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, map[string]any{"id": "1", "title": "hello"}, rs.Map(0))

	query, args, err = v.Render(Update("posts").Set("title", "bye").Where(EQ("id", "2")))
	require.NoError(t, err)
	require.NoError(t, drv.Exec(ctx, query, args, &res))
	assert.EqualValues(t, 1, res.RowCount)

	query, args, err = v.Render(Delete("posts").Where(InValues("id", "1", "2")))
	require.NoError(t, err)
	require.NoError(t, drv.Exec(ctx, query, args, &res))
	assert.EqualValues(t, 2, res.RowCount)

	err = drv.Query(ctx, "SELECT * FROM missing", nil, &rs)
	require.Error(t, err)
	assert.True(t, dialect.IsWireError(err))
}
