package sqlschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/crate/dialect/sqlschema"
	"github.com/syssam/crate/schema"
)

type other struct{}

func (other) Name() string { return sqlschema.AnnotationName }

func TestAnnotationMerge(t *testing.T) {
	a := sqlschema.ClusteredBy("id", 6).
		Merge(sqlschema.Replicas("0-1")).(sqlschema.Annotation).
		Merge(&sqlschema.Annotation{Shards: 3, PartitionedBy: []string{"day"}}).(sqlschema.Annotation).
		Merge((*sqlschema.Annotation)(nil)).(sqlschema.Annotation).
		Merge(other{})
	assert.Equal(t, sqlschema.Annotation{
		ClusteredBy:   "id",
		Shards:        3,
		Replicas:      "0-1",
		PartitionedBy: []string{"day"},
	}, a)
	assert.Equal(t, "sql", a.Name())
}

func TestGet(t *testing.T) {
	_, ok := sqlschema.Get(nil)
	assert.False(t, ok)

	_, ok = sqlschema.Get([]schema.Annotation{nil})
	assert.False(t, ok)

	a, ok := sqlschema.Get(schema.Merge(
		sqlschema.Table("articles"),
		sqlschema.Schema("blog"),
		sqlschema.ColumnType("geo_point"),
	))
	assert.True(t, ok)
	assert.Equal(t, sqlschema.Annotation{Table: "articles", Schema: "blog", ColumnType: "geo_point"}, a)

	a, ok = sqlschema.Get([]schema.Annotation{&sqlschema.Annotation{Shards: 2}, sqlschema.Shards(4)})
	assert.True(t, ok)
	assert.Equal(t, 4, a.Shards)
}
