package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crate/schema/field"
)

func pk(name string) *Column {
	return &Column{Name: name, Type: field.TypeString, PrimaryKey: true}
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name     string
		table    *Table
		errors   []string
		warnings []string
	}{
		{
			name:  "valid",
			table: &Table{Name: "posts", Columns: []*Column{pk("id"), {Name: "title", Type: field.TypeString}}},
		},
		{
			name:     "no_primary_key",
			table:    &Table{Name: "logs", Columns: []*Column{{Name: "msg", Type: field.TypeString}}},
			warnings: []string{"logs: table has no primary key"},
		},
		{
			name:   "duplicate_column",
			table:  &Table{Name: "posts", Columns: []*Column{pk("id"), pk("id")}},
			errors: []string{"posts.id: duplicate column name", "posts: multiple primary key columns: id, id"},
		},
		{
			name:   "settings",
			table:  &Table{Name: "posts", ClusteredBy: "user", PartitionedBy: []string{"day"}, Shards: -1, Columns: []*Column{pk("id")}},
			errors: []string{`posts: clustered by non-existent column "user"`, `posts: partitioned by non-existent column "day"`, "posts: invalid number of shards -1"},
		},
		{
			name: "object_schema",
			table: &Table{Name: "posts", Columns: []*Column{
				pk("id"),
				{Name: "title", Type: field.TypeString, ObjectBehaviour: field.Strict},
				{Name: "body", Type: field.TypeString, ObjectSchema: []*Column{{Name: "x", Type: field.TypeString}}},
				{Name: "meta", Type: field.TypeObject, ObjectBehaviour: "loose", ObjectSchema: []*Column{
					{Name: "a", Type: field.TypeString},
					{Name: "a", Type: field.TypeInt},
					{Name: "tags", Type: field.TypeArray},
				}},
			}},
			errors: []string{
				"posts.title: column policy set on non-object column",
				"posts.body: inline schema set on non-object column",
				`posts.meta: unknown column policy "loose"`,
				`posts.meta: duplicate field "a"`,
				"posts.meta.tags: array column has no element type",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateTable(tt.table)
			assert.Equal(t, tt.errors, messages(r.Errors))
			assert.Equal(t, tt.warnings, messages(r.Warnings))
		})
	}
}

func messages(errs []*ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return msgs
}

func TestValidationErrorUnwrap(t *testing.T) {
	r := ValidateTable(&Table{Name: "posts", Columns: []*Column{
		pk("id"),
		{Name: "meta", Type: field.TypeObject, ObjectSchema: []*Column{{Name: "tags", Type: field.TypeArray}}},
	}})
	err := r.Err()
	require.Error(t, err)
	var merr *MissingArrayTypeError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "meta.tags", merr.Column)
	assert.NoError(t, (&ValidationResult{}).Err())
}

func TestValidateDiff(t *testing.T) {
	current := []*Table{
		{Name: "posts", Columns: []*Column{
			{Name: "id", Type: field.TypeString},
			{Name: "votes", Type: field.TypeString},
			{Name: "tags", Type: field.TypeArray, ElementType: field.TypeString},
			{Name: "location", Type: field.TypeObject},
			{Name: "legacy", Type: field.TypeString},
			{Name: "meta", Type: field.TypeObject, ObjectSchema: []*Column{{Name: "views", Type: field.TypeString}}},
		}},
		{Name: "old", Columns: []*Column{pk("id")}},
	}
	desired := []*Table{
		{Name: "posts", Columns: []*Column{
			{Name: "id", Type: field.TypeInt, PrimaryKey: true},
			{Name: "votes", Type: field.TypeInt},
			{Name: "tags", Type: field.TypeArray, ElementType: field.TypeInt},
			{Name: "location", Type: field.TypeString, SchemaType: map[string]string{"crate": "geo_point"}},
			{Name: "meta", Type: field.TypeObject, ObjectSchema: []*Column{{Name: "views", Type: field.TypeInt}}},
			pk("uid"),
		}},
	}
	r := ValidateDiff(current, desired)
	assert.Equal(t, []string{
		"posts.legacy: column will be dropped",
		"posts.uid: primary key column cannot be added to an existing table",
		"old: table will be dropped",
	}, messages(r.Errors))
	assert.Equal(t, []string{
		"posts.votes: column type changing from string to integer is not applied",
		"posts.tags: array element type changing from string to integer is not applied",
		"posts.meta.views: column type changing from string to integer is not applied",
	}, messages(r.Warnings))
	assert.True(t, r.HasBreakingChanges())

	r = ValidateDiff(current, desired, AllowDropTable(), AllowDropColumn())
	assert.Equal(t, []string{"posts.uid: primary key column cannot be added to an existing table"}, messages(r.Errors))
	assert.Len(t, r.Warnings, 5)
}

func TestValidationResultString(t *testing.T) {
	r := &ValidationResult{}
	assert.Equal(t, "No issues found", r.String())
	r.Errors = append(r.Errors, &ValidationError{Table: "old", Message: "table will be dropped", Breaking: true})
	r.Warnings = append(r.Warnings, &ValidationError{Table: "posts", Message: "table has no primary key"})
	assert.Equal(t, "Errors:\n  - old: table will be dropped [BREAKING]\nWarnings:\n  - posts: table has no primary key\n", r.String())
}

func TestValidateSchema(t *testing.T) {
	r := ValidateSchema([]*Table{
		{Name: "posts", Columns: []*Column{pk("id"), {Name: "author_id", Type: field.TypeString, Ref: "authors"}}},
		{Name: "posts", Columns: []*Column{pk("id")}},
	})
	assert.Equal(t, []string{"posts: duplicate table name"}, messages(r.Errors))
	assert.Equal(t, []string{`posts.author_id: references non-existent table "authors"`}, messages(r.Warnings))
}
