package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDottedName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"title", "title"},
		{"tags['nested']", "tags.nested"},
		{`meta["author"]`, "meta.author"},
		{"meta['a']['b']", "meta.a.b"},
		{`meta['a']["b"]`, "meta.a.b"},
		{"meta.a.b", "meta.a.b"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := DottedName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, DottedName(got), "flattening is idempotent")
		})
	}
}

func TestSplitPath(t *testing.T) {
	name, keys := SplitPath("meta['author']['name']")
	assert.Equal(t, "meta", name)
	assert.Equal(t, []string{"author", "name"}, keys)

	name, keys = SplitPath("title")
	assert.Equal(t, "title", name)
	assert.Empty(t, keys)
}
