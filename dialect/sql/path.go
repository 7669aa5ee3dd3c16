package sql

import (
	"regexp"
	"strings"
)

var (
	// bracketOpen matches the start of a quoted subscript: [' or [".
	bracketOpen = regexp.MustCompile(`\[['"]`)
	// subscriptChars are left over after the opening brackets are replaced.
	subscriptChars = strings.NewReplacer(`'`, "", `"`, "", "]", "")
)

// DottedName flattens a bracket path into its dotted form. Every opening
// quoted subscript becomes a dot and the remaining quotes and closing
// brackets are dropped:
//
//	DottedName("tags['nested']")	// tags.nested
//	DottedName(`meta["a"]["b"]`)	// meta.a.b
//
// Plain names and dotted names are returned unchanged.
func DottedName(path string) string {
	if !strings.ContainsAny(path, `['"]`) {
		return path
	}
	return subscriptChars.Replace(bracketOpen.ReplaceAllString(path, "."))
}

// SplitPath splits a column path into its top-level column and the
// object keys below it. Bracket and dotted forms are both accepted.
//
//	SplitPath("meta['author']['name']")	// "meta", ["author", "name"]
func SplitPath(path string) (string, []string) {
	parts := strings.Split(DottedName(path), ".")
	return parts[0], parts[1:]
}
