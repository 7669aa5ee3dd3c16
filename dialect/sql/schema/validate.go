package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/crate/schema/field"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
	// Err is the underlying error, if any.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// Err joins the validation errors, or returns nil if there are none.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			writeIssue(&sb, e)
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			writeIssue(&sb, w)
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func writeIssue(sb *strings.Builder, e *ValidationError) {
	sb.WriteString("  - ")
	sb.WriteString(e.Error())
	if e.Breaking {
		sb.WriteString(" [BREAKING]")
	}
	sb.WriteString("\n")
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn bool
	allowDropTable  bool
}

// AllowDropColumn reports dropped columns as warnings instead of errors.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable reports dropped tables as warnings instead of errors.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

func (c *validateConfig) report(result *ValidationResult, err *ValidationError, allowed bool) {
	if allowed {
		result.Warnings = append(result.Warnings, err)
	} else {
		result.Errors = append(result.Errors, err)
	}
}

// ValidateDiff validates the difference between the current and the
// desired tables. Drops are errors unless allowed. Type changes are
// breaking warnings, since Crate cannot change the type of a column and
// a Plan never contains them.
//
//	result := schema.ValidateDiff(current, desired)
//	if result.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", result)
//	}
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	desiredMap := make(map[string]*Table, len(desired))
	for _, t := range desired {
		desiredMap[t.Name] = t
	}
	for _, c := range current {
		d, ok := desiredMap[c.Name]
		if !ok {
			cfg.report(result, &ValidationError{
				Table:    c.Name,
				Message:  "table will be dropped",
				Breaking: true,
			}, cfg.allowDropTable)
			continue
		}
		validateTableDiff(c, d, cfg, result)
	}
	return result
}

func validateTableDiff(current, desired *Table, cfg *validateConfig, result *ValidationResult) {
	for _, cc := range current.Columns {
		if _, ok := desired.Column(cc.Name); !ok {
			cfg.report(result, &ValidationError{
				Table:    current.Name,
				Column:   cc.Name,
				Message:  "column will be dropped",
				Breaking: true,
			}, cfg.allowDropColumn)
		}
	}
	for _, dc := range desired.Columns {
		cc, ok := current.Column(dc.Name)
		if !ok {
			if dc.PrimaryKey {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    current.Name,
					Column:   dc.Name,
					Message:  "primary key column cannot be added to an existing table",
					Breaking: true,
				})
			}
			continue
		}
		validateColumnDiff(current.Name, "", cc, dc, result)
	}
}

func validateColumnDiff(table, prefix string, current, desired *Column, result *ValidationResult) {
	name := prefix + desired.Name
	// Primary keys, overridden types and unresolved introspected types
	// carry no comparable semantic kind.
	if desired.PrimaryKey || len(desired.SchemaType) > 0 || !current.Type.Valid() {
		return
	}
	switch {
	case current.Type != desired.Type:
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:    table,
			Column:   name,
			Message:  fmt.Sprintf("column type changing from %v to %v is not applied", current.Type, desired.Type),
			Breaking: true,
		})
	case desired.Type == field.TypeArray && current.ElementType.Valid() && current.ElementType != desired.ElementType:
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:    table,
			Column:   name,
			Message:  fmt.Sprintf("array element type changing from %v to %v is not applied", current.ElementType, desired.ElementType),
			Breaking: true,
		})
	case desired.Type == field.TypeObject:
		for _, df := range desired.ObjectSchema {
			if cf, ok := current.Field(df.Name); ok {
				validateColumnDiff(table, name+".", cf, df, result)
			}
		}
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	if t.Name == "" {
		result.Errors = append(result.Errors, &ValidationError{Message: "missing table name"})
	}
	var pks []string
	names := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if names[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		names[c.Name] = true
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
		validateColumn(t.Name, "", c, result)
	}
	switch {
	case len(pks) == 0:
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	case len(pks) > 1:
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: fmt.Sprintf("multiple primary key columns: %s", strings.Join(pks, ", ")),
		})
	}
	if t.ClusteredBy != "" && !names[t.ClusteredBy] {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: fmt.Sprintf("clustered by non-existent column %q", t.ClusteredBy),
		})
	}
	for _, p := range t.PartitionedBy {
		if !names[p] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("partitioned by non-existent column %q", p),
			})
		}
	}
	if t.Shards < 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: fmt.Sprintf("invalid number of shards %d", t.Shards),
		})
	}
	return result
}

func validateColumn(table, prefix string, c *Column, result *ValidationResult) {
	name := prefix + c.Name
	fail := func(msg string, err error) {
		result.Errors = append(result.Errors, &ValidationError{Table: table, Column: name, Message: msg, Err: err})
	}
	if c.Name == "" {
		fail("missing column name", nil)
	}
	if c.Type == field.TypeArray && !c.ElementType.Valid() {
		err := &MissingArrayTypeError{Column: name}
		fail("array column has no element type", err)
	}
	if c.Type != field.TypeObject {
		if c.ObjectBehaviour != "" {
			fail("column policy set on non-object column", nil)
		}
		if len(c.ObjectSchema) > 0 {
			fail("inline schema set on non-object column", nil)
		}
		return
	}
	if c.ObjectBehaviour != "" && !c.ObjectBehaviour.Valid() {
		fail(fmt.Sprintf("unknown column policy %q", c.ObjectBehaviour), nil)
	}
	seen := make(map[string]bool, len(c.ObjectSchema))
	for _, f := range c.ObjectSchema {
		if seen[f.Name] {
			fail(fmt.Sprintf("duplicate field %q", f.Name), nil)
		}
		seen[f.Name] = true
		validateColumn(table, name+".", f, result)
	}
}

// ValidateSchema validates all tables in a schema.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		if names[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		names[t.Name] = true
		result.merge(ValidateTable(t))
	}
	// Crate has no foreign keys, dangling references are only reported.
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.Ref != "" && !names[c.Ref] {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.Name,
					Message: fmt.Sprintf("references non-existent table %q", c.Ref),
				})
			}
		}
	}
	return result
}
