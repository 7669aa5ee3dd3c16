package schema

import (
	"fmt"

	"github.com/syssam/crate/schema/field"
)

// Change is a single DDL statement of a plan.
type Change struct {
	Cmd     string
	Comment string
}

// Plan holds the statements moving a schema to a desired state and the
// validation result of the difference.
type Plan struct {
	Changes []*Change
	Result  *ValidationResult
}

// Empty reports if the plan has no statements.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// Statements returns the statements of the plan, in order.
func (p *Plan) Statements() []string {
	stmts := make([]string, len(p.Changes))
	for i, c := range p.Changes {
		stmts[i] = c.Cmd
	}
	return stmts
}

// Plan computes the statements moving the current tables to the desired
// ones. Only additions are planned: new tables, new columns and new
// sub-columns of object columns. Drops and type changes are reported in
// the validation result of the plan and never planned.
//
//	p, err := b.Plan(current, desired)
//	if p.Result.HasErrors() {
//	    return p.Result.Err()
//	}
func (b *CrateBuilder) Plan(current, desired []*Table, opts ...ValidateOption) (*Plan, error) {
	if err := ValidateSchema(desired).Err(); err != nil {
		return nil, err
	}
	p := &Plan{Result: ValidateDiff(current, desired, opts...)}
	existing := make(map[string]*Table, len(current))
	for _, t := range current {
		existing[t.Name] = t
	}
	for _, d := range desired {
		c, ok := existing[d.Name]
		if !ok {
			cmd, err := b.CreateTable(d)
			if err != nil {
				return nil, err
			}
			p.Changes = append(p.Changes, &Change{Cmd: cmd, Comment: fmt.Sprintf("create %q table", d.Name)})
			continue
		}
		for _, col := range d.Columns {
			if err := b.planColumn(p, d.QualifiedName(), c, col); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (b *CrateBuilder) planColumn(p *Plan, table string, current *Table, col *Column) error {
	cur, ok := current.Column(col.Name)
	switch {
	case !ok && col.PrimaryKey:
		// Reported by ValidateDiff.
		return nil
	case !ok:
		return b.addColumn(p, table, col.Name, col)
	case col.Type == field.TypeObject && cur.Type == field.TypeObject:
		return b.planFields(p, table, col.Name, cur, col)
	}
	return nil
}

func (b *CrateBuilder) planFields(p *Plan, table, path string, current, desired *Column) error {
	for _, f := range desired.ObjectSchema {
		name := path + "." + f.Name
		cur, ok := current.Field(f.Name)
		switch {
		case !ok:
			if err := b.addColumn(p, table, name, f); err != nil {
				return err
			}
		case f.Type == field.TypeObject && cur.Type == field.TypeObject:
			if err := b.planFields(p, table, name, cur, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *CrateBuilder) addColumn(p *Plan, table, name string, col *Column) error {
	c := *col
	c.Name = name
	cmd, err := b.AddColumn(table, &c)
	if err != nil {
		return err
	}
	p.Changes = append(p.Changes, &Change{Cmd: cmd, Comment: fmt.Sprintf("add column %q to %q", name, table)})
	return nil
}
