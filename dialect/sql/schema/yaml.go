package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/schema/field"
)

// tablesDoc is the YAML document of table definitions:
//
//	tables:
//	  - name: posts
//	    clustered_by: id
//	    shards: 6
//	    columns:
//	      - {name: id, type: string, primary_key: true}
//	      - {name: tags, type: array, element_type: string}
//	      - name: meta
//	        type: object
//	        behaviour: strict
//	        fields:
//	          - {name: author, type: string}
type tablesDoc struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name          string      `yaml:"name"`
	Schema        string      `yaml:"schema,omitempty"`
	Shards        int         `yaml:"shards,omitempty"`
	Replicas      string      `yaml:"replicas,omitempty"`
	ClusteredBy   string      `yaml:"clustered_by,omitempty"`
	PartitionedBy []string    `yaml:"partitioned_by,omitempty"`
	Columns       []columnDoc `yaml:"columns"`
}

type columnDoc struct {
	Name        string            `yaml:"name"`
	Type        field.Type        `yaml:"type,omitempty"`
	ElementType field.Type        `yaml:"element_type,omitempty"`
	PrimaryKey  bool              `yaml:"primary_key,omitempty"`
	Behaviour   field.Behaviour   `yaml:"behaviour,omitempty"`
	Fields      []columnDoc       `yaml:"fields,omitempty"`
	Nullable    *bool             `yaml:"nullable,omitempty"`
	Default     any               `yaml:"default,omitempty"`
	SchemaType  map[string]string `yaml:"schema_type,omitempty"`
	ColumnType  string            `yaml:"column_type,omitempty"`
	References  string            `yaml:"references,omitempty"`
}

// LoadTables decodes YAML table definitions. Unknown keys are rejected.
// Columns without a type default to string, and "references" columns to
// string columns holding the primary key of the referenced table.
func LoadTables(r io.Reader) ([]*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc tablesDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("crate: decoding tables: %w", err)
	}
	tables := make([]*Table, 0, len(doc.Tables))
	for _, td := range doc.Tables {
		t := &Table{
			Name:          td.Name,
			Schema:        td.Schema,
			Shards:        td.Shards,
			Replicas:      td.Replicas,
			ClusteredBy:   td.ClusteredBy,
			PartitionedBy: td.PartitionedBy,
		}
		for _, cd := range td.Columns {
			t.Columns = append(t.Columns, cd.column())
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadTablesFile decodes the YAML table definitions of a file.
func LoadTablesFile(path string) ([]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTables(f)
}

func (cd columnDoc) column() *Column {
	c := &Column{
		Name:            cd.Name,
		Type:            cd.Type,
		ElementType:     cd.ElementType,
		ObjectBehaviour: cd.Behaviour,
		PrimaryKey:      cd.PrimaryKey,
		Nullable:        cd.Nullable,
		Default:         cd.Default,
		SchemaType:      cd.SchemaType,
		Ref:             cd.References,
	}
	if c.Type == field.TypeInvalid {
		c.Type = field.TypeString
	}
	if cd.ColumnType != "" {
		if c.SchemaType == nil {
			c.SchemaType = make(map[string]string)
		}
		c.SchemaType[dialect.Crate] = cd.ColumnType
	}
	for _, fd := range cd.Fields {
		c.ObjectSchema = append(c.ObjectSchema, fd.column())
	}
	return c
}

// WriteTables encodes tables as YAML definitions readable by LoadTables.
func WriteTables(w io.Writer, tables []*Table) error {
	doc := tablesDoc{Tables: make([]tableDoc, 0, len(tables))}
	for _, t := range tables {
		td := tableDoc{
			Name:          t.Name,
			Schema:        t.Schema,
			Shards:        t.Shards,
			Replicas:      t.Replicas,
			ClusteredBy:   t.ClusteredBy,
			PartitionedBy: t.PartitionedBy,
		}
		for _, c := range t.Columns {
			td.Columns = append(td.Columns, columnDocOf(c))
		}
		doc.Tables = append(doc.Tables, td)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("crate: encoding tables: %w", err)
	}
	return enc.Close()
}

func columnDocOf(c *Column) columnDoc {
	cd := columnDoc{
		Name:        c.Name,
		Type:        c.Type,
		PrimaryKey:  c.PrimaryKey,
		Behaviour:   c.ObjectBehaviour,
		Nullable:    c.Nullable,
		Default:     c.Default,
		SchemaType:  c.SchemaType,
		References:  c.Ref,
		ElementType: c.ElementType,
	}
	for _, f := range c.ObjectSchema {
		cd.Fields = append(cd.Fields, columnDocOf(f))
	}
	return cd
}
