package schema

import (
	"fmt"
	"text/template"
	"time"

	"ariga.io/atlas/sql/migrate"
)

// DefaultFormatter writes the statements of a plan into a single
// "<version>_<name>.sql" file, each statement preceded by its comment.
var DefaultFormatter = func() migrate.Formatter {
	f, err := migrate.NewTemplateFormatter(
		template.Must(template.New("name").Parse(`{{ with .Version }}{{ . }}_{{ end }}{{ .Name }}.sql`)),
		template.Must(template.New("content").Parse(
			`{{ range .Changes }}{{ with .Comment }}-- {{ . }}{{ "\n" }}{{ end }}{{ printf "%s;\n" .Cmd }}{{ end }}`,
		)),
	)
	if err != nil {
		panic(err)
	}
	return f
}()

// WriteOption configures WritePlan.
type WriteOption func(*writeConfig)

type writeConfig struct {
	name    string
	version string
	fmt     migrate.Formatter
}

// WithName sets the name of the written migration. Default is "changes".
func WithName(name string) WriteOption {
	return func(c *writeConfig) {
		c.name = name
	}
}

// WithVersion sets the version of the written migration. Default is the
// current UTC time formatted as 20060102150405.
func WithVersion(version string) WriteOption {
	return func(c *writeConfig) {
		c.version = version
	}
}

// WithFormatter sets the formatter of the migration files.
func WithFormatter(f migrate.Formatter) WriteOption {
	return func(c *writeConfig) {
		c.fmt = f
	}
}

// WritePlan writes the statements of a plan into a migration directory
// and updates its sum file. The directory must be valid before writing.
// An empty plan returns migrate.ErrNoPlan.
//
//	dir, err := migrate.NewLocalDir("migrations")
//	if err != nil {
//	    return err
//	}
//	err = schema.WritePlan(dir, p, schema.WithName("add_posts"))
func WritePlan(dir migrate.Dir, p *Plan, opts ...WriteOption) error {
	cfg := &writeConfig{
		name:    "changes",
		version: time.Now().UTC().Format("20060102150405"),
		fmt:     DefaultFormatter,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if p == nil || p.Empty() {
		return migrate.ErrNoPlan
	}
	if err := migrate.Validate(dir); err != nil {
		return fmt.Errorf("crate: validating migration directory: %w", err)
	}
	plan := &migrate.Plan{
		Version: cfg.version,
		Name:    cfg.name,
		Changes: make([]*migrate.Change, len(p.Changes)),
	}
	for i, c := range p.Changes {
		plan.Changes[i] = &migrate.Change{Cmd: c.Cmd, Comment: c.Comment}
	}
	files, err := cfg.fmt.Format(plan)
	if err != nil {
		return fmt.Errorf("crate: formatting migration: %w", err)
	}
	for _, f := range files {
		if err := dir.WriteFile(f.Name(), f.Bytes()); err != nil {
			return fmt.Errorf("crate: writing migration file %q: %w", f.Name(), err)
		}
	}
	sum, err := dir.Checksum()
	if err != nil {
		return fmt.Errorf("crate: computing migration checksum: %w", err)
	}
	return migrate.WriteSumFile(dir, sum)
}
