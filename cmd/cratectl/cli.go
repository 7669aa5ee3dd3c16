package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"ariga.io/atlas/sql/migrate"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/syssam/crate"
	"github.com/syssam/crate/config"
	"github.com/syssam/crate/dialect/sql"
	"github.com/syssam/crate/dialect/sql/schema"
)

const usage = `usage: cratectl [-config file] <command> [arguments]

commands:
  tables                       list the tables of the schema
  columns <table>              print the introspected definition of a table
  ddl -f <file> [-watch]       render the CREATE TABLE statements of a definition file
  plan -f <file> [-dir <dir>]  print or write the statements adding missing tables and columns
  apply -f <file>              execute the statements adding missing tables and columns
  sql <statement> [args...]    execute a statement and print the returned rows
`

// errUsage is returned for invalid command lines.
var errUsage = errors.New("invalid usage")

// app holds the state shared by the commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	// open returns the adapter of the configuration.
	open    func(*config.Config, ...crate.Option) (*crate.Adapter, error)
	adapter *crate.Adapter
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, open: crate.Open}
	if err := a.run(ctx, args); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, "cratectl:", err)
		return 1
	}
	return 0
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cratectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("config", os.Getenv("CRATE_CONFIG"), "configuration file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	cfg, err := config.LoadFromPath(*path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(cfg.Log.Handler(a.stderr))
	defer a.close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "tables":
		return a.tables(ctx)
	case "columns":
		return a.columns(ctx, rest)
	case "ddl":
		return a.ddl(ctx, rest)
	case "plan":
		return a.plan(ctx, rest)
	case "apply":
		return a.apply(ctx, rest)
	case "sql":
		return a.sql(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// connect opens the adapter on first use.
func (a *app) connect() (*crate.Adapter, error) {
	if a.adapter != nil {
		return a.adapter, nil
	}
	ad, err := a.open(a.cfg, crate.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.adapter = ad
	return ad, nil
}

// close pushes the statement statistics, if configured, and closes the
// adapter.
func (a *app) close() {
	if a.adapter == nil {
		return
	}
	if url := a.cfg.Metrics.PushURL; url != "" {
		if sd, ok := a.adapter.Driver().(*sql.StatsDriver); ok {
			err := push.New(url, a.cfg.Metrics.Job).
				Collector(sql.NewCollector(sd.QueryStats(), a.cfg.Metrics.Namespace)).
				Push()
			if err != nil {
				a.logger.Warn("pushing metrics", "url", url, "error", err)
			}
		}
	}
	if err := a.adapter.Close(); err != nil {
		a.logger.Warn("closing connection", "error", err)
	}
}

func (a *app) tables(ctx context.Context) error {
	ad, err := a.connect()
	if err != nil {
		return err
	}
	tables, err := ad.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(a.stdout, t)
	}
	return nil
}

func (a *app) columns(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: columns takes one table name", errUsage)
	}
	ad, err := a.connect()
	if err != nil {
		return err
	}
	t, err := ad.Table(ctx, args[0])
	if err != nil {
		return err
	}
	return schema.WriteTables(a.stdout, []*schema.Table{t})
}

// fileFlags parses the flags of the commands reading a definition file.
func fileFlags(name string, args []string, extra func(*flag.FlagSet)) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("f", "", "table definition file")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if *file == "" {
		return "", fmt.Errorf("%w: %s requires -f", errUsage, name)
	}
	return *file, nil
}

func (a *app) ddl(ctx context.Context, args []string) error {
	var watch bool
	file, err := fileFlags("ddl", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&watch, "watch", false, "render again when the file changes")
	})
	if err != nil {
		return err
	}
	b := schema.NewBuilder(schema.WithLogger(a.logger))
	render := func() error {
		tables, err := schema.LoadTablesFile(file)
		if err != nil {
			return err
		}
		for _, t := range tables {
			stmt, err := b.CreateTable(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s;\n", stmt)
		}
		return nil
	}
	if err := render(); err != nil && !watch {
		return err
	} else if err != nil {
		a.logger.Error("rendering ddl", "file", file, "error", err)
	}
	if !watch {
		return nil
	}
	w := newWatcher(file, a.logger, func() {
		if err := render(); err != nil {
			a.logger.Error("rendering ddl", "file", file, "error", err)
		}
	})
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// planFile computes the plan moving the live schema to the definition
// file. Drops are never planned and reported as warnings.
func (a *app) planFile(ctx context.Context, file string) (*schema.Plan, error) {
	tables, err := schema.LoadTablesFile(file)
	if err != nil {
		return nil, err
	}
	ad, err := a.connect()
	if err != nil {
		return nil, err
	}
	p, err := ad.Plan(ctx, tables, schema.AllowDropTable(), schema.AllowDropColumn())
	if err != nil {
		return nil, err
	}
	if p.Result.HasErrors() || p.Result.HasWarnings() {
		fmt.Fprint(a.stderr, p.Result.String())
	}
	if err := p.Result.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *app) plan(ctx context.Context, args []string) error {
	var dir, name string
	file, err := fileFlags("plan", args, func(fs *flag.FlagSet) {
		fs.StringVar(&dir, "dir", "", "migration directory the statements are written to")
		fs.StringVar(&name, "name", "changes", "name of the migration file")
	})
	if err != nil {
		return err
	}
	p, err := a.planFile(ctx, file)
	if err != nil {
		return err
	}
	if p.Empty() {
		fmt.Fprintln(a.stdout, "-- schema is up to date")
		return nil
	}
	if dir == "" {
		for _, c := range p.Changes {
			fmt.Fprintf(a.stdout, "-- %s\n%s;\n", c.Comment, c.Cmd)
		}
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	d, err := migrate.NewLocalDir(dir)
	if err != nil {
		return err
	}
	if err := schema.WritePlan(d, p, schema.WithName(name)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d statements to %s\n", len(p.Changes), dir)
	return nil
}

func (a *app) apply(ctx context.Context, args []string) error {
	file, err := fileFlags("apply", args, nil)
	if err != nil {
		return err
	}
	p, err := a.planFile(ctx, file)
	if err != nil {
		return err
	}
	if err := a.adapter.Apply(ctx, p); err != nil {
		return err
	}
	for _, c := range p.Changes {
		fmt.Fprintf(a.stdout, "%s;\n", c.Cmd)
	}
	return nil
}

func (a *app) sql(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: sql takes a statement", errUsage)
	}
	ad, err := a.connect()
	if err != nil {
		return err
	}
	stmtArgs := make([]any, len(args)-1)
	for i, v := range args[1:] {
		stmtArgs[i] = v
	}
	send := ad.Exec
	if returnsRows(args[0]) {
		send = ad.Query
	}
	rs, err := send(ctx, args[0], stmtArgs...)
	if err != nil {
		return err
	}
	if len(rs.Columns) == 0 {
		fmt.Fprintf(a.stdout, "%d rows\n", rs.RowCount)
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// returnsRows reports if a statement is sent as a query. Other statements
// are executed, and report the number of affected rows.
func returnsRows(stmt string) bool {
	fields := strings.Fields(strings.ToUpper(stmt))
	if len(fields) == 0 {
		return false
	}
	switch strings.TrimLeft(fields[0], "(") {
	case "SELECT", "SHOW", "WITH", "EXPLAIN", "VALUES":
		return true
	}
	return slices.Contains(fields, "RETURNING")
}
