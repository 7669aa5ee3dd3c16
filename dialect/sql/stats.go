package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/crate/dialect"
)

// Op is the kind of statement recorded by a StatsDriver.
type Op uint8

// Recorded statement kinds.
const (
	OpQuery      Op = iota // statements returning rows.
	OpExec                 // DDL, writes and REFRESH.
	OpIntrospect           // Tables and TableStructure lookups.
	numOps
)

var opNames = [...]string{
	OpQuery:      "query",
	OpExec:       "exec",
	OpIntrospect: "introspect",
}

// Ops returns the recorded statement kinds.
func Ops() []Op {
	return []Op{OpQuery, OpExec, OpIntrospect}
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

type opCounters struct {
	count  atomic.Int64
	errors atomic.Int64
	nanos  atomic.Int64
}

// QueryStats counts the statements sent through a StatsDriver. It is safe
// to read while statements are recorded.
type QueryStats struct {
	ops  [numOps]opCounters
	slow atomic.Int64
	// conflicts counts writes rejected because the primary key exists,
	// the only write conflict Crate reports.
	conflicts atomic.Int64
}

func (s *QueryStats) record(op Op, d time.Duration, err error) {
	c := &s.ops[op]
	c.count.Add(1)
	c.nanos.Add(int64(d))
	if err != nil {
		c.errors.Add(1)
		if dialect.IsDuplicateKeyError(err) {
			s.conflicts.Add(1)
		}
	}
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	var snap StatsSnapshot
	for i := range s.ops {
		snap.Ops[i] = OpSnapshot{
			Count:    s.ops[i].count.Load(),
			Errors:   s.ops[i].errors.Load(),
			Duration: time.Duration(s.ops[i].nanos.Load()),
		}
	}
	snap.SlowQueries = s.slow.Load()
	snap.Conflicts = s.conflicts.Load()
	return snap
}

// Reset sets all counters to zero.
func (s *QueryStats) Reset() {
	for i := range s.ops {
		s.ops[i].count.Store(0)
		s.ops[i].errors.Store(0)
		s.ops[i].nanos.Store(0)
	}
	s.slow.Store(0)
	s.conflicts.Store(0)
}

// OpSnapshot holds the counters of one statement kind.
type OpSnapshot struct {
	Count    int64
	Errors   int64
	Duration time.Duration
}

// StatsSnapshot is a point-in-time copy of QueryStats, indexed by Op.
type StatsSnapshot struct {
	Ops         [numOps]OpSnapshot
	SlowQueries int64
	Conflicts   int64
}

// Op returns the counters of a statement kind.
func (s StatsSnapshot) Op(op Op) OpSnapshot {
	return s.Ops[op]
}

// Total returns the number of recorded statements of all kinds.
func (s StatsSnapshot) Total() int64 {
	var n int64
	for _, o := range s.Ops {
		n += o.Count
	}
	return n
}

// Errors returns the number of failed statements of all kinds.
func (s StatsSnapshot) Errors() int64 {
	var n int64
	for _, o := range s.Ops {
		n += o.Errors
	}
	return n
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("query=%d exec=%d introspect=%d errors=%d slow=%d conflicts=%d",
		s.Ops[OpQuery].Count, s.Ops[OpExec].Count, s.Ops[OpIntrospect].Count,
		s.Errors(), s.SlowQueries, s.Conflicts)
}

// SlowQueryHook is called for statements slower than the threshold of a
// StatsDriver.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver records every statement and introspection lookup sent to
// the wrapped driver.
type StatsDriver struct {
	dialect.Driver
	stats     *QueryStats
	threshold time.Duration
	slowHook  SlowQueryHook
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a query or exec is
// slow. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowQueryHook sets the callback of slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements as warnings, to the default
// logger when nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		logger.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps a Driver with statement statistics.
//
//	sd := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(nil))
//	defer fmt.Println(sd.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &QueryStats{},
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the recorded statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	return d.threshold
}

// Query implements the dialect.Driver interface.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.statement(ctx, OpQuery, query, args, time.Since(start), err)
	return err
}

// Exec implements the dialect.Driver interface.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.statement(ctx, OpExec, query, args, time.Since(start), err)
	return err
}

// Tables implements the dialect.Driver interface.
func (d *StatsDriver) Tables(ctx context.Context) ([]string, error) {
	start := time.Now()
	tables, err := d.Driver.Tables(ctx)
	d.stats.record(OpIntrospect, time.Since(start), err)
	return tables, err
}

// TableStructure implements the dialect.Driver interface.
func (d *StatsDriver) TableStructure(ctx context.Context, table string) ([]dialect.Field, error) {
	start := time.Now()
	fields, err := d.Driver.TableStructure(ctx, table)
	d.stats.record(OpIntrospect, time.Since(start), err)
	return fields, err
}

func (d *StatsDriver) statement(ctx context.Context, op Op, query string, args any, took time.Duration, err error) {
	d.stats.record(op, took, err)
	if took <= d.threshold {
		return
	}
	d.stats.slow.Add(1)
	if d.slowHook != nil {
		argv, _ := args.([]any)
		d.slowHook(ctx, query, argv, took)
	}
}

// DebugDriver logs every statement at debug level before sending it.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		d.logger = logger
	}
}

// NewDebugDriver wraps a Driver with debug logging.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query implements the dialect.Driver interface.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "query", "query", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements the dialect.Driver interface.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "exec", "query", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// TableStructure implements the dialect.Driver interface.
func (d *DebugDriver) TableStructure(ctx context.Context, table string) ([]dialect.Field, error) {
	d.logger.DebugContext(ctx, "table structure", "table", table)
	return d.Driver.TableStructure(ctx, table)
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
)
