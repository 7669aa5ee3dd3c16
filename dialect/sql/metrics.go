package sql

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports QueryStats as Prometheus counters, labelled by op.
//
//	sd := sql.NewStatsDriver(drv)
//	prometheus.MustRegister(sql.NewCollector(sd.QueryStats()))
type Collector struct {
	stats      *QueryStats
	statements *prometheus.Desc
	errors     *prometheus.Desc
	duration   *prometheus.Desc
	slow       *prometheus.Desc
	conflicts  *prometheus.Desc
}

// NewCollector returns a Collector reading from stats. Metric names are
// prefixed with namespace, "crate" when empty.
func NewCollector(stats *QueryStats, namespace ...string) *Collector {
	ns := "crate"
	if len(namespace) > 0 && namespace[0] != "" {
		ns = namespace[0]
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(ns, "", name), help, labels, nil)
	}
	return &Collector{
		stats:      stats,
		statements: desc("statements_total", "Number of statements sent, by op.", "op"),
		errors:     desc("statement_errors_total", "Number of failed statements, by op.", "op"),
		duration:   desc("statement_duration_seconds_total", "Time spent on statements, by op.", "op"),
		slow:       desc("slow_statements_total", "Number of queries and execs above the slow threshold."),
		conflicts:  desc("duplicate_key_errors_total", "Number of writes rejected on an existing primary key."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.statements
	ch <- c.errors
	ch <- c.duration
	ch <- c.slow
	ch <- c.conflicts
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Stats()
	for _, op := range Ops() {
		o := s.Op(op)
		ch <- prometheus.MustNewConstMetric(c.statements, prometheus.CounterValue, float64(o.Count), op.String())
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(o.Errors), op.String())
		ch <- prometheus.MustNewConstMetric(c.duration, prometheus.CounterValue, o.Duration.Seconds(), op.String())
	}
	ch <- prometheus.MustNewConstMetric(c.slow, prometheus.CounterValue, float64(s.SlowQueries))
	ch <- prometheus.MustNewConstMetric(c.conflicts, prometheus.CounterValue, float64(s.Conflicts))
}

var _ prometheus.Collector = (*Collector)(nil)
