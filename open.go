package crate

import (
	"fmt"
	"log/slog"

	"github.com/syssam/crate/config"
	"github.com/syssam/crate/dialect"
	"github.com/syssam/crate/dialect/rest"
	"github.com/syssam/crate/dialect/sql"
)

// OpenDriver returns the wire client described by the configuration,
// wrapped with statement statistics and, in debug mode, statement
// logging. No statement is sent.
func OpenDriver(cfg *config.Config, logger *slog.Logger) (*sql.StatsDriver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		drv dialect.Driver
		err error
	)
	switch cfg.Driver {
	case config.DriverHTTP:
		opts := []rest.Option{rest.WithSchema(cfg.Schema)}
		if cfg.Timeout > 0 {
			opts = append(opts, rest.WithTimeout(cfg.Timeout))
		}
		if cfg.Username != "" {
			opts = append(opts, rest.WithBasicAuth(cfg.Username, cfg.Password))
		}
		drv, err = rest.Connect(cfg.Endpoints, opts...)
	case config.DriverPgx, config.DriverPostgres:
		drv, err = sql.Open(sql.DriverName(cfg.Driver), cfg.DSN, sql.WithSchema(cfg.Schema))
	default:
		return nil, fmt.Errorf("crate: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		drv = sql.NewDebugDriver(drv, sql.DebugWithLogger(logger))
	}
	opts := []sql.StatsOption{sql.WithSlowQueryLog(logger)}
	if cfg.SlowQuery > 0 {
		opts = append(opts, sql.WithSlowThreshold(cfg.SlowQuery))
	}
	return sql.NewStatsDriver(drv, opts...), nil
}

// Open returns an Adapter connected as described by the configuration.
// Options are applied after the configured ones.
//
//	cfg, err := config.LoadFromPath("crate.yaml")
//	a, err := crate.Open(cfg)
//	defer a.Close()
func Open(cfg *config.Config, opts ...Option) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ids, err := generatorOf(cfg.IDs)
	if err != nil {
		return nil, err
	}
	a := &Adapter{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	drv, err := OpenDriver(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	return New(drv, append([]Option{WithIDGenerator(ids), WithLogger(a.logger)}, opts...)...), nil
}
