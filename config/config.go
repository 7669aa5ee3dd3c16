// Package config loads the connection and logging settings of the Crate
// adapter and of cratectl.
//
// Settings are read from a YAML file, then overridden by CRATE_*
// environment variables:
//
//	driver: http                  # http, pgx or postgres
//	endpoints: [localhost:4200]   # http driver
//	dsn: postgres://crate@localhost:5432/doc?sslmode=disable
//	schema: doc
//	username: crate
//	timeout: 30s
//	ids: uuid                     # uuid or ulid
//	debug: false
//	slow_query: 200ms
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  namespace: crate
//	  push_url: http://pushgateway:9091
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver names.
const (
	DriverHTTP     = "http"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// ID generator names.
const (
	IDUUID = "uuid"
	IDULID = "ulid"
)

// Config holds the settings of one adapter connection.
type Config struct {
	Driver    string        `yaml:"driver"`
	Endpoints []string      `yaml:"endpoints,omitempty"`
	DSN       string        `yaml:"dsn,omitempty"`
	Schema    string        `yaml:"schema"`
	Username  string        `yaml:"username,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	IDs       string        `yaml:"ids"`
	Debug     bool          `yaml:"debug"`
	SlowQuery time.Duration `yaml:"slow_query,omitempty"`
	Log       LogConfig     `yaml:"log"`
	Metrics   MetricsConfig `yaml:"metrics,omitempty"`
}

// LogConfig configures the slog handler of cratectl.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json.
}

// MetricsConfig configures the query statistics export.
type MetricsConfig struct {
	Namespace string `yaml:"namespace,omitempty"`
	// PushURL is the address of a Prometheus push gateway. Statistics are
	// not exported when empty.
	PushURL string `yaml:"push_url,omitempty"`
	Job     string `yaml:"job,omitempty"`
}

// Default returns the configuration of a local Crate node.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverHTTP
	}
	if c.Driver == DriverHTTP && len(c.Endpoints) == 0 {
		c.Endpoints = []string{"localhost:4200"}
	}
	if c.Schema == "" {
		c.Schema = "doc"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.IDs == "" {
		c.IDs = IDUUID
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "crate"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "cratectl"
	}
}

// Load reads the configuration from r, applies the environment overrides
// and the defaults, and validates the result. An empty document yields
// the defaults.
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromPath loads the configuration file at path. An empty path loads
// the defaults and the environment overrides only.
func LoadFromPath(path string) (*Config, error) {
	if path == "" {
		return Load(strings.NewReader(""))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the driver settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Driver {
	case DriverHTTP:
		if len(c.Endpoints) == 0 {
			errs = append(errs, errors.New("config: http driver requires endpoints"))
		}
	case DriverPgx, DriverPostgres:
		if c.DSN == "" {
			errs = append(errs, fmt.Errorf("config: %s driver requires a dsn", c.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown driver %q", c.Driver))
	}
	switch c.IDs {
	case IDUUID, IDULID:
	default:
		errs = append(errs, fmt.Errorf("config: unknown id generator %q", c.IDs))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("config: negative timeout %s", c.Timeout))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the slog level of the configured name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: %w", err)
	}
	return level, nil
}

// Handler returns the slog handler writing to w in the configured format.
func (l LogConfig) Handler(w io.Writer) slog.Handler {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// applyEnv overrides the settings with the CRATE_* environment variables.
func (c *Config) applyEnv() error {
	c.Driver = getenv("CRATE_DRIVER", c.Driver)
	if v := getenv("CRATE_ENDPOINTS", ""); v != "" {
		c.Endpoints = splitList(v)
	}
	c.DSN = getenv("CRATE_DSN", c.DSN)
	c.Schema = getenv("CRATE_SCHEMA", c.Schema)
	c.Username = getenv("CRATE_USERNAME", c.Username)
	c.Password = getenv("CRATE_PASSWORD", c.Password)
	c.IDs = getenv("CRATE_IDS", c.IDs)
	c.Log.Level = getenv("CRATE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("CRATE_LOG_FORMAT", c.Log.Format)
	c.Metrics.PushURL = getenv("CRATE_METRICS_PUSH_URL", c.Metrics.PushURL)
	var err error
	if c.Debug, err = getenvBool("CRATE_DEBUG", c.Debug); err != nil {
		return err
	}
	if c.Timeout, err = getenvDuration("CRATE_TIMEOUT", c.Timeout); err != nil {
		return err
	}
	if c.SlowQuery, err = getenvDuration("CRATE_SLOW_QUERY", c.SlowQuery); err != nil {
		return err
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvBool(k string, fallback bool) (bool, error) {
	v := getenv(k, "")
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", k, err)
	}
	return b, nil
}

func getenvDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := getenv(k, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", k, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var list []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}
