package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

const (
	DefaultSessionTTL           = time.Hour
	DefaultIssueWindow          = 2 * time.Second
	DefaultBatchFPS             = 30.0
	DefaultBatchRateLimitPerMin = 10
	DefaultMaxBatchFrames       = 10000
	DefaultMaxBodyBytes         = 32 << 20
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// redis, optional: session stats fall back to an in-process cache when the host is empty
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// analysis
	SessionTTL           time.Duration `toml:"session_ttl"`
	IssueWindow          time.Duration `toml:"issue_window"`
	BatchFPS             float64       `toml:"batch_fps"`
	BatchRateLimitPerMin int           `toml:"batch_rate_limit_per_min"`
	MaxBatchFrames       int           `toml:"max_batch_frames"`
	MaxBodyBytes         int64         `toml:"max_body_bytes"`
	AllowedOrigins       []string      `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env, with defaults filled in.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in %s", env, path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.IssueWindow == 0 {
		c.IssueWindow = DefaultIssueWindow
	}
	if c.BatchFPS == 0 {
		c.BatchFPS = DefaultBatchFPS
	}
	if c.BatchRateLimitPerMin == 0 {
		c.BatchRateLimitPerMin = DefaultBatchRateLimitPerMin
	}
	if c.MaxBatchFrames == 0 {
		c.MaxBatchFrames = DefaultMaxBatchFrames
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

func (c *Config) Validate() error {
	var err error
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.SessionTTL < 0 {
		err = multierr.Append(err, errors.New("session_ttl must not be negative"))
	}
	if c.IssueWindow < 0 {
		err = multierr.Append(err, errors.New("issue_window must not be negative"))
	}
	if c.BatchFPS < 0 {
		err = multierr.Append(err, errors.New("batch_fps must not be negative"))
	}
	if c.MaxBatchFrames < 0 {
		err = multierr.Append(err, errors.New("max_batch_frames must not be negative"))
	}
	return err
}
