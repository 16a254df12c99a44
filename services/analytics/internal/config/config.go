package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Connection settings have no defaults: credentials must come from the
	// environment.
	ClickHouseDSN              string        `env:"CLICKHOUSE_DSN,required,notEmpty"`
	ClickHouseUsername         string        `env:"CLICKHOUSE_USERNAME,required,notEmpty"`
	ClickHousePassword         string        `env:"CLICKHOUSE_PASSWORD,required,notEmpty"`
	ClickHouseDatabase         string        `env:"CLICKHOUSE_DATABASE" envDefault:"default"`
	ClickHouseDialTimeout      time.Duration `env:"CLICKHOUSE_DIAL_TIMEOUT" envDefault:"10s"`
	ClickHouseMaxExecutionTime int           `env:"CLICKHOUSE_MAX_EXECUTION_TIME" envDefault:"60"`
	ClickHouseTLSSkipVerify    bool          `env:"CLICKHOUSE_TLS_SKIP_VERIFY" envDefault:"false"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"0s"`

	NATSURL         string        `env:"NATS_URL"`
	NATSConnTimeout time.Duration `env:"NATS_CONN_TIMEOUT" envDefault:"10s"`

	OTELCollectorURL string `env:"OTEL_COLLECTOR_URL"`
	LogDevelopment   bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.ClickHouseMaxExecutionTime <= 0 {
		return fmt.Errorf("CLICKHOUSE_MAX_EXECUTION_TIME must be positive, got %d", c.ClickHouseMaxExecutionTime)
	}
	return nil
}

// CacheEnabled reports whether analytics responses should be cached.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != "" && c.CacheTTL > 0
}
