package database

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

var ErrMissingDSN = errors.New("clickhouse dsn is empty")

type Options struct {
	DSN              string
	Username         string
	Password         string
	Database         string
	DialTimeout      time.Duration
	MaxExecutionTime int
	// TLSSkipVerify disables certificate verification. The connection is
	// still encrypted.
	TLSSkipVerify bool
	ReadOnly      bool
}

// Addrs splits the DSN into host:port addresses, dropping any query string.
func (o Options) Addrs() []string {
	hostAndParams := strings.Split(o.DSN, "?")
	var addrs []string
	for _, host := range strings.Split(hostAndParams[0], ",") {
		if host = strings.TrimSpace(host); host != "" {
			addrs = append(addrs, host)
		}
	}
	return addrs
}

func (o Options) clickhouseOptions() *clickhouse.Options {
	maxExecution := o.MaxExecutionTime
	if maxExecution <= 0 {
		maxExecution = 60
	}
	dialTimeout := o.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	settings := clickhouse.Settings{
		"max_execution_time": maxExecution,
	}
	if o.ReadOnly {
		settings["readonly"] = 2
	}

	return &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     o.Addrs(),
		Settings: settings,
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		TLS: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: o.TLSSkipVerify,
		},
		DialTimeout:  dialTimeout,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Database is a single encrypted ClickHouse session. It is opened for one
// request and must be closed by the caller.
type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	if len(opts.Addrs()) == 0 {
		return nil, ErrMissingDSN
	}

	conn, err := clickhouse.Open(opts.clickhouseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("failed to close clickhouse connection after ping failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

// Select runs a read statement and scans every row into dest, which must be a
// pointer to a slice of structs tagged with `ch:"column"`.
func (db *Database) Select(ctx context.Context, dest any, query string, args ...any) error {
	return db.conn.Select(ctx, dest, query, args...)
}

func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}

// Dialer opens a fresh Database per call. Sessions are never shared between
// callers.
type Dialer struct {
	opts   Options
	logger *zap.Logger
}

func NewDialer(opts Options, logger *zap.Logger) (*Dialer, error) {
	if len(opts.Addrs()) == 0 {
		return nil, ErrMissingDSN
	}
	return &Dialer{opts: opts, logger: logger}, nil
}

func (d *Dialer) Dial(ctx context.Context) (*Database, error) {
	return New(ctx, d.opts, d.logger)
}
