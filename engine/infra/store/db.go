package store

import (
	"context"
	"fmt"
	"time"

	"github.com/intakehq/intake/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns          = 10
	defaultMinConns          = 1
	defaultHealthCheckPeriod = 30 * time.Second
	defaultConnectTimeout    = 5 * time.Second
	defaultPingTimeout       = 3 * time.Second
)

// DBInterface is the minimal query surface the repositories need. Both
// *pgxpool.Pool and pgxmock.PgxPoolIface satisfy it.
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Config holds PostgreSQL connection settings. When ConnString is empty a
// DSN is synthesized from the individual fields.
type Config struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
}

// DSN returns the connection string for this config.
func (c *Config) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		orDefault(c.Host, "localhost"),
		orDefault(c.Port, "5432"),
		orDefault(c.User, "postgres"),
		orDefault(c.Password, ""),
		orDefault(c.DBName, "intake"),
		orDefault(c.SSLMode, "disable"),
	)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// DB wraps a pgx pool. It does not leak pgx types through higher layers.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB builds the pool from cfg and verifies connectivity with a bounded
// ping.
func NewDB(ctx context.Context, cfg *Config) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: config is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	poolCfg.MinConns = defaultMinConns
	poolCfg.HealthCheckPeriod = defaultHealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = defaultConnectTimeout
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("store: new pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	logger.FromContext(ctx).Info("entity store initialized",
		"host", orDefault(cfg.Host, "localhost"), "db_name", orDefault(cfg.DBName, "intake"))
	return &DB{pool: pool}, nil
}

func (d *DB) Close(ctx context.Context) {
	d.pool.Close()
	logger.FromContext(ctx).Info("entity store closed")
}

// Pool exposes the underlying pool for repository construction.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// HealthCheck verifies the connection is alive.
func (d *DB) HealthCheck(ctx context.Context) error {
	hctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := d.pool.Ping(hctx); err != nil {
		return fmt.Errorf("store: health check failed: %w", err)
	}
	return nil
}

func (d *DB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return d.pool.Exec(ctx, sql, arguments...)
}

func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return d.pool.Query(ctx, sql, args...)
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.pool.QueryRow(ctx, sql, args...)
}

func (d *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.pool.Begin(ctx)
}
