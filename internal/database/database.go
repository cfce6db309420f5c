package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"logistock/internal/config"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Service owns the connection pool shared by repositories and migrations
type Service interface {
	// Pool returns the pgx pool used by repositories
	Pool() *pgxpool.Pool
	// DB returns a database/sql handle over the same pool, used by goose
	DB() *sql.DB
	// Health reports connection status and pool statistics
	Health(ctx context.Context) map[string]string
	Close()
}

type service struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// New connects to PostgreSQL and verifies the connection
func New(ctx context.Context, cfg config.DatabaseConfig) (Service, error) {
	pool, err := NewPool(ctx, cfg.DSN(), cfg.MaxConns)
	if err != nil {
		return nil, err
	}

	return &service{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}, nil
}

// NewPool builds a pgx pool with the decimal codec registered on every connection
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC <-> decimal.Decimal
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func (s *service) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *service) DB() *sql.DB {
	return s.db
}

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	stat := s.pool.Stat()
	stats["status"] = "up"
	stats["total_connections"] = strconv.Itoa(int(stat.TotalConns()))
	stats["idle_connections"] = strconv.Itoa(int(stat.IdleConns()))
	stats["acquired_connections"] = strconv.Itoa(int(stat.AcquiredConns()))
	stats["max_connections"] = strconv.Itoa(int(stat.MaxConns()))

	return stats
}

func (s *service) Close() {
	_ = s.db.Close()
	s.pool.Close()
}
