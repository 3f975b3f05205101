// Package db opens and migrates the PostgreSQL and Redis backends of the
// postgres storage mode.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ApplicationName tags every backend connection so the recruiter shows up
// in pg_stat_activity and CLIENT LIST.
const ApplicationName = "recruiter-service"

// Containers start Postgres and Redis alongside the service; ping until
// they accept connections or the attempts run out.
const (
	pingAttempts = 5
	pingBackoff  = 500 * time.Millisecond
)

// PoolConfig parses databaseURL and applies the recruiter's connection
// defaults. An explicit application_name in the URL is kept.
func PoolConfig(databaseURL string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	// Rescores hold a row lock per offer; a handful of connections covers
	// HTTP, gRPC and the scheduler.
	if cfg.MaxConns < 4 {
		cfg.MaxConns = 4
	}
	return cfg, nil
}

// NewPostgresPool creates a pool and waits for the database to answer.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := ping(ctx, "postgres", pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// RedisOptions parses redisURL and names the client.
func RedisOptions(redisURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = ApplicationName
	}
	return opts, nil
}

// NewRedisClient creates a client and waits for Redis to answer.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := RedisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := ping(ctx, "redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func ping(ctx context.Context, backend string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s ping: %w", backend, ctx.Err())
		case <-time.After(time.Duration(attempt) * pingBackoff):
		}
	}
	return fmt.Errorf("%s ping after %d attempts: %w", backend, pingAttempts, err)
}
