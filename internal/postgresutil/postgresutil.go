package postgresutil

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the Postgres configuration.
type Config struct {
	DSN      string `env:"DSN,required"`
	Migrate  bool   `env:"MIGRATE" envDefault:"true"`
	MaxConns int32  `env:"MAX_CONNS"` // 0 keeps the pgxpool default
}

// NewPool opens a pool and checks that the database answers.
func NewPool(ctx context.Context, connectionString string, opts ...PoolOption) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("postgresutil.NewPool: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgresutil.NewPool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgresutil.NewPool: %w", err)
	}

	return pool, nil
}

type PoolOption func(*pgxpool.Config)

// WithMaxConns limits the pool size. Non-positive n is ignored.
func WithMaxConns(n int32) PoolOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}
