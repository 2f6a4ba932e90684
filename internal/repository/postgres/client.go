package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BarkinBalci/referral-analytics-service/internal/config"
)

// Client wraps the PostgreSQL connection pool for the analytics store
type Client struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewClient creates a new PostgreSQL client with the given configuration
func NewClient(ctx context.Context, config *config.Postgres, log *zap.Logger) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = config.MaxConns
	poolConfig.MaxConnLifetime = time.Hour

	log.Info("Connecting to PostgreSQL",
		zap.Int32("max_conns", config.MaxConns))

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("Failed to connect to PostgreSQL", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error("Failed to ping PostgreSQL", zap.Error(err))
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("PostgreSQL connection established successfully")

	return &Client{pool: pool, log: log}, nil
}

// Pool returns the underlying connection pool
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Close closes the PostgreSQL connection pool
func (c *Client) Close() error {
	c.log.Info("Closing PostgreSQL connection pool")
	c.pool.Close()
	return nil
}
