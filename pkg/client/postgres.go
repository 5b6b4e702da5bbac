package client

import (
	"context"
	"salonbook/pkg/logger"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func (c *Client) SetPostgres(log *logger.Logger, databaseURL string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatal("Failed to create Postgres pool", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Fatal("Failed to ping Postgres", "error", err)
	}

	log.Info("Successfully connected to Postgres")
	c.Postgres = pool
}
