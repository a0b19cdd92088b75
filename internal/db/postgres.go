package db

import (
	"context"
	"time"

	"backend-trailview/internal/config"
	"backend-trailview/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	newPoolFn  = pgxpool.New
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

// ConnectPostgres returns nil without error when no URL is configured;
// trails then come from the CSV file only.
func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresURL == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logging.L().Info("connected to postgres",
		zap.String("host", pool.Config().ConnConfig.Host),
		zap.Int32("max_conns", pool.Config().MaxConns))
	return pool, nil
}
