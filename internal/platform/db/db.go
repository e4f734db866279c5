package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// New 创建 pgx 连接池；连通性由调用方 Ping 确认。
func New(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}
