package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"github.com/taoyao-code/btwattch2-collector/internal/migrate"
	pgstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/pg"
	redisstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/redis"
	"go.uber.org/zap"
)

// NewMetrics 注册表与业务指标
func NewMetrics() (*prometheus.Registry, *metrics.AppMetrics) {
	reg := metrics.NewRegistry()
	return reg, metrics.NewAppMetrics(reg)
}

// ConnectDBAndMigrate 连接读数库并按需迁移；未启用时返回 (nil, nil)。
// 迁移失败时仍返回已建立的连接池，由调用方关闭。
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if !cfg.Enabled {
		log.Info("database disabled")
		return nil, nil
	}
	pool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoMigrate {
		return pool, nil
	}
	runner := migrate.Runner{Dir: cfg.MigrationsDir}
	if err := runner.Up(ctx, pool); err != nil {
		return pool, err
	}
	log.Info("db migrations applied", zap.String("source", migrationSource(cfg.MigrationsDir)))
	return pool, nil
}

func migrationSource(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

// NewRedisClient 最新读数缓存；未启用时返回 (nil, nil)
func NewRedisClient(cfg cfgpkg.RedisConfig, log *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		log.Info("redis disabled")
		return nil, nil
	}
	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("redis connected", zap.String("addr", cfg.Addr), zap.Duration("latest_ttl", cfg.LatestTTL))
	return client, nil
}
