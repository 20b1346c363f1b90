package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taoyao-code/btwattch2-collector/internal/health"
	"github.com/taoyao-code/btwattch2-collector/internal/sink"
	redisstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/redis"
)

// NewHealthAggregator 按已启用的依赖组装健康检查聚合器
func NewHealthAggregator(dbpool *pgxpool.Pool, redisClient *redisstorage.Client, influx *sink.Influx, meters health.MeterCounter) *health.Aggregator {
	agg := health.NewAggregator(health.NewMeterChecker(meters))
	if dbpool != nil {
		agg.AddChecker(health.NewDatabaseChecker(dbpool))
	}
	if redisClient != nil {
		agg.AddChecker(health.NewRedisChecker(redisClient))
	}
	if influx != nil {
		agg.AddChecker(health.NewPingChecker("influx", influx.Ping, health.StatusDegraded))
	}
	return agg
}
