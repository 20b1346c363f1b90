package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	pgstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/pg"
	redisstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/redis"
)

// Postgres 读数写入 meter_samples
type Postgres struct {
	Repo *pgstorage.Repository
}

func (p Postgres) Write(ctx context.Context, s coremodel.Sample) error {
	return p.Repo.InsertSample(ctx, s)
}

// Redis 覆盖写最近读数
type Redis struct {
	Store *redisstorage.LatestStore
}

func (r Redis) Write(ctx context.Context, s coremodel.Sample) error {
	return r.Store.Set(ctx, s)
}

// Gauges 将最近读数暴露为 Prometheus gauge
type Gauges struct {
	Metrics *metrics.AppMetrics
}

func (g Gauges) Write(_ context.Context, s coremodel.Sample) error {
	g.Metrics.Voltage.WithLabelValues(s.Address).Set(s.Voltage)
	g.Metrics.Current.WithLabelValues(s.Address).Set(s.Current)
	g.Metrics.Power.WithLabelValues(s.Address).Set(s.Wattage)
	return nil
}

// Log 以 info 级别记录每个读数，未启用任何存储时使用
type Log struct {
	Logger *zap.Logger
}

func (l Log) Write(_ context.Context, s coremodel.Sample) error {
	l.Logger.Info("sample",
		zap.String("addr", s.Address),
		zap.Float64("voltage", s.Voltage),
		zap.Float64("ampere", s.Current),
		zap.Float64("wattage", s.Wattage),
		zap.Time("at", s.Time))
	return nil
}
