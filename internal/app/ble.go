package app

import (
	"context"

	"github.com/taoyao-code/btwattch2-collector/internal/ble"
	"github.com/taoyao-code/btwattch2-collector/internal/collector"
	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"go.uber.org/zap"
)

// ConnectMeters 扫描并连接电表
func ConnectMeters(ctx context.Context, cfg cfgpkg.BLEConfig, appm *metrics.AppMetrics, log *zap.Logger) ([]*ble.Peripheral, error) {
	adapter := ble.NewAdapter(cfg, log, appm)
	return adapter.Setup(ctx)
}

// AsMeters 转换为采集器使用的接口切片
func AsMeters(ps []*ble.Peripheral) []collector.Meter {
	out := make([]collector.Meter, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// CloseMeters 断开所有电表
func CloseMeters(ps []*ble.Peripheral, log *zap.Logger) {
	for _, p := range ps {
		if err := p.Close(); err != nil {
			log.Warn("meter disconnect failed", zap.String("addr", p.Address()), zap.Error(err))
		}
	}
}

// CollectorConfig 采集器配置转换
func CollectorConfig(cfg cfgpkg.CollectorConfig) collector.Config {
	return collector.Config{
		PollInterval: cfg.PollInterval,
		WriteTimeout: cfg.WriteTimeout,
		SinkTimeout:  cfg.SinkTimeout,
	}
}
