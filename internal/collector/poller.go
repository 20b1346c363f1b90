package collector

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// poll 每个周期向所有在线电表写入监测命令，首个周期立即执行
func (c *Collector) poll(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

// pollOnce 单个周期；某个设备写失败只记录日志，不影响其余设备
func (c *Collector) pollOnce(ctx context.Context) {
	for _, s := range c.sessions {
		if ctx.Err() != nil {
			return
		}
		if !s.alive.Load() {
			continue
		}
		c.writeCommand(ctx, s.meter)
	}
}

func (c *Collector) writeCommand(ctx context.Context, m Meter) {
	wctx, cancel := context.WithTimeout(ctx, c.cfg.WriteTimeout)
	defer cancel()

	if err := m.Write(wctx, c.command); err != nil {
		c.logger.Warn("write monitoring command failed",
			zap.String("addr", m.Address()), zap.Error(err))
		if c.metrics != nil {
			c.metrics.CommandWrites.WithLabelValues("error").Inc()
		}
		return
	}
	if c.metrics != nil {
		c.metrics.CommandWrites.WithLabelValues("ok").Inc()
	}
}
