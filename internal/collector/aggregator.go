package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

// aggregate 消费单个电表的通知：拼帧、解码、投递。
// 重组缓冲只存在于本协程栈上，设备断开即随协程释放。
func (c *Collector) aggregate(ctx context.Context, s *session) {
	addr := s.meter.Address()
	log := c.logger.With(zap.String("addr", addr))
	defer func() {
		s.alive.Store(false)
		c.active.Add(-1)
		c.setConnectedGauge()
	}()

	r := btwattch2.NewReassembler()
	ch := s.meter.Notifications()
	log.Info("aggregation loop started")

	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-ch:
			if !ok {
				log.Warn("notification channel closed", zap.Int("discarded_bytes", r.Buffered()))
				return
			}
			if c.metrics != nil {
				c.metrics.Notifications.Inc()
			}
			frame, done := r.Feed(chunk)
			if !done {
				continue
			}
			if c.metrics != nil {
				c.metrics.Frames.Inc()
			}
			sample := coremodel.NewSample(addr, btwattch2.Decode(frame), c.now())
			c.forward(ctx, log, sample)
		}
	}
}

func (c *Collector) forward(ctx context.Context, log *zap.Logger, s coremodel.Sample) {
	sctx, cancel := context.WithTimeout(ctx, c.cfg.SinkTimeout)
	defer cancel()

	if err := c.sink.Write(sctx, s); err != nil {
		log.Warn("sink write failed", zap.Error(err))
		return
	}
	if c.metrics != nil {
		c.metrics.Samples.Inc()
	}
	log.Debug("sample",
		zap.Float64("voltage", s.Voltage),
		zap.Float64("ampere", s.Current),
		zap.Float64("wattage", s.Wattage))
}
