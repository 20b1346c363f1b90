// Package sink 提供读数下游（时序库、关系库、缓存、指标、webhook）及扇出组合。
package sink

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
)

// Writer 单个下游
type Writer interface {
	Write(ctx context.Context, s coremodel.Sample) error
}

// Named 带名称的下游，名称用于日志与指标标签
type Named struct {
	Name   string
	Writer Writer
}

// Fanout 依次写入所有下游；单个失败不影响其余下游
type Fanout struct {
	sinks   []Named
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// NewFanout 创建扇出下游
func NewFanout(logger *zap.Logger, m *metrics.AppMetrics, sinks ...Named) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: sinks, logger: logger, metrics: m}
}

// Len 下游数量
func (f *Fanout) Len() int { return len(f.sinks) }

// Write 实现 collector.Sink；返回所有失败下游的合并错误
func (f *Fanout) Write(ctx context.Context, s coremodel.Sample) error {
	var errs []error
	for _, n := range f.sinks {
		if err := n.Writer.Write(ctx, s); err != nil {
			if f.metrics != nil {
				f.metrics.SinkErrors.WithLabelValues(n.Name).Inc()
			}
			f.logger.Warn("sink write failed",
				zap.String("sink", n.Name), zap.String("addr", s.Address), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", n.Name, err))
		}
	}
	return errors.Join(errs...)
}
