package health

import "sync/atomic"

// Readiness 启动阶段就绪标记（电表连接、采集循环）
type Readiness struct {
	metersReady    atomic.Bool
	collectorReady atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetMetersReady(v bool)    { r.metersReady.Store(v) }
func (r *Readiness) SetCollectorReady(v bool) { r.collectorReady.Store(v) }

// Ready 总体就绪：各阶段均为 true
func (r *Readiness) Ready() bool {
	return r.metersReady.Load() && r.collectorReady.Load()
}
