package health

import (
	"context"
	"time"
)

// MeterCounter 采集器的在线统计
type MeterCounter interface {
	Active() int
	Total() int
}

// MeterChecker 电表在线健康检查器：全部断开为 unhealthy，部分断开为 degraded
type MeterChecker struct {
	counter MeterCounter
}

// NewMeterChecker 创建电表健康检查器
func NewMeterChecker(counter MeterCounter) *MeterChecker {
	return &MeterChecker{counter: counter}
}

// Name 返回检查器名称
func (c *MeterChecker) Name() string {
	return "meters"
}

// Check 执行健康检查
func (c *MeterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	active, total := c.counter.Active(), c.counter.Total()

	status := StatusHealthy
	message := "ok"
	switch {
	case active == 0:
		status = StatusUnhealthy
		message = "no meter connected"
	case active < total:
		status = StatusDegraded
		message = "some meters disconnected"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"active": active,
			"total":  total,
		},
		Latency: time.Since(start),
	}
}
