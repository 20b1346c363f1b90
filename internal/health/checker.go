package health

import (
	"context"
	"fmt"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 可继续服务，部分依赖异常
	StatusUnhealthy Status = "unhealthy" // 无法服务
)

// CheckResult 单项检查结果
type CheckResult struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// Checker 健康检查器
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// PingChecker 一次 ping 即可判定的依赖；失败时按 onFail 定级
type PingChecker struct {
	name   string
	ping   func(ctx context.Context) error
	onFail Status
}

// NewPingChecker 时序库等非关键下游可传 StatusDegraded
func NewPingChecker(name string, ping func(ctx context.Context) error, onFail Status) *PingChecker {
	return &PingChecker{name: name, ping: ping, onFail: onFail}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	res := CheckResult{Status: StatusHealthy, Message: "ok"}
	if err := c.ping(ctx); err != nil {
		res = CheckResult{Status: c.onFail, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	res.Latency = time.Since(start)
	return res
}
