package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/redis"
)

// 连接池利用率阈值
const (
	poolNearLimit = 0.9
	poolExhausted = 1.0
)

// classifyPool 按连接池利用率定级
func classifyPool(utilization float64) (Status, string) {
	switch {
	case utilization >= poolExhausted:
		return StatusUnhealthy, "connection pool exhausted"
	case utilization > poolNearLimit:
		return StatusDegraded, "connection pool near limit"
	}
	return StatusHealthy, "ok"
}

func percent(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }

// DatabaseChecker 读数库健康检查：ping + 连接池利用率
type DatabaseChecker struct {
	pool *pgxpool.Pool
}

// NewDatabaseChecker 创建数据库健康检查器
func NewDatabaseChecker(pool *pgxpool.Pool) *DatabaseChecker {
	return &DatabaseChecker{pool: pool}
}

// Name 返回检查器名称
func (c *DatabaseChecker) Name() string { return "database" }

// Check 执行健康检查
func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.pool.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.pool.Stat()
	utilization := 0.0
	if stats.MaxConns() > 0 {
		utilization = float64(stats.AcquiredConns()) / float64(stats.MaxConns())
	}
	status, message := classifyPool(utilization)

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"acquired_conns": stats.AcquiredConns(),
			"max_conns":      stats.MaxConns(),
			"utilization":    percent(utilization),
		},
		Latency: time.Since(start),
	}
}

// RedisChecker 最新读数缓存健康检查；ping 失败与连接池耗尽均记为 degraded
type RedisChecker struct {
	client *redisstorage.Client
}

// NewRedisChecker 创建Redis健康检查器
func NewRedisChecker(client *redisstorage.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name 返回检查器名称
func (c *RedisChecker) Name() string { return "redis" }

// Check 执行健康检查
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.client.Stats()
	utilization := 0.0
	if stats.TotalConns > 0 {
		utilization = float64(stats.TotalConns-stats.IdleConns) / float64(stats.TotalConns)
	}
	status, message := classifyPool(utilization)
	if status == StatusUnhealthy {
		status = StatusDegraded
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
			"timeouts":    stats.Timeouts,
			"utilization": percent(utilization),
		},
		Latency: time.Since(start),
	}
}
