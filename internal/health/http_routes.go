package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusCode Unhealthy 映射为 503，其余（含 Degraded）为 200
func statusCode(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// RegisterHTTPRoutes 注册健康检查路由：
//
//	GET /health        全量报告
//	GET /health/ready  就绪探针
//	GET /health/live   存活探针
func RegisterHTTPRoutes(r gin.IRoutes, aggregator *Aggregator) {
	noStore := func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}

	r.GET("/health", noStore, func(c *gin.Context) {
		report := aggregator.Report(c.Request.Context())
		c.JSON(statusCode(report.Status), report)
	})

	r.GET("/health/ready", noStore, func(c *gin.Context) {
		if aggregator.Ready(c.Request.Context()) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "ready": true})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": StatusUnhealthy, "ready": false})
	})

	r.GET("/health/live", noStore, func(c *gin.Context) {
		alive := aggregator.Alive()
		code := http.StatusOK
		if !alive {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"alive": alive})
	})
}
