package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/httpserver"
	"go.uber.org/zap"
)

// NewHTTPServer 根据配置创建 HTTP 服务器
func NewHTTPServer(cfg cfgpkg.HTTPConfig, metrics cfgpkg.MetricsConfig, metricsHandler http.Handler, readyFn func() bool, log *zap.Logger, register ...func(*gin.Engine)) *httpserver.Server {
	if !metrics.Enable {
		metricsHandler = nil
	}
	return httpserver.New(cfg, metrics.Path, metricsHandler, readyFn, log, register...)
}
