package api

import (
	"github.com/gin-gonic/gin"
	"github.com/taoyao-code/btwattch2-collector/internal/api/middleware"
	"go.uber.org/zap"
)

// RouteConfig 路由注册参数
type RouteConfig struct {
	Auth         middleware.AuthConfig
	CommandRate  int
	CommandBurst int
}

// RegisterRoutes 注册页面、命令与查询路由
func RegisterRoutes(r gin.IRouter, cmd *CommandHandler, meters *MeterHandler, cfg RouteConfig, logger *zap.Logger) {
	r.Use(middleware.RequestTracing())

	// 页面(无需认证)
	r.GET("/", cmd.Index)
	r.GET("/result", cmd.Result)

	auth := middleware.APIKeyAuth(cfg.Auth, logger)
	if cfg.Auth.Enabled {
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(cfg.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	limiter := middleware.NewRateLimiter(cfg.CommandRate, cfg.CommandBurst)
	r.POST("/command", auth, middleware.RateLimit(limiter, logger), cmd.Command)

	api := r.Group("/api", auth)
	api.GET("/meters", meters.ListMeters)
	api.GET("/meters/:addr/latest", meters.Latest)
	api.GET("/meters/:addr/samples", meters.Samples)
}
