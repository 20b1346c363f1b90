// Package middleware 提供HTTP中间件
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthConfig API认证配置
type AuthConfig struct {
	APIKeys []string `json:"api_keys"`
	Enabled bool     `json:"enabled"`
}

// APIKeyAuth API Key认证中间件，未启用时直接放行
//
// 支持:
//  1. Header: X-API-Key: <key>
//  2. Header: Authorization: Bearer <key>
//
// 缺少 key 返回 401，key 无效返回 403，均记审计日志。
func APIKeyAuth(cfg AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	reject := func(c *gin.Context, code int, reason, key string) {
		logger.Warn("api auth rejected",
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("remote_addr", c.ClientIP()),
			zap.String("api_key_prefix", maskAPIKey(key)),
		)
		c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code), "message": reason})
	}

	return func(c *gin.Context) {
		apiKey := extractAPIKey(c)
		switch {
		case apiKey == "":
			reject(c, http.StatusUnauthorized, "missing api key", "")
			return
		case !validKey(keys, apiKey):
			reject(c, http.StatusForbidden, "invalid api key", apiKey)
			return
		}
		c.Set("authenticated", true)
		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if k := c.GetHeader("X-API-Key"); k != "" {
		return k
	}
	if auth, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(auth)
	}
	return ""
}

func validKey(keys [][]byte, candidate string) bool {
	c := []byte(candidate)
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, c) == 1 {
			return true
		}
	}
	return false
}

// maskAPIKey 脱敏：仅保留前4位和后4位
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
