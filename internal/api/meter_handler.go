package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"go.uber.org/zap"
)

// LatestReader 最新读数缓存
type LatestReader interface {
	Get(ctx context.Context, addr string) (coremodel.Sample, bool, error)
}

// SampleHistory 历史读数查询
type SampleHistory interface {
	ListSamples(ctx context.Context, addr string, since time.Time, limit int) ([]coremodel.Sample, error)
}

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
	defaultHistoryRange = time.Hour
)

// MeterHandler 电表只读查询处理器
type MeterHandler struct {
	meters  MeterDirectory
	latest  LatestReader
	history SampleHistory
	logger  *zap.Logger
}

// NewMeterHandler 创建查询处理器；latest、history 未启用时传 nil
func NewMeterHandler(meters MeterDirectory, latest LatestReader, history SampleHistory, logger *zap.Logger) *MeterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeterHandler{meters: meters, latest: latest, history: history, logger: logger}
}

// ListMeters 列出跟踪中的电表及在线状态
// GET /api/meters
func (h *MeterHandler) ListMeters(c *gin.Context) {
	addrs := h.meters.Addresses()
	list := make([]gin.H, 0, len(addrs))
	for _, a := range addrs {
		_, online := h.meters.Lookup(a)
		list = append(list, gin.H{"addr": a, "online": online})
	}
	c.JSON(http.StatusOK, gin.H{"meters": list})
}

// Latest 最新读数
// GET /api/meters/:addr/latest
func (h *MeterHandler) Latest(c *gin.Context) {
	if h.latest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "latest cache disabled"})
		return
	}
	addr := strings.ToUpper(c.Param("addr"))
	sample, ok, err := h.latest.Get(c.Request.Context(), addr)
	if err != nil {
		h.logger.Warn("latest sample lookup failed", zap.String("addr", addr), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sample", "addr": addr})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// Samples 历史读数，支持 since(RFC3339) 与 limit
// GET /api/meters/:addr/samples
func (h *MeterHandler) Samples(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sample history disabled"})
		return
	}
	addr := strings.ToUpper(c.Param("addr"))

	since := time.Now().Add(-defaultHistoryRange)
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		since = t
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	list, err := h.history.ListSamples(c.Request.Context(), addr, since, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"addr": addr, "samples": list})
}
