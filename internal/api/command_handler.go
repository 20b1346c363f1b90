package api

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taoyao-code/btwattch2-collector/internal/api/middleware"
	"github.com/taoyao-code/btwattch2-collector/internal/collector"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
	"go.uber.org/zap"
)

//go:embed web/*.html
var pages embed.FS

const (
	ActionOn  = "on"
	ActionOff = "off"
)

// defaultCommandTimeout 单条开关命令的写超时
const defaultCommandTimeout = 3 * time.Second

// MeterDirectory 在线电表目录
type MeterDirectory interface {
	Addresses() []string
	Lookup(addr string) (collector.Meter, bool)
}

// CommandLog 命令审计记录
type CommandLog interface {
	InsertCommandLog(ctx context.Context, addr, action string, frame []byte, success bool, requestID string) error
}

// CommandRequest 开关命令请求（表单或JSON）
type CommandRequest struct {
	Action string `form:"action" json:"action" binding:"required"`
	Addr   string `form:"addr" json:"addr" binding:"required"`
}

// CommandHandler 继电器开关命令处理器
type CommandHandler struct {
	meters  MeterDirectory
	audit   CommandLog
	metrics *metrics.AppMetrics
	logger  *zap.Logger
	timeout time.Duration
}

// NewCommandHandler 创建命令处理器；audit 与 m 可为 nil
func NewCommandHandler(meters MeterDirectory, audit CommandLog, m *metrics.AppMetrics, logger *zap.Logger) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandler{
		meters:  meters,
		audit:   audit,
		metrics: m,
		logger:  logger,
		timeout: defaultCommandTimeout,
	}
}

// Index 开关操作页面
func (h *CommandHandler) Index(c *gin.Context) {
	servePage(c, "web/index.html")
}

// Result 命令发送结果页面
func (h *CommandHandler) Result(c *gin.Context) {
	servePage(c, "web/result.html")
}

func servePage(c *gin.Context, name string) {
	body, err := pages.ReadFile(name)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func parseAction(action string) (on bool, err error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionOn:
		return true, nil
	case ActionOff:
		return false, nil
	}
	return false, errors.New("action must be on or off")
}

// Command 向指定电表下发继电器开关命令
// POST /command
// 表单提交成功后 302 跳转 /result，JSON 请求返回 {"addr": ...}
func (h *CommandHandler) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	on, err := parseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr := strings.ToUpper(strings.TrimSpace(req.Addr))

	meter, ok := h.meters.Lookup(addr)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "meter not connected", "addr": addr})
		return
	}

	frame := btwattch2.PowerCommand(on)
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	werr := meter.Write(ctx, frame)

	action := ActionOff
	if on {
		action = ActionOn
	}
	h.record(c, addr, action, frame, werr)

	if werr != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": werr.Error(), "addr": addr})
		return
	}

	if c.ContentType() == gin.MIMEJSON {
		c.JSON(http.StatusOK, gin.H{"addr": addr})
		return
	}
	c.Redirect(http.StatusFound, "/result")
}

func (h *CommandHandler) record(c *gin.Context, addr, action string, frame []byte, werr error) {
	result := "ok"
	if werr != nil {
		result = "error"
		h.logger.Warn("power command failed",
			zap.String("addr", addr),
			zap.String("action", action),
			zap.Error(werr),
		)
	} else {
		h.logger.Info("power command sent",
			zap.String("addr", addr),
			zap.String("action", action),
		)
	}
	if h.metrics != nil {
		h.metrics.PowerCommands.WithLabelValues(action, result).Inc()
	}
	if h.audit == nil {
		return
	}
	if err := h.audit.InsertCommandLog(c.Request.Context(), addr, action, frame, werr == nil, middleware.RequestID(c)); err != nil {
		h.logger.Warn("command log insert failed", zap.String("addr", addr), zap.Error(err))
	}
}
