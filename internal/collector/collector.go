package collector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

var (
	// ErrNoMeters 没有可采集的电表
	ErrNoMeters = errors.New("collector: no meters")
	// ErrAllMetersGone 所有电表的通知通道均已关闭
	ErrAllMetersGone = errors.New("collector: all meters gone")
)

// Meter 已连接并订阅遥测通知的电表
type Meter interface {
	// Address 设备地址，作为读数标签
	Address() string
	// Write 向命令特征写入一帧（无应答写）
	Write(ctx context.Context, frame []byte) error
	// Notifications 遥测通知分片，通道关闭表示设备断开
	Notifications() <-chan []byte
}

// Sink 读数下游
type Sink interface {
	Write(ctx context.Context, s coremodel.Sample) error
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, s coremodel.Sample) error

// Write 实现 Sink
func (f SinkFunc) Write(ctx context.Context, s coremodel.Sample) error { return f(ctx, s) }

// Config 采集循环配置
type Config struct {
	PollInterval time.Duration // 监测命令重发间隔
	WriteTimeout time.Duration // 单次命令写超时
	SinkTimeout  time.Duration // 单次下游写超时
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		WriteTimeout: 500 * time.Millisecond,
		SinkTimeout:  5 * time.Second,
	}
}

// session 单个电表的采集状态；alive 只由该电表自己的聚合协程写入
type session struct {
	meter Meter
	alive atomic.Bool
}

// Collector 轮询 + 聚合循环
type Collector struct {
	sessions []*session
	byAddr   map[string]*session
	sink     Sink
	cfg      Config
	command  []byte

	logger  *zap.Logger
	metrics *metrics.AppMetrics
	now     func() time.Time

	active atomic.Int32
}

// Option 可选项
type Option func(*Collector)

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics 设置业务指标
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(c *Collector) { c.metrics = m }
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// New 创建采集器。meters 在 Run 期间不可变更。
func New(meters []Meter, sink Sink, cfg Config, opts ...Option) *Collector {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = def.SinkTimeout
	}

	c := &Collector{
		byAddr:  make(map[string]*session, len(meters)),
		sink:    sink,
		cfg:     cfg,
		command: btwattch2.MonitoringCommand(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, m := range meters {
		s := &session{meter: m}
		s.alive.Store(true)
		c.sessions = append(c.sessions, s)
		c.byAddr[strings.ToUpper(m.Address())] = s
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run 启动轮询循环与每个电表一个聚合协程，阻塞到 ctx 取消且全部协程退出。
// 所有电表断开时返回 ErrAllMetersGone。
func (c *Collector) Run(ctx context.Context) error {
	if len(c.sessions) == 0 {
		return ErrNoMeters
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	c.active.Store(int32(len(c.sessions)))
	c.setConnectedGauge()

	for _, s := range c.sessions {
		wg.Add(1)
		go func(s *session) {
			defer wg.Done()
			c.aggregate(ctx, s)
		}(s)
	}

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		c.poll(ctx)
	}()

	wg.Wait()
	// 聚合协程全部退出：若非 ctx 取消则是所有设备断开
	err := ctx.Err()
	cancel()
	<-pollDone

	if err != nil {
		c.logger.Info("collector stopped", zap.Error(err))
		return err
	}
	c.logger.Warn("all meters disconnected")
	return ErrAllMetersGone
}

// Active 当前仍在运行的聚合循环数
func (c *Collector) Active() int {
	return int(c.active.Load())
}

// Total 跟踪的电表总数
func (c *Collector) Total() int {
	return len(c.sessions)
}

// Addresses 跟踪的电表地址（按发现顺序）
func (c *Collector) Addresses() []string {
	out := make([]string, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s.meter.Address())
	}
	return out
}

// Lookup 按地址（不区分大小写）查找仍在线的电表
func (c *Collector) Lookup(addr string) (Meter, bool) {
	s, ok := c.byAddr[strings.ToUpper(addr)]
	if !ok || !s.alive.Load() {
		return nil, false
	}
	return s.meter, true
}

func (c *Collector) setConnectedGauge() {
	if c.metrics != nil {
		c.metrics.MetersConnected.Set(float64(c.active.Load()))
	}
}
