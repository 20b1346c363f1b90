package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

var (
	// ErrServiceNotFound 设备上没有 NUS 服务
	ErrServiceNotFound = errors.New("ble: uart service not found")
	// ErrCharacteristicNotFound 缺少 TX/RX 特征
	ErrCharacteristicNotFound = errors.New("ble: characteristic not found")
	// ErrNoMeters 扫描未发现任何电表
	ErrNoMeters = errors.New("ble: no meters found")
)

var (
	serviceUUID = mustUUID(btwattch2.ServiceUUID)
	txUUID      = mustUUID(btwattch2.TXCharUUID)
	rxUUID      = mustUUID(btwattch2.RXCharUUID)
)

func mustUUID(s string) bluetooth.UUID {
	u, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Adapter 本机蓝牙适配器
type Adapter struct {
	adapter *bluetooth.Adapter
	cfg     cfgpkg.BLEConfig
	matcher Matcher
	logger  *zap.Logger
	metrics *metrics.AppMetrics

	mu   sync.Mutex
	seen map[string]bluetooth.Address
}

// NewAdapter 使用系统默认适配器
func NewAdapter(cfg cfgpkg.BLEConfig, logger *zap.Logger, m *metrics.AppMetrics) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		adapter: bluetooth.DefaultAdapter,
		cfg:     cfg,
		matcher: Matcher{NameFilter: cfg.NameFilter, Targets: cfg.Targets},
		logger:  logger,
		metrics: m,
		seen:    make(map[string]bluetooth.Address),
	}
}

// Enable 启用适配器
func (a *Adapter) Enable() error {
	if err := a.adapter.Enable(); err != nil {
		return fmt.Errorf("enable adapter: %w", err)
	}
	return nil
}

// Discover 扫描 cfg.ScanTimeout，返回匹配的电表（按地址去重）
func (a *Adapter) Discover(ctx context.Context) ([]Advertisement, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.ScanTimeout)
	defer cancel()

	var (
		mu    sync.Mutex
		found []Advertisement
		index = make(map[string]bool)
	)

	go func() {
		<-ctx.Done()
		_ = a.adapter.StopScan()
	}()

	err := a.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		adv := toAdvertisement(r)
		if !a.matcher.Match(adv) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if index[adv.Address] {
			return
		}
		index[adv.Address] = true
		found = append(found, adv)

		a.mu.Lock()
		a.seen[adv.Address] = r.Address
		a.mu.Unlock()

		a.logger.Info("meter discovered",
			zap.String("addr", adv.Address),
			zap.String("name", adv.LocalName),
			zap.Int16("rssi", adv.RSSI))
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(found) == 0 {
		return nil, ErrNoMeters
	}
	return found, nil
}

func toAdvertisement(r bluetooth.ScanResult) Advertisement {
	name := r.LocalName()
	return Advertisement{
		Address:   r.Address.String(),
		LocalName: name,
		HasName:   name != "",
		RSSI:      r.RSSI,
	}
}

// Connect 连接电表，发现 UART 服务，订阅 RX 通知
func (a *Adapter) Connect(ctx context.Context, adv Advertisement) (*Peripheral, error) {
	a.mu.Lock()
	addr, ok := a.seen[adv.Address]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("connect %s: not discovered", adv.Address)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
	defer cancel()

	type result struct {
		p   *Peripheral
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := a.connect(addr, adv.Address)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		return r.p, r.err
	case <-ctx.Done():
		// 迟到的连接结果需要释放
		go func() {
			if r := <-done; r.p != nil {
				_ = r.p.Close()
			}
		}()
		return nil, fmt.Errorf("connect %s: %w", adv.Address, ctx.Err())
	}
}

func (a *Adapter) connect(addr bluetooth.Address, name string) (*Peripheral, error) {
	dev, err := a.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}

	services, err := dev.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		_ = dev.Disconnect()
		return nil, fmt.Errorf("connect %s: %w", name, errors.Join(ErrServiceNotFound, err))
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{txUUID, rxUUID})
	if err != nil {
		_ = dev.Disconnect()
		return nil, fmt.Errorf("discover characteristics %s: %w", name, err)
	}

	var tx, rx *bluetooth.DeviceCharacteristic
	for i := range chars {
		switch chars[i].UUID() {
		case txUUID:
			tx = &chars[i]
		case rxUUID:
			rx = &chars[i]
		}
	}
	if tx == nil || rx == nil {
		_ = dev.Disconnect()
		return nil, fmt.Errorf("connect %s: %w", name, ErrCharacteristicNotFound)
	}

	var onDrop func()
	if a.metrics != nil {
		onDrop = a.metrics.NotifyDropped.Inc
	}
	p := newPeripheral(name, tx, dev.Disconnect, a.cfg.NotifyBuffer, a.logger, onDrop)
	if err := rx.EnableNotifications(p.deliver); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("subscribe %s: %w", name, err)
	}
	a.logger.Info("meter connected", zap.String("addr", name))
	return p, nil
}

// ConnectAll 依次连接所有电表，单个失败只记录日志
func (a *Adapter) ConnectAll(ctx context.Context, advs []Advertisement) []*Peripheral {
	out := make([]*Peripheral, 0, len(advs))
	for _, adv := range advs {
		p, err := a.Connect(ctx, adv)
		if err != nil {
			a.logger.Warn("meter connect failed", zap.String("addr", adv.Address), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out
}

// settle 连接前的短暂等待，部分 BlueZ 版本在 StopScan 后立即连接会失败
const settle = 200 * time.Millisecond

// Setup 启用适配器、扫描、连接，返回已就绪的电表
func (a *Adapter) Setup(ctx context.Context) ([]*Peripheral, error) {
	if err := a.Enable(); err != nil {
		return nil, err
	}
	advs, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	ps := a.ConnectAll(ctx, advs)
	if len(ps) == 0 {
		return nil, ErrNoMeters
	}
	return ps, nil
}
