package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrClosed 电表已关闭
	ErrClosed = errors.New("ble: peripheral closed")
	// ErrShortWrite 写入字节数不足
	ErrShortWrite = errors.New("ble: short write")
)

// maxWriteFailures 连续写失败达到该次数视为设备断开
const maxWriteFailures = 5

// charWriter 命令特征的无应答写
type charWriter interface {
	WriteWithoutResponse(p []byte) (n int, err error)
}

// Peripheral 一个已连接、已订阅遥测通知的电表
type Peripheral struct {
	addr       string
	tx         charWriter
	disconnect func() error
	logger     *zap.Logger
	onDrop     func()

	mu     sync.Mutex
	closed bool
	notify chan []byte

	writeMu  sync.Mutex
	failures atomic.Int32
}

func newPeripheral(addr string, tx charWriter, disconnect func() error, buffer int, logger *zap.Logger, onDrop func()) *Peripheral {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Peripheral{
		addr:       addr,
		tx:         tx,
		disconnect: disconnect,
		logger:     logger,
		onDrop:     onDrop,
		notify:     make(chan []byte, buffer),
	}
}

// Address 设备地址
func (p *Peripheral) Address() string { return p.addr }

// Notifications 遥测通知分片；Close 后关闭
func (p *Peripheral) Notifications() <-chan []byte { return p.notify }

// deliver 通知回调。底层缓冲会被复用，因此先拷贝；缓冲满时丢弃新分片。
func (p *Peripheral) deliver(buf []byte) {
	chunk := make([]byte, len(buf))
	copy(chunk, buf)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.notify <- chunk:
	default:
		if p.onDrop != nil {
			p.onDrop()
		}
		p.logger.Warn("notification buffer full, chunk dropped", zap.String("addr", p.addr), zap.Int("len", len(chunk)))
	}
}

// Write 无应答写命令帧，ctx 到期即返回（底层写可能仍在进行）
func (p *Peripheral) Write(ctx context.Context, frame []byte) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	done := make(chan error, 1)
	go func() {
		p.writeMu.Lock()
		defer p.writeMu.Unlock()
		n, err := p.tx.WriteWithoutResponse(frame)
		if err == nil && n != len(frame) {
			err = fmt.Errorf("%w: %d/%d", ErrShortWrite, n, len(frame))
		}
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err == nil {
		p.failures.Store(0)
		return nil
	}
	if p.failures.Add(1) >= maxWriteFailures {
		p.logger.Warn("too many write failures, closing peripheral", zap.String("addr", p.addr))
		_ = p.Close()
	}
	return fmt.Errorf("write %s: %w", p.addr, err)
}

// Close 断开连接并关闭通知通道，可重复调用
func (p *Peripheral) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.notify)
	p.mu.Unlock()

	if p.disconnect != nil {
		return p.disconnect()
	}
	return nil
}
