package thirdparty

import (
	"time"

	"github.com/google/uuid"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
)

// EventType 事件类型
type EventType string

const (
	// EventMeterSample 电表读数事件
	EventMeterSample EventType = "meter.sample"
)

// StandardEvent 标准事件结构
type StandardEvent struct {
	EventID   string         `json:"event_id"`   // 事件唯一ID（用于去重）
	EventType EventType      `json:"event_type"` // 事件类型
	Address   string         `json:"address"`    // 电表蓝牙地址
	Timestamp int64          `json:"timestamp"`  // 事件时间戳（Unix毫秒）
	Data      map[string]any `json:"data"`
}

// NewSampleEvent 由读数构造事件，data 为 voltage/ampere/wattage
func NewSampleEvent(s coremodel.Sample) *StandardEvent {
	ts := s.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return &StandardEvent{
		EventID:   uuid.NewString(),
		EventType: EventMeterSample,
		Address:   s.Address,
		Timestamp: ts.UnixMilli(),
		Data:      s.Fields(),
	}
}
