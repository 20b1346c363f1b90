// Package coremodel 定义采集链路中跨包共享的领域模型。
package coremodel

import (
	"time"

	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

// Sample 一帧遥测解码后的读数，创建后不再修改
type Sample struct {
	Address string    `json:"address"`
	Voltage float64   `json:"voltage"` // V
	Current float64   `json:"ampere"`  // A
	Wattage float64   `json:"wattage"` // W
	Time    time.Time `json:"time"`    // 帧拼装完成时刻
}

// NewSample 以解码结果构造读数
func NewSample(addr string, r btwattch2.Reading, at time.Time) Sample {
	return Sample{
		Address: addr,
		Voltage: r.Voltage,
		Current: r.Current,
		Wattage: r.Wattage,
		Time:    at,
	}
}

// Fields 返回时序库写入用的字段集合
func (s Sample) Fields() map[string]any {
	return map[string]any{
		"voltage": s.Voltage,
		"ampere":  s.Current,
		"wattage": s.Wattage,
	}
}

// Tags 返回时序库写入用的标签集合
func (s Sample) Tags() map[string]string {
	return map[string]string{"address": s.Address}
}
