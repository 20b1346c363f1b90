package btwattch2

import "encoding/binary"

const (
	voltageScale = 16777216.0   // 2^24
	currentScale = 1073741824.0 // 2^30
	wattageScale = 16777216.0   // 2^24
)

// Reading 一帧遥测解码后的物理量
type Reading struct {
	Voltage float64 // V
	Current float64 // A
	Wattage float64 // W
}

// Decode 解码完整遥测帧。frame 必须至少 23 字节，只应在 Reassembler 报告完整后调用。
func Decode(frame []byte) Reading {
	_ = frame[TelemetryFrameLen-1]
	return Reading{
		Voltage: float64(fixed48(frame[voltageOffset:])) / voltageScale,
		Current: float64(fixed48(frame[currentOffset:])) / currentScale,
		Wattage: float64(fixed48(frame[wattageOffset:])) / wattageScale,
	}
}

// fixed48 读取 6 字节小端值，高位补两个 0x00 后按 int64 解释。
// 高位补零意味着结果始终非负，第 47 位置位的编码被读作大正数。
func fixed48(b []byte) int64 {
	var x [8]byte
	copy(x[:fieldLen], b[:fieldLen])
	return int64(binary.LittleEndian.Uint64(x[:]))
}
