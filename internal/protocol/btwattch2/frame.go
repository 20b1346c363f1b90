package btwattch2

// 命令帧布局：
// header[1]=0xAA | lenBE[2] | payload[len] | crc8[1]
//
// 遥测帧布局（固定 23 字节）：
// header[1]=0xAA | ...[4] | voltageLE48[6] | currentLE48[6] | wattageLE48[6]
const (
	// Header 命令帧与遥测帧共用的起始标记
	Header byte = 0xAA

	// TelemetryFrameLen 完整遥测帧长度
	TelemetryFrameLen = 23

	voltageOffset = 5
	currentOffset = 11
	wattageOffset = 17
	fieldLen      = 6
)

// Opcodes
const (
	OpMonitoring byte = 0x08 // 开始实时监测，设备随后推送一帧遥测
	OpPower      byte = 0xA7 // 继电器开关，参数 0x01=on 0x00=off
)

// Nordic UART service used by the meter. TX carries commands, RX carries telemetry notifications.
const (
	ServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	TXCharUUID  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e"
	RXCharUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e"
)

// LocalNameMarker 广播名包含该串的外设视为电表
const LocalNameMarker = "BTWATTCH2"

// Measurement 时序库中的 measurement 名称
const Measurement = "btwattch2"
