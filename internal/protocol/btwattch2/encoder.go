package btwattch2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrPayloadTooLarge payload 长度超出 16 位长度字段
var ErrPayloadTooLarge = errors.New("btwattch2: payload too large")

// EncodeCommand 构建命令帧：0xAA | lenBE | payload | crc8(payload)
func EncodeCommand(payload []byte) ([]byte, error) {
	if len(payload) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), math.MaxUint16)
	}
	buf := make([]byte, 0, 1+2+len(payload)+1)
	buf = append(buf, Header)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, CRC8(payload))
	return buf, nil
}

// MustEncodeCommand 用于编译期已知的短命令
func MustEncodeCommand(payload []byte) []byte {
	b, err := EncodeCommand(payload)
	if err != nil {
		panic(err)
	}
	return b
}

// MonitoringCommand 返回预编码的“开始监测”命令帧
func MonitoringCommand() []byte {
	return MustEncodeCommand([]byte{OpMonitoring})
}

// PowerCommand 返回继电器开/关命令帧
func PowerCommand(on bool) []byte {
	arg := byte(0x00)
	if on {
		arg = 0x01
	}
	return MustEncodeCommand([]byte{OpPower, arg})
}
