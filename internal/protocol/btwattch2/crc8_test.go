package btwattch2

import "testing"

// crcBitwise 逐位参考实现，用于校验查表结果
func crcBitwise(data []byte) byte {
	var r byte
	for _, b := range data {
		r ^= b
		for i := 0; i < 8; i++ {
			if r&0x80 != 0 {
				r = r<<1 ^ crcPoly
			} else {
				r <<= 1
			}
		}
	}
	return r
}

func TestCRC8_KnownAnswers(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty", data: nil, want: 0x00},
		{name: "monitoring", data: []byte{0x08}, want: 0xB3},
		{name: "power on", data: []byte{0xA7, 0x01}, want: 0x59},
		{name: "power off", data: []byte{0xA7, 0x00}, want: 0xDC},
		{name: "sequence", data: []byte{0x01, 0x02, 0x03}, want: 0x5A},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC8(tt.data); got != tt.want {
				t.Errorf("CRC8(% X) = 0x%02X, want 0x%02X", tt.data, got, tt.want)
			}
		})
	}
}

func TestCRC8_TableMatchesBitwise(t *testing.T) {
	for i := 0; i < 256; i++ {
		d := []byte{byte(i), byte(255 - i), byte(i * 7)}
		if got, want := CRC8(d), crcBitwise(d); got != want {
			t.Fatalf("CRC8(% X) = 0x%02X, bitwise 0x%02X", d, got, want)
		}
	}
}
