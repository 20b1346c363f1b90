package btwattch2

// crcPoly CRC-8 多项式（MSB-first，无反射，init=0x00，xorout=0x00）
const crcPoly = 0x85

var crcTable = makeCRCTable(crcPoly)

func makeCRCTable(poly byte) [256]byte {
	var t [256]byte
	for i := 0; i < 256; i++ {
		r := byte(i)
		for b := 0; b < 8; b++ {
			if r&0x80 != 0 {
				r = r<<1 ^ poly
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}

// CRC8 计算 payload 的 CRC-8
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}
