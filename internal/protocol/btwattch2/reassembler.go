package btwattch2

// Reassembler 将通知分片拼装成完整的 23 字节遥测帧。
//
// 每个电表独占一个实例，非并发安全。规则：
//   - 分片首字节为 Header 时丢弃已累积内容，从该分片重新开始
//   - 否则追加到缓冲
//   - 缓冲以 Header 开头且长度 >= 23 时输出前 23 字节并清空，多余字节丢弃
//
// 未以 Header 开头的缓冲（连接建立在帧中间）永远不会产出帧，
// 达到帧长后直接丢弃，直到下一个 Header 分片重新对齐。
type Reassembler struct {
	buf []byte
}

// NewReassembler 创建重组器
func NewReassembler() *Reassembler {
	return &Reassembler{buf: make([]byte, 0, TelemetryFrameLen)}
}

// Feed 追加一个分片；帧完整时返回该帧与 true。
// 返回的切片归调用方所有。空分片被忽略。
func (r *Reassembler) Feed(chunk []byte) ([]byte, bool) {
	if len(chunk) == 0 {
		return nil, false
	}
	if chunk[0] == Header {
		r.buf = r.buf[:0]
	}
	r.buf = append(r.buf, chunk...)
	if len(r.buf) < TelemetryFrameLen {
		return nil, false
	}
	if r.buf[0] != Header {
		r.buf = r.buf[:0]
		return nil, false
	}
	frame := make([]byte, TelemetryFrameLen)
	copy(frame, r.buf[:TelemetryFrameLen])
	r.buf = r.buf[:0]
	return frame, true
}

// Buffered 当前已累积的字节数
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Reset 丢弃未完成的累积
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
}
