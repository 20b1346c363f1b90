package btwattch2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTelemetry 构造一帧遥测，除起始标记外按序号填充
func makeTelemetry(seed byte) []byte {
	f := make([]byte, TelemetryFrameLen)
	f[0] = Header
	for i := 1; i < len(f); i++ {
		f[i] = seed + byte(i)
	}
	return f
}

func TestReassembler_AnySplit(t *testing.T) {
	frame := makeTelemetry(0x10)
	for split := 1; split < TelemetryFrameLen; split++ {
		r := NewReassembler()
		got, ok := r.Feed(frame[:split])
		require.False(t, ok, "split %d completed early", split)
		require.Nil(t, got)

		got, ok = r.Feed(frame[split:])
		require.True(t, ok, "split %d did not complete", split)
		assert.Equal(t, frame, got, "split %d", split)
		assert.Zero(t, r.Buffered())
	}
}

func TestReassembler_ThreeChunks(t *testing.T) {
	frame := makeTelemetry(0x20)
	r := NewReassembler()
	_, ok := r.Feed(frame[:11])
	require.False(t, ok)
	_, ok = r.Feed(frame[11:20])
	require.False(t, ok)
	got, ok := r.Feed(frame[20:])
	require.True(t, ok)
	assert.Equal(t, frame, got)
}

func TestReassembler_ResyncOnHeader(t *testing.T) {
	r := NewReassembler()
	stale := makeTelemetry(0x30)[:15]
	_, ok := r.Feed(stale)
	require.False(t, ok)
	require.Equal(t, 15, r.Buffered())

	frame := makeTelemetry(0x40)
	_, ok = r.Feed(frame[:5])
	require.False(t, ok)
	assert.Equal(t, 5, r.Buffered(), "partial bytes must be discarded on header")

	got, ok := r.Feed(frame[5:])
	require.True(t, ok)
	assert.Equal(t, frame, got)
}

func TestReassembler_ColdStartMidFrame(t *testing.T) {
	r := NewReassembler()
	// 连接建立在帧中间：先收到非 Header 的尾部
	tail := makeTelemetry(0x50)[10:]
	_, ok := r.Feed(tail)
	require.False(t, ok)

	frame := makeTelemetry(0x60)
	got, ok := r.Feed(frame)
	require.True(t, ok)
	assert.Equal(t, frame, got)
}

func TestReassembler_MisalignedNeverCompletes(t *testing.T) {
	r := NewReassembler()
	junk := make([]byte, 10)
	junk[0] = 0x01
	for i := 0; i < 5; i++ {
		got, ok := r.Feed(junk)
		require.False(t, ok, "misaligned bytes completed a frame at chunk %d", i)
		require.Nil(t, got)
		require.Less(t, r.Buffered(), TelemetryFrameLen)
	}

	frame := makeTelemetry(0x05)
	got, ok := r.Feed(frame[:12])
	require.False(t, ok)
	got, ok = r.Feed(frame[12:])
	require.True(t, ok)
	assert.Equal(t, frame, got)
}

func TestReassembler_AfterFrameNonHeaderChunkIsMisaligned(t *testing.T) {
	r := NewReassembler()
	_, ok := r.Feed(makeTelemetry(0x01))
	require.True(t, ok)

	tail := makeTelemetry(0x02)[1:]
	_, ok = r.Feed(tail)
	assert.False(t, ok)
	assert.Equal(t, len(tail), r.Buffered())

	_, ok = r.Feed([]byte{0x01, 0x02})
	assert.False(t, ok)
	assert.Zero(t, r.Buffered(), "misaligned buffer must be dropped once it reaches frame length")
}

func TestReassembler_TrailingBytesDropped(t *testing.T) {
	r := NewReassembler()
	frame := makeTelemetry(0x70)
	chunk := append(append([]byte{}, frame...), 0x01, 0x02, 0x03)
	got, ok := r.Feed(chunk)
	require.True(t, ok)
	assert.Equal(t, frame, got)
	assert.Zero(t, r.Buffered())
}

func TestReassembler_EmptyChunkIgnored(t *testing.T) {
	r := NewReassembler()
	frame := makeTelemetry(0x01)
	_, _ = r.Feed(frame[:7])
	got, ok := r.Feed(nil)
	assert.False(t, ok)
	assert.Nil(t, got)
	got, ok = r.Feed([]byte{})
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Equal(t, 7, r.Buffered())
}

func TestReassembler_OutputNotAliased(t *testing.T) {
	r := NewReassembler()
	first, ok := r.Feed(makeTelemetry(0x11))
	require.True(t, ok)
	snapshot := append([]byte{}, first...)
	_, ok = r.Feed(makeTelemetry(0x22))
	require.True(t, ok)
	assert.Equal(t, snapshot, first)
}

func TestReassembler_Reset(t *testing.T) {
	r := NewReassembler()
	_, _ = r.Feed(makeTelemetry(0)[:9])
	r.Reset()
	assert.Zero(t, r.Buffered())
}
