package sod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func seq(from, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(from + i)
	}
	return out
}

func TestLookbackCapacityRoundsUpToFrames(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, NewLookback(MaxLateDetection).Capacity())
	assert.Equal(t, 20*time.Millisecond, NewLookback(15*time.Millisecond).Capacity())
	assert.Equal(t, FrameDuration, NewLookback(0).Capacity())
}

func TestLookbackKeepsNewestInOrder(t *testing.T) {
	lb := NewLookback(20 * time.Millisecond) // 320 samples
	assert.Empty(t, lb.AppendTo(nil))

	lb.Write(seq(0, 100))
	assert.Equal(t, seq(0, 100), lb.AppendTo(nil))

	lb.Write(seq(100, 200))
	assert.Equal(t, seq(0, 300), lb.AppendTo(nil))

	// Wraps: oldest 80 samples drop out.
	lb.Write(seq(300, 100))
	assert.Equal(t, 320, lb.Len())
	assert.Equal(t, seq(80, 320), lb.AppendTo(nil))

	// Larger than capacity: only the tail survives.
	lb.Write(seq(1000, 500))
	assert.Equal(t, seq(1180, 320), lb.AppendTo(nil))

	lb.Reset()
	assert.Zero(t, lb.Len())
	assert.Empty(t, lb.AppendTo(nil))
}

func TestLookbackAppendToReusesDst(t *testing.T) {
	lb := NewLookback(FrameDuration)
	lb.Write(seq(0, FrameSamples))
	dst := make([]int16, 0, FrameSamples)
	out := lb.AppendTo(dst)
	assert.Equal(t, seq(0, FrameSamples), out)
	assert.Equal(t, &dst[:1][0], &out[0])
}

func TestLookbackWriteDoesNotAllocate(t *testing.T) {
	l := NewLookback(MaxLateDetection)
	frame := seq(0, FrameSamples)
	long := seq(0, 2*len(l.buf)+7)
	assert.Zero(t, testing.AllocsPerRun(100, func() { l.Write(frame) }))
	assert.Zero(t, testing.AllocsPerRun(10, func() { l.Write(long) }))
}
