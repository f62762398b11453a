package sod

import "time"

// Lookback keeps the most recent audio so a caller can recover the true
// start of speech after a late detection. The detector itself buffers no
// audio; size the look-back to at least MaxLateDetection.
//
// Write never allocates. Lookback is not safe for concurrent use.
type Lookback struct {
	buf  []int16
	pos  int // next write index
	size int
}

// NewLookback returns a ring holding d of 16 kHz audio, rounded up to whole
// frames. A non-positive d yields a one-frame ring.
func NewLookback(d time.Duration) *Lookback {
	frames := ceilDiv(int(d/time.Millisecond), frameMs)
	if frames <= 0 {
		frames = 1
	}
	return &Lookback{buf: make([]int16, frames*FrameSamples)}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Capacity is the duration of audio the ring can hold.
func (l *Lookback) Capacity() time.Duration {
	return samplesDuration(len(l.buf))
}

// Len is the number of samples currently held.
func (l *Lookback) Len() int { return l.size }

// Write appends samples, overwriting the oldest audio once full.
func (l *Lookback) Write(samples []int16) {
	n := len(samples)
	if n == 0 {
		return
	}
	c := len(l.buf)
	if n >= c {
		copy(l.buf, samples[n-c:])
		l.pos = 0
		l.size = c
		return
	}
	first := copy(l.buf[l.pos:], samples)
	if first < n {
		copy(l.buf, samples[first:])
	}
	l.pos = (l.pos + n) % c
	l.size += n
	if l.size > c {
		l.size = c
	}
}

// AppendTo appends the held audio, oldest first, to dst.
func (l *Lookback) AppendTo(dst []int16) []int16 {
	start := (l.pos - l.size + len(l.buf)) % len(l.buf)
	if start+l.size <= len(l.buf) {
		return append(dst, l.buf[start:start+l.size]...)
	}
	dst = append(dst, l.buf[start:]...)
	return append(dst, l.buf[:l.pos]...)
}

// Reset drops all held audio.
func (l *Lookback) Reset() {
	l.pos = 0
	l.size = 0
}

func samplesDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}
