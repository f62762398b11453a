package sod

import (
	"fmt"
	"time"
)

// Frame contract. Every Process call consumes exactly one frame.
const (
	SampleRate    = 16000
	FrameSamples  = 160
	FrameBytes    = FrameSamples * 2
	FrameDuration = 10 * time.Millisecond

	frameMs = int(FrameDuration / time.Millisecond)
)

const (
	MaxSensitivity     = 32767 // most sensitive
	NominalSensitivity = 16384 // recommended for wake-word front-ends
)

// Supported onset gap settings in milliseconds.
const (
	OnsetGap0ms    = 0
	OnsetGap100ms  = 100
	OnsetGap200ms  = 200
	OnsetGap300ms  = 300
	OnsetGap400ms  = 400
	OnsetGap500ms  = 500
	OnsetGap1000ms = 1000

	DefaultOnsetGapMs = OnsetGap400ms
)

// Detection latency bounds. An onset may be reported up to MaxLateDetection
// after the true onset, or up to MaxEarlyDetection before it on noisy input.
// Callers that need the onset audio must keep at least MaxLateDetection of
// look-back (see Lookback).
const (
	MaxLateDetection  = 500 * time.Millisecond
	MaxEarlyDetection = 350 * time.Millisecond
)

var onsetGaps = [...]int{
	OnsetGap0ms, OnsetGap100ms, OnsetGap200ms, OnsetGap300ms,
	OnsetGap400ms, OnsetGap500ms, OnsetGap1000ms,
}

// Config holds detector configuration. Both fields are fixed for the
// lifetime of a Detector.
type Config struct {
	Sensitivity int // 0 (least sensitive) .. MaxSensitivity
	OnsetGapMs  int // one of the OnsetGap* constants
}

// DefaultConfig returns nominal sensitivity with a 400 ms onset gap.
func DefaultConfig() Config {
	return Config{Sensitivity: NominalSensitivity, OnsetGapMs: DefaultOnsetGapMs}
}

// ValidOnsetGap reports whether ms is a supported onset gap setting.
func ValidOnsetGap(ms int) bool {
	for _, g := range onsetGaps {
		if g == ms {
			return true
		}
	}
	return false
}

// OnsetGaps returns the supported onset gap settings in ascending order.
func OnsetGaps() []int {
	out := make([]int, len(onsetGaps))
	copy(out, onsetGaps[:])
	return out
}

// Validate returns an error wrapping ErrInvalidArgument if cfg is out of range.
func (c Config) Validate() error {
	if c.Sensitivity < 0 || c.Sensitivity > MaxSensitivity {
		return fmt.Errorf("%w: sensitivity %d not in [0, %d]", ErrInvalidArgument, c.Sensitivity, MaxSensitivity)
	}
	if !ValidOnsetGap(c.OnsetGapMs) {
		return fmt.Errorf("%w: onset gap %d ms not in %v", ErrInvalidArgument, c.OnsetGapMs, onsetGaps)
	}
	return nil
}

// OnsetGap returns the onset gap as a duration.
func (c Config) OnsetGap() time.Duration {
	return time.Duration(c.OnsetGapMs) * time.Millisecond
}
