package sod

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"
)

type lifecycle int

const (
	lifeUninitialized lifecycle = iota
	lifeReady
	lifeDestroyed
)

// Detector is one speech-onset detector context. Create it with New or
// Manager.Create. It is single-threaded and not goroutine-safe: one call site
// owns it and drives Process once per frame.
//
// A zero Detector is not usable; every method on it fails with
// ErrInvalidHandle.
type Detector struct {
	cfg      Config
	scorer   Scorer
	profiler *Profiler
	logger   *slog.Logger
	manager  *Manager
	life     lifecycle

	cooldownMs int
	frames     uint64
	detections uint64

	scratch [FrameSamples]int16
}

// Stats are running counters since creation. Reset does not clear them.
type Stats struct {
	Frames     uint64
	Detections uint64
}

func (d *Detector) check() error {
	if d == nil {
		return fmt.Errorf("%w: nil detector", ErrInvalidHandle)
	}
	switch d.life {
	case lifeReady:
		return nil
	case lifeDestroyed:
		return fmt.Errorf("%w: detector destroyed", ErrInvalidHandle)
	default:
		return fmt.Errorf("%w: detector not initialized", ErrInvalidHandle)
	}
}

// Process consumes one frame of FrameSamples mono 16 kHz samples.
//
// The scorer always runs so its state stays continuous. With checkTrigger
// false the result is always StatusProcessed. With checkTrigger true the
// result is StatusDetected when the detector is armed and the scorer signals
// onset; detection then suppresses further detections for the onset gap.
//
// On error nothing about the detector's state changes.
func (d *Detector) Process(checkTrigger bool, frame []int16) (Status, error) {
	if err := d.check(); err != nil {
		return StatusProcessed, err
	}
	if frame == nil {
		return StatusProcessed, fmt.Errorf("%w: nil frame", ErrInvalidArgument)
	}
	if len(frame) != FrameSamples {
		return StatusProcessed, fmt.Errorf("%w: %w (got %d)", ErrInvalidArgument, ErrFrameSize, len(frame))
	}

	started := d.profiler.Start()
	st, err := d.step(checkTrigger, frame)
	d.profiler.Stop(started)
	return st, err
}

// ProcessBytes is Process for a little-endian 16-bit PCM frame of FrameBytes.
func (d *Detector) ProcessBytes(checkTrigger bool, pcm []byte) (Status, error) {
	if err := d.check(); err != nil {
		return StatusProcessed, err
	}
	if pcm == nil {
		return StatusProcessed, fmt.Errorf("%w: nil frame", ErrInvalidArgument)
	}
	if len(pcm) != FrameBytes {
		return StatusProcessed, fmt.Errorf("%w: %w (got %d bytes)", ErrInvalidArgument, ErrFrameSize, len(pcm))
	}
	for i := range d.scratch {
		d.scratch[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return d.Process(checkTrigger, d.scratch[:])
}

// step runs the scorer before touching the cooldown so a scorer failure
// leaves the state machine untouched.
func (d *Detector) step(checkTrigger bool, frame []int16) (Status, error) {
	onset, err := d.scorer.Score(frame)
	if err != nil {
		return StatusProcessed, fmt.Errorf("%w: score frame: %w", ErrInternal, err)
	}

	// The decision uses the cooldown as it stood when the frame arrived.
	armed := d.cooldownMs == 0
	if !armed {
		d.cooldownMs -= frameMs
		if d.cooldownMs < 0 {
			d.cooldownMs = 0
		}
	}
	d.frames++

	if !checkTrigger || !armed || !onset {
		return StatusProcessed, nil
	}

	d.cooldownMs = d.cfg.OnsetGapMs
	d.detections++
	if d.logger.Enabled(context.Background(), slog.LevelDebug) {
		d.logger.Debug("speech onset detected",
			"frame", d.frames,
			"onset_gap_ms", d.cfg.OnsetGapMs)
	}
	return StatusDetected, nil
}

// Reset discards any cooldown and the scorer's running state, leaving the
// detector armed as if freshly created. Use it after a discontinuity in the
// audio feed. Calling it repeatedly is harmless.
func (d *Detector) Reset() error {
	if err := d.check(); err != nil {
		return err
	}
	d.scorer.Reset()
	d.cooldownMs = 0
	d.logger.Debug("speech onset detector reset")
	return nil
}

// Destroy releases the scorer and the detector's Manager slot. Every later
// call on d, including Destroy, fails with ErrInvalidHandle.
func (d *Detector) Destroy() error {
	if err := d.check(); err != nil {
		return err
	}
	d.life = lifeDestroyed
	if err := d.scorer.Close(); err != nil {
		d.logger.Warn("closing onset scorer", "err", err)
	}
	d.scorer = nil
	if d.manager != nil {
		d.manager.release()
	}
	d.logger.Info("speech onset detector destroyed",
		"frames", d.frames,
		"detections", d.detections)
	return nil
}

// Config returns the configuration the detector was created with.
func (d *Detector) Config() Config {
	if d == nil {
		return Config{}
	}
	return d.cfg
}

// State reports whether the detector is armed or cooling down.
func (d *Detector) State() State {
	if d == nil || d.cooldownMs == 0 {
		return StateArmed
	}
	return StateCoolingDown
}

// CooldownRemaining is how much more audio must be processed before the
// detector re-arms.
func (d *Detector) CooldownRemaining() time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(d.cooldownMs) * time.Millisecond
}

// Stats returns the frame and detection counters.
func (d *Detector) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{Frames: d.frames, Detections: d.detections}
}
