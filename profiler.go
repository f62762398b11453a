package sod

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for profiler metrics.
const meterName = "github.com/cortexswarm/speech-onset-go"

// ProfileStats is a snapshot of profiler counters.
type ProfileStats struct {
	Frames  uint64        // profiled Process calls
	Elapsed time.Duration // total time spent inside them
}

// PerFrame is the mean processing time per profiled frame.
func (s ProfileStats) PerFrame() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Frames)
}

// Profiler measures time spent in Detector.Process. It only counts while
// enabled: Start, Stop, Data and Reset do nothing while disabled. It never
// influences detection.
//
// All methods may be called from any goroutine, and one Profiler may be shared
// by detectors running on different goroutines. Each call's start time is
// carried by the caller from Start to Stop. A nil *Profiler is valid and does
// nothing.
type Profiler struct {
	enabled atomic.Bool
	frames  atomic.Uint64
	elapsed atomic.Int64

	now    func() time.Time
	logger *slog.Logger

	duration metric.Float64Histogram
	counter  metric.Int64Counter
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithProfilerLogger sets the logger PrintStats writes to.
func WithProfilerLogger(l *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMeterProvider additionally records each profiled frame as OpenTelemetry
// metrics: the sod.process.duration histogram and the sod.frames counter.
func WithMeterProvider(mp metric.MeterProvider) ProfilerOption {
	return func(p *Profiler) {
		if mp == nil {
			return
		}
		m := mp.Meter(meterName)
		// Instrument errors leave the field nil; recording is skipped then.
		p.duration, _ = m.Float64Histogram("sod.process.duration",
			metric.WithDescription("Time spent processing one audio frame."),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(frameBuckets...),
		)
		p.counter, _ = m.Int64Counter("sod.frames",
			metric.WithDescription("Audio frames processed while profiling."),
		)
	}
}

// frameBuckets are histogram boundaries in seconds around the 10 ms frame
// deadline.
var frameBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02,
}

// NewProfiler returns a disabled profiler.
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enable zeroes the counters and starts profiling.
func (p *Profiler) Enable() {
	if p == nil {
		return
	}
	p.frames.Store(0)
	p.elapsed.Store(0)
	p.enabled.Store(true)
}

// Disable stops profiling. Counters keep their values.
func (p *Profiler) Disable() {
	if p == nil {
		return
	}
	p.enabled.Store(false)
}

// Enabled reports whether the profiler is counting.
func (p *Profiler) Enabled() bool {
	return p != nil && p.enabled.Load()
}

// Start marks the beginning of one processing call and returns the value to
// hand to Stop. It returns the zero time while disabled.
func (p *Profiler) Start() time.Time {
	if !p.Enabled() {
		return time.Time{}
	}
	p.frames.Add(1)
	return p.now()
}

// Stop marks the end of the call Start returned started for. A zero started,
// from a Start while disabled, is ignored.
func (p *Profiler) Stop(started time.Time) {
	if !p.Enabled() || started.IsZero() {
		return
	}
	d := p.now().Sub(started)
	p.elapsed.Add(int64(d))

	ctx := context.Background()
	if p.duration != nil {
		p.duration.Record(ctx, d.Seconds())
	}
	if p.counter != nil {
		p.counter.Add(ctx, 1)
	}
}

// Data returns the counters. ok is false, and the stats zero, while the
// profiler is disabled.
func (p *Profiler) Data() (stats ProfileStats, ok bool) {
	if !p.Enabled() {
		return ProfileStats{}, false
	}
	return p.snapshot(), true
}

// Reset zeroes the counters. It does nothing while disabled.
func (p *Profiler) Reset() {
	if !p.Enabled() {
		return
	}
	p.frames.Store(0)
	p.elapsed.Store(0)
}

// PrintStats logs the current counters regardless of the enabled state.
func (p *Profiler) PrintStats() {
	if p == nil {
		return
	}
	s := p.snapshot()
	p.logger.Info("sod profile",
		"enabled", p.enabled.Load(),
		"frames", s.Frames,
		"elapsed", s.Elapsed,
		"per_frame", s.PerFrame())
}

func (p *Profiler) snapshot() ProfileStats {
	return ProfileStats{
		Frames:  p.frames.Load(),
		Elapsed: time.Duration(p.elapsed.Load()),
	}
}
