package sod

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newClockedProfiler(step time.Duration, opts ...ProfilerOption) *Profiler {
	p := NewProfiler(append([]ProfilerOption{WithProfilerLogger(quietLogger)}, opts...)...)
	clk := &fakeClock{t: time.Unix(0, 0), step: step}
	p.now = clk.now
	return p
}

func TestProfilerGatedWhileDisabled(t *testing.T) {
	p := newClockedProfiler(time.Millisecond)

	p.Stop(p.Start())
	stats, ok := p.Data()
	assert.False(t, ok)
	assert.Zero(t, stats)

	p.Enable()
	p.Stop(p.Start())
	p.Disable()

	// Counting stopped; Reset must not clear while disabled.
	p.Stop(p.Start())
	p.Reset()
	_, ok = p.Data()
	assert.False(t, ok)
	assert.Equal(t, ProfileStats{Frames: 1, Elapsed: time.Millisecond}, p.snapshot())
}

func TestProfilerAccumulates(t *testing.T) {
	p := newClockedProfiler(2 * time.Millisecond)
	p.Enable()
	for i := 0; i < 5; i++ {
		p.Stop(p.Start())
	}
	stats, ok := p.Data()
	require.True(t, ok)
	assert.Equal(t, uint64(5), stats.Frames)
	assert.Equal(t, 10*time.Millisecond, stats.Elapsed)
	assert.Equal(t, 2*time.Millisecond, stats.PerFrame())

	p.Reset()
	stats, ok = p.Data()
	require.True(t, ok)
	assert.Zero(t, stats)
}

func TestProfilerEnableZeroesCounters(t *testing.T) {
	p := newClockedProfiler(time.Millisecond)
	p.Enable()
	p.Stop(p.Start())
	p.Disable()

	p.Enable()
	stats, ok := p.Data()
	require.True(t, ok)
	assert.Zero(t, stats)
}

func TestProfilerStopWithoutStart(t *testing.T) {
	p := newClockedProfiler(time.Millisecond)
	started := p.Start() // disabled, ignored
	p.Enable()
	p.Stop(started)
	p.Stop(time.Time{})
	stats, _ := p.Data()
	assert.Zero(t, stats.Elapsed)
}

func TestProfilerStopAfterReenable(t *testing.T) {
	p := newClockedProfiler(time.Millisecond)
	p.Enable()
	started := p.Start()
	p.Enable() // zeroes counters mid-call
	p.Stop(started)
	stats, ok := p.Data()
	require.True(t, ok)
	assert.Equal(t, uint64(0), stats.Frames)
	assert.Equal(t, time.Millisecond, stats.Elapsed)
}

func TestProfilerSharedAcrossGoroutines(t *testing.T) {
	p := NewProfiler(WithProfilerLogger(quietLogger))
	p.Enable()

	const workers, frames = 4, 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := NewManager(0).Create(DefaultConfig(),
				WithLogger(quietLogger), WithProfiler(p))
			if !assert.NoError(t, err) {
				return
			}
			defer d.Destroy()
			frame := silence()
			for i := 0; i < frames; i++ {
				_, err := d.Process(true, frame)
				assert.NoError(t, err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			p.Enable()
			p.Data()
			p.Reset()
		}
	}()
	wg.Wait()
	<-done

	p.Enable()
	d := newTestDetector(t, DefaultConfig(), WithProfiler(p))
	for i := 0; i < 10; i++ {
		_, err := d.Process(false, silence())
		require.NoError(t, err)
	}
	stats, ok := p.Data()
	require.True(t, ok)
	assert.Equal(t, uint64(10), stats.Frames)
}

func TestNilProfilerIsNoop(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.Enable()
		p.Stop(p.Start())
		p.Reset()
		p.Disable()
		p.PrintStats()
	})
	_, ok := p.Data()
	assert.False(t, ok)
}

func TestProfilerPrintStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := newClockedProfiler(time.Millisecond, WithProfilerLogger(logger))
	p.Enable()
	p.Stop(p.Start())
	p.PrintStats()

	out := buf.String()
	assert.Contains(t, out, "sod profile")
	assert.Contains(t, out, "frames=1")
	assert.Contains(t, out, "elapsed=1ms")
}

func TestProfilerMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	p := newClockedProfiler(time.Millisecond, WithMeterProvider(mp))
	p.Stop(p.Start()) // disabled: not recorded
	p.Enable()
	for i := 0; i < 3; i++ {
		p.Stop(p.Start())
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	hist := findMetric(rm, "sod.process.duration")
	require.NotNil(t, hist)
	h, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(3), h.DataPoints[0].Count)
	assert.InDelta(t, 0.003, h.DataPoints[0].Sum, 1e-9)

	frames := findMetric(rm, "sod.frames")
	require.NotNil(t, frames)
	sum, ok := frames.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
