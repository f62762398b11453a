package sod

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.DiscardHandler)

// toneGen produces consecutive frames of a continuous 440 Hz tone.
type toneGen struct {
	n int
}

func (g *toneGen) frame(amp float64) []int16 {
	out := make([]int16, FrameSamples)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*440*float64(g.n)/SampleRate))
		g.n++
	}
	return out
}

// noiseGen produces frames of uniform white noise from a fixed seed.
type noiseGen struct {
	r *rand.Rand
}

func newNoiseGen(seed uint64) *noiseGen {
	return &noiseGen{r: rand.New(rand.NewPCG(seed, seed))}
}

func (g *noiseGen) frame(amp float64) []int16 {
	out := make([]int16, FrameSamples)
	for i := range out {
		out[i] = int16(amp * (2*g.r.Float64() - 1))
	}
	return out
}

func silence() []int16 { return make([]int16, FrameSamples) }

// newTestDetector creates a detector on a private unlimited manager.
func newTestDetector(t *testing.T, cfg Config, opts ...Option) *Detector {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger)}, opts...)
	d, err := NewManager(0).Create(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Destroy() })
	return d
}
