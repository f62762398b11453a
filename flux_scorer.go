package sod

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	fluxFFTSize       = 256
	fluxBins          = fluxFFTSize/2 + 1
	fluxWarmupFrames  = 10
	fluxReleaseFrames = 20
	fluxMeanRate      = 0.05
	fluxMeanMin       = 1e-6
	fluxEnergyGate    = 1e-7 // frames quieter than about -70 dBFS never trigger

	fluxRatioLeast = 12.0
	fluxRatioMost  = 2.0
)

// FluxScorer detects onsets as a jump in positive spectral flux relative to
// its running mean. It reacts faster than EnergyScorer to voiced onsets over
// stationary noise, at the cost of one FFT per frame; fft.FFTReal allocates
// its result, so prefer EnergyScorer where the frame path must not allocate.
type FluxScorer struct {
	ratio float64
	win   []float64
	buf   []float64

	prev    [fluxBins]float64
	mean    float64
	warm    int
	quiet   int
	talking bool
}

var _ Scorer = (*FluxScorer)(nil)

// NewFluxScorer is a ScorerFactory for FluxScorer.
func NewFluxScorer(sensitivity int) (Scorer, error) {
	return &FluxScorer{
		ratio: lerp(fluxRatioLeast, fluxRatioMost, sensitivity),
		win:   window.Hann(FrameSamples),
		buf:   make([]float64, fluxFFTSize),
		mean:  fluxMeanMin,
	}, nil
}

// Score implements Scorer.
func (s *FluxScorer) Score(frame []int16) (bool, error) {
	for i := range s.buf {
		s.buf[i] = 0
	}
	for i, v := range frame {
		s.buf[i] = float64(v) / 32768 * s.win[i]
	}
	spec := fft.FFTReal(s.buf)

	var flux float64
	for k := 0; k < fluxBins; k++ {
		mag := cmplx.Abs(spec[k])
		if d := mag - s.prev[k]; d > 0 {
			flux += d
		}
		s.prev[k] = mag
	}

	if s.warm < fluxWarmupFrames {
		s.warm++
		// The first frame has no predecessor; its flux is the whole spectrum.
		if s.warm > 1 {
			s.trackMean(flux)
		}
		return false, nil
	}

	above := flux > s.mean*s.ratio && frameEnergy(frame) > fluxEnergyGate
	if s.talking {
		if above {
			s.quiet = 0
		} else {
			s.quiet++
			if s.quiet >= fluxReleaseFrames {
				s.talking = false
				s.quiet = 0
			}
		}
		return false, nil
	}
	if above {
		s.talking = true
		return true, nil
	}
	s.trackMean(flux)
	return false, nil
}

func (s *FluxScorer) trackMean(flux float64) {
	s.mean += (flux - s.mean) * fluxMeanRate
	s.mean = math.Max(s.mean, fluxMeanMin)
}

// Reset implements Scorer.
func (s *FluxScorer) Reset() {
	s.prev = [fluxBins]float64{}
	s.mean = fluxMeanMin
	s.warm = 0
	s.quiet = 0
	s.talking = false
}

// Close implements Scorer.
func (s *FluxScorer) Close() error { return nil }
