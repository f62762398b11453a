//go:build onnx

package sod

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	sileroWindow         = 512
	sileroContextSamples = 64
	sileroInputSamples   = sileroContextSamples + sileroWindow // 576
	sileroStateSize      = 2 * 1 * 128
	sileroReleaseWindows = 6    // ~190 ms below the release threshold re-arms
	sileroHysteresis     = 0.15 // release threshold = trigger threshold - hysteresis

	sileroThresholdLeast = 0.85
	sileroThresholdMost  = 0.15
)

var errSileroClosed = errors.New("silero scorer is closed")

// SileroScorer runs the Silero VAD model through ONNX Runtime. Frames are
// gathered into 512-sample windows; a window whose speech probability crosses
// the sensitivity-derived threshold from below signals onset. All tensors are
// allocated once, so Score does not allocate.
//
// InitONNXRuntime must have succeeded before NewSileroScorer is called.
type SileroScorer struct {
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32] // (1, 576)
	state    *ort.Tensor[float32] // (2, 1, 128)
	sr       *ort.Tensor[int64]   // (1,) = 16000
	output   *ort.Tensor[float32] // (1, 1) speech prob
	stateOut *ort.Tensor[float32] // (2, 1, 128)

	threshold float64

	context [sileroContextSamples]float32
	pending [sileroWindow]float32
	filled  int

	lastProb float32
	quiet    int
	talking  bool
	closed   bool
}

var _ Scorer = (*SileroScorer)(nil)

// SileroFactory returns a ScorerFactory loading the model at modelPath.
func SileroFactory(modelPath string) ScorerFactory {
	return func(sensitivity int) (Scorer, error) {
		return NewSileroScorer(modelPath, sensitivity)
	}
}

// NewSileroScorer loads the Silero VAD model and prepares its session.
func NewSileroScorer(modelPath string, sensitivity int) (*SileroScorer, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("%w: silero model path is empty", ErrInvalidArgument)
	}
	var values []ort.Value
	cleanup := func() {
		for _, v := range values {
			_ = v.Destroy()
		}
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, sileroInputSamples), make([]float32, sileroInputSamples))
	if err != nil {
		return nil, fmt.Errorf("silero input tensor: %w", err)
	}
	values = append(values, inputTensor)

	stateTensor, err := ort.NewTensor(ort.NewShape(2, 1, 128), make([]float32, sileroStateSize))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("silero state tensor: %w", err)
	}
	values = append(values, stateTensor)

	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{SampleRate})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("silero sr tensor: %w", err)
	}
	values = append(values, srTensor)

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("silero output tensor: %w", err)
	}
	values = append(values, outputTensor)

	stateOutTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, 128))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("silero stateN tensor: %w", err)
	}
	values = append(values, stateOutTensor)

	sess, err := ort.NewAdvancedSession(modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateOutTensor},
		nil)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("silero session: %w", err)
	}

	return &SileroScorer{
		session:   sess,
		input:     inputTensor,
		state:     stateTensor,
		sr:        srTensor,
		output:    outputTensor,
		stateOut:  stateOutTensor,
		threshold: lerp(sileroThresholdLeast, sileroThresholdMost, sensitivity),
	}, nil
}

// Threshold is the speech probability that triggers an onset.
func (s *SileroScorer) Threshold() float64 { return s.threshold }

// LastProbability is the speech probability of the most recent window.
func (s *SileroScorer) LastProbability() float32 { return s.lastProb }

// Score implements Scorer. At most one window completes per frame.
func (s *SileroScorer) Score(frame []int16) (bool, error) {
	if s.closed {
		return false, errSileroClosed
	}
	onset := false
	for _, v := range frame {
		s.pending[s.filled] = float32(v) / 32768
		s.filled++
		if s.filled < sileroWindow {
			continue
		}
		s.filled = 0
		prob, err := s.infer()
		if err != nil {
			return false, err
		}
		if s.decide(prob) {
			onset = true
		}
	}
	return onset, nil
}

func (s *SileroScorer) infer() (float32, error) {
	in := s.input.GetData()
	copy(in[:sileroContextSamples], s.context[:])
	copy(in[sileroContextSamples:], s.pending[:])
	copy(s.context[:], in[sileroInputSamples-sileroContextSamples:])

	if err := s.session.Run(); err != nil {
		return 0, fmt.Errorf("silero run: %w", err)
	}
	prob := s.output.GetData()[0]
	copy(s.state.GetData(), s.stateOut.GetData())
	s.lastProb = prob
	return prob, nil
}

func (s *SileroScorer) decide(prob float32) bool {
	p := float64(prob)
	if s.talking {
		if p < s.threshold-sileroHysteresis {
			s.quiet++
			if s.quiet >= sileroReleaseWindows {
				s.talking = false
				s.quiet = 0
			}
		} else {
			s.quiet = 0
		}
		return false
	}
	if p >= s.threshold {
		s.talking = true
		return true
	}
	return false
}

// Reset implements Scorer.
func (s *SileroScorer) Reset() {
	s.context = [sileroContextSamples]float32{}
	s.pending = [sileroWindow]float32{}
	s.filled = 0
	s.lastProb = 0
	s.quiet = 0
	s.talking = false
	if !s.closed {
		s.state.ZeroContents()
	}
}

// Close implements Scorer.
func (s *SileroScorer) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.session.Destroy()
	for _, v := range []ort.Value{s.input, s.state, s.sr, s.output, s.stateOut} {
		if derr := v.Destroy(); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}
