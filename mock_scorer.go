package sod

// MockScorer is a scriptable Scorer for tests. ScoreFunc decides each frame;
// when nil, Score never signals onset. The first frame sample of every call is
// recorded so tests can check ordering without retaining whole frames.
type MockScorer struct {
	// ScoreFunc is called with the zero-based call index and the frame.
	ScoreFunc func(call int, frame []int16) (bool, error)

	// CloseErr is returned by Close.
	CloseErr error

	Calls        int
	FirstSamples []int16
	ResetCount   int
	Closed       bool
}

var _ Scorer = (*MockScorer)(nil)

// NewMockScorerWithSequence returns a MockScorer replaying onsets in order,
// cycling when exhausted. An empty sequence never signals onset.
func NewMockScorerWithSequence(onsets []bool) *MockScorer {
	return &MockScorer{
		ScoreFunc: func(call int, _ []int16) (bool, error) {
			if len(onsets) == 0 {
				return false, nil
			}
			return onsets[call%len(onsets)], nil
		},
	}
}

// NewMockScorerAlways returns a MockScorer that signals onset on every frame.
func NewMockScorerAlways() *MockScorer {
	return &MockScorer{
		ScoreFunc: func(int, []int16) (bool, error) { return true, nil },
	}
}

// Factory returns a ScorerFactory handing out m.
func (m *MockScorer) Factory() ScorerFactory {
	return func(int) (Scorer, error) { return m, nil }
}

// Score implements Scorer.
func (m *MockScorer) Score(frame []int16) (bool, error) {
	call := m.Calls
	m.Calls++
	if len(frame) > 0 {
		m.FirstSamples = append(m.FirstSamples, frame[0])
	}
	if m.ScoreFunc == nil {
		return false, nil
	}
	return m.ScoreFunc(call, frame)
}

// Reset implements Scorer.
func (m *MockScorer) Reset() { m.ResetCount++ }

// Close implements Scorer.
func (m *MockScorer) Close() error {
	m.Closed = true
	return m.CloseErr
}
