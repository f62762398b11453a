package sod

// Scorer turns a stream of frames into onset decisions. It owns whatever
// running state it needs between frames; the Detector never inspects it.
//
// Score is called exactly once for every frame the Detector accepts,
// regardless of the caller's trigger-check flag, so implementations see a
// gapless stream. Implementations should signal onset on the transition from
// non-speech to speech rather than on every speech frame; the Detector's onset
// gap only debounces repeated signals.
//
// Scorers are used from a single goroutine and must not block.
type Scorer interface {
	// Score consumes one frame of FrameSamples samples and reports whether
	// speech started in it.
	Score(frame []int16) (onset bool, err error)

	// Reset returns the scorer to its freshly constructed state.
	Reset()

	// Close releases resources. The scorer is not used after Close.
	Close() error
}

// ScorerFactory builds a Scorer for the given sensitivity in
// [0, MaxSensitivity]. A higher sensitivity must never make the scorer less
// likely to signal onset.
type ScorerFactory func(sensitivity int) (Scorer, error)

// sensitivityFraction maps sensitivity onto [0, 1].
func sensitivityFraction(sensitivity int) float64 {
	if sensitivity <= 0 {
		return 0
	}
	if sensitivity >= MaxSensitivity {
		return 1
	}
	return float64(sensitivity) / MaxSensitivity
}

// lerp interpolates from least (sensitivity 0) to most (MaxSensitivity).
func lerp(least, most float64, sensitivity int) float64 {
	return least + (most-least)*sensitivityFraction(sensitivity)
}
