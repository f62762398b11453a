package sod

// Energy scorer tuning. Frame counts are 10 ms frames.
const (
	energyWarmupFrames  = 10    // frames spent calibrating the noise floor
	energyAttackFrames  = 3     // consecutive loud frames to declare speech
	energyReleaseFrames = 20    // consecutive quiet frames to re-arm
	energyFloorMin      = 1e-9  // about -90 dBFS
	energyFloorRise     = 0.01  // slow upward tracking
	energyFloorFall     = 0.2   // fast downward tracking
	energyTalkFloorRise = 0.001 // upward tracking while talking, about 10 s

	// Energy ratio over the noise floor needed to count a loud frame.
	energyRatioLeast = 10.0 // sensitivity 0
	energyRatioMost  = 1.5  // MaxSensitivity
)

// EnergyScorer detects onsets as a sustained rise of frame energy over an
// adaptive noise floor. Sensitivity lowers the required ratio. It allocates
// nothing per frame.
//
// The floor keeps rising slowly while talking, so a lasting step in background
// noise is absorbed after a few seconds and the scorer re-arms.
type EnergyScorer struct {
	ratio float64

	floor   float64
	warm    int
	loud    int
	quiet   int
	talking bool
}

var _ Scorer = (*EnergyScorer)(nil)

// NewEnergyScorer is a ScorerFactory for EnergyScorer.
func NewEnergyScorer(sensitivity int) (Scorer, error) {
	return newEnergyScorer(sensitivity), nil
}

func newEnergyScorer(sensitivity int) *EnergyScorer {
	return &EnergyScorer{ratio: lerp(energyRatioLeast, energyRatioMost, sensitivity)}
}

// Ratio is the energy ratio over the noise floor that counts as loud.
func (s *EnergyScorer) Ratio() float64 { return s.ratio }

// Score implements Scorer.
func (s *EnergyScorer) Score(frame []int16) (bool, error) {
	e := frameEnergy(frame)
	if e < energyFloorMin {
		e = energyFloorMin
	}

	if s.warm < energyWarmupFrames {
		if s.warm == 0 {
			s.floor = e
		} else {
			s.track(e, energyFloorRise)
		}
		s.warm++
		return false, nil
	}

	if s.talking {
		s.track(e, energyTalkFloorRise)
		if e < s.floor*releaseRatio(s.ratio) {
			s.quiet++
			if s.quiet >= energyReleaseFrames {
				s.talking = false
				s.quiet = 0
			}
		} else {
			s.quiet = 0
		}
		return false, nil
	}

	if e > s.floor*s.ratio {
		s.loud++
		if s.loud >= energyAttackFrames {
			s.talking = true
			s.loud = 0
			return true, nil
		}
		return false, nil
	}
	s.loud = 0
	s.track(e, energyFloorRise)
	return false, nil
}

func (s *EnergyScorer) track(e, rise float64) {
	rate := rise
	if e < s.floor {
		rate = energyFloorFall
	}
	s.floor += (e - s.floor) * rate
	if s.floor < energyFloorMin {
		s.floor = energyFloorMin
	}
}

// Reset implements Scorer.
func (s *EnergyScorer) Reset() {
	*s = EnergyScorer{ratio: s.ratio}
}

// Close implements Scorer.
func (s *EnergyScorer) Close() error { return nil }

// releaseRatio is the hysteresis level below which a frame counts as quiet.
// It lies halfway between the floor and the attack ratio, so a steady input
// always releases once the floor has risen to meet it.
func releaseRatio(ratio float64) float64 {
	return 1 + (ratio-1)/2
}

// frameEnergy is the mean square of frame normalized to full scale.
func frameEnergy(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		x := float64(v) / 32768
		sum += x * x
	}
	return sum / float64(len(frame))
}
