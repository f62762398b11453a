package config

import (
	"fmt"

	sod "github.com/cortexswarm/speech-onset-go"
)

// ScorerFactory returns the factory for the configured scorer. The silero
// scorer is only available in binaries built with the onnx tag.
func (s ScorerConfig) ScorerFactory() (sod.ScorerFactory, error) {
	switch s.Name {
	case "", ScorerEnergy:
		return sod.NewEnergyScorer, nil
	case ScorerFlux:
		return sod.NewFluxScorer, nil
	case ScorerSilero:
		return sileroFactory(s)
	default:
		return nil, fmt.Errorf("config: unknown scorer %q", s.Name)
	}
}
