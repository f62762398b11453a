//go:build onnx

package config

import (
	"fmt"

	sod "github.com/cortexswarm/speech-onset-go"
)

func sileroFactory(s ScorerConfig) (sod.ScorerFactory, error) {
	if err := sod.InitONNXRuntime(s.RuntimeLibrary); err != nil {
		return nil, fmt.Errorf("config: silero scorer: %w", err)
	}
	return sod.SileroFactory(s.ModelPath), nil
}
