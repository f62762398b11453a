//go:build !onnx

package config

import (
	"errors"

	sod "github.com/cortexswarm/speech-onset-go"
)

// ErrSileroUnavailable is returned when the silero scorer is requested from a
// binary built without the onnx tag.
var ErrSileroUnavailable = errors.New("config: silero scorer requires building with -tags onnx")

func sileroFactory(ScorerConfig) (sod.ScorerFactory, error) {
	return nil, ErrSileroUnavailable
}
