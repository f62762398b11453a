// Package config loads the YAML configuration shared by the example
// front-ends: detector settings, scorer choice, look-back length, logging and
// profiling.
package config

import (
	"io"
	"log/slog"
	"time"

	sod "github.com/cortexswarm/speech-onset-go"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to a slog level; unknown values map to Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Scorer names accepted in scorer.name.
const (
	ScorerEnergy = "energy"
	ScorerFlux   = "flux"
	ScorerSilero = "silero"
)

// Config is the root of the YAML file.
type Config struct {
	Detector DetectorConfig `yaml:"detector"`
	Scorer   ScorerConfig   `yaml:"scorer"`
	Stream   StreamConfig   `yaml:"stream"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Profile enables the frame profiler and prints its stats on exit.
	Profile bool `yaml:"profile"`
}

// DetectorConfig mirrors sod.Config.
type DetectorConfig struct {
	// Sensitivity in [0, 32767]. Default: 16384.
	Sensitivity int `yaml:"sensitivity"`

	// OnsetGapMs is one of 0, 100, 200, 300, 400, 500, 1000. Default: 400.
	OnsetGapMs int `yaml:"onset_gap_ms"`
}

// SOD converts to the library configuration.
func (d DetectorConfig) SOD() sod.Config {
	return sod.Config{Sensitivity: d.Sensitivity, OnsetGapMs: d.OnsetGapMs}
}

// ScorerConfig selects the onset scorer.
type ScorerConfig struct {
	// Name is "energy" (default), "flux" or "silero".
	//
	// Only "energy" keeps the per-frame path free of heap allocation. "flux"
	// allocates one FFT result per 10 ms frame, which adds GC load on
	// long-running streams; "silero" runs an ONNX inference every 32 ms.
	Name string `yaml:"name"`

	// ModelPath is the Silero VAD ONNX model. Required for "silero".
	ModelPath string `yaml:"model_path"`

	// RuntimeLibrary optionally points at the ONNX Runtime shared library.
	RuntimeLibrary string `yaml:"runtime_library"`
}

// StreamConfig configures the stream front-end.
type StreamConfig struct {
	// LookbackMs is the audio kept for each onset clip. Default: 500.
	LookbackMs int `yaml:"lookback_ms"`
}

// Lookback returns the look-back as a duration.
func (s StreamConfig) Lookback() time.Duration {
	return time.Duration(s.LookbackMs) * time.Millisecond
}

// Default returns the configuration used for fields the file leaves out.
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Sensitivity: sod.NominalSensitivity,
			OnsetGapMs:  sod.DefaultOnsetGapMs,
		},
		Scorer:   ScorerConfig{Name: ScorerEnergy},
		Stream:   StreamConfig{LookbackMs: int(sod.MaxLateDetection / time.Millisecond)},
		LogLevel: LogInfo,
	}
}

// NewLogger builds a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel.Level()}))
}
