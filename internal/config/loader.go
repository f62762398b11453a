package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	sod "github.com/cortexswarm/speech-onset-go"
	"gopkg.in/yaml.v3"
)

// ValidScorerNames lists the accepted scorer.name values.
var ValidScorerNames = []string{ScorerEnergy, ScorerFlux, ScorerSilero}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if err := cfg.Detector.SOD().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}

	if !slices.Contains(ValidScorerNames, cfg.Scorer.Name) {
		errs = append(errs, fmt.Errorf("scorer.name %q is invalid; valid values: %v", cfg.Scorer.Name, ValidScorerNames))
	}
	if cfg.Scorer.Name == ScorerSilero && cfg.Scorer.ModelPath == "" {
		errs = append(errs, errors.New("scorer.model_path is required for the silero scorer"))
	}

	if cfg.Stream.LookbackMs < 0 {
		errs = append(errs, fmt.Errorf("stream.lookback_ms must be >= 0, got %d", cfg.Stream.LookbackMs))
	}

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	return errors.Join(errs...)
}

// LogWarnings logs settings that are valid but will be adjusted at runtime.
// Call it once the logger built from cfg is in place.
func (c *Config) LogWarnings(logger *slog.Logger) {
	if c.Stream.LookbackMs >= 0 && c.Stream.Lookback() < sod.MaxLateDetection {
		logger.Warn("stream.lookback_ms is below the late detection bound; it will be raised",
			"lookback_ms", c.Stream.LookbackMs,
			"min_ms", int(sod.MaxLateDetection/time.Millisecond))
	}
}
