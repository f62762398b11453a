package sod

import (
	"fmt"
	"log/slog"
	"sync"
)

// Manager is the allocation boundary for detectors. It enforces a limit on
// the number of live detectors; the package-level New uses a Manager with a
// limit of one. Manager is safe for concurrent use; the detectors it creates
// are not.
type Manager struct {
	mu    sync.Mutex
	limit int
	live  int
}

// NewManager returns a Manager allowing at most limit live detectors.
// A limit <= 0 means unlimited.
func NewManager(limit int) *Manager {
	return &Manager{limit: limit}
}

var defaultManager = NewManager(1)

// New creates a detector through the process-wide single-instance Manager.
// It fails with ErrAlreadyInitialized while another detector created by New
// is still live.
func New(cfg Config, opts ...Option) (*Detector, error) {
	return defaultManager.Create(cfg, opts...)
}

// Live returns the number of detectors created by m and not yet destroyed.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Create validates cfg, reserves a slot and returns an armed detector.
func (m *Manager) Create(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{
		scorer: NewEnergyScorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scorer == nil {
		return nil, fmt.Errorf("%w: nil scorer factory", ErrInvalidArgument)
	}

	if err := m.acquire(); err != nil {
		return nil, err
	}
	sc, err := o.scorer(cfg.Sensitivity)
	if err != nil {
		m.release()
		return nil, fmt.Errorf("%w: create scorer: %w", ErrInternal, err)
	}
	if sc == nil {
		m.release()
		return nil, fmt.Errorf("%w: scorer factory returned nil", ErrInternal)
	}

	d := &Detector{
		cfg:      cfg,
		scorer:   sc,
		profiler: o.profiler,
		logger:   o.logger,
		manager:  m,
		life:     lifeReady,
	}
	d.logger.Info("speech onset detector created",
		"sensitivity", cfg.Sensitivity,
		"onset_gap_ms", cfg.OnsetGapMs)
	return d, nil
}

func (m *Manager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && m.live >= m.limit {
		return fmt.Errorf("%w: %d of %d detectors live", ErrAlreadyInitialized, m.live, m.limit)
	}
	m.live++
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live > 0 {
		m.live--
	}
}

// Option configures a Detector at creation.
type Option func(*options)

type options struct {
	scorer   ScorerFactory
	profiler *Profiler
	logger   *slog.Logger
}

// WithScorer selects the onset scorer. The default is NewEnergyScorer.
func WithScorer(f ScorerFactory) Option {
	return func(o *options) { o.scorer = f }
}

// WithProfiler brackets every Process call with p.Start / p.Stop.
func WithProfiler(p *Profiler) Option {
	return func(o *options) { o.profiler = p }
}

// WithLogger sets the logger for lifecycle and detection events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
