package sod

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerSingleInstance(t *testing.T) {
	m := NewManager(1)
	first, err := m.Create(DefaultConfig(), WithLogger(quietLogger))
	require.NoError(t, err)

	_, err = m.Create(DefaultConfig(), WithLogger(quietLogger))
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, 1, m.Live())

	require.NoError(t, first.Destroy())
	second, err := m.Create(DefaultConfig(), WithLogger(quietLogger))
	require.NoError(t, err)
	require.NoError(t, second.Destroy())
	assert.Equal(t, 0, m.Live())
}

func TestManagerValidatesBeforeLimit(t *testing.T) {
	m := NewManager(1)
	d, err := m.Create(DefaultConfig(), WithLogger(quietLogger))
	require.NoError(t, err)
	defer d.Destroy()

	_, err = m.Create(Config{Sensitivity: 32768, OnsetGapMs: 400}, WithLogger(quietLogger))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrAlreadyInitialized)
}

func TestManagerUnlimited(t *testing.T) {
	m := NewManager(0)
	var dets []*Detector
	for i := 0; i < 5; i++ {
		d, err := m.Create(DefaultConfig(), WithLogger(quietLogger))
		require.NoError(t, err)
		dets = append(dets, d)
	}
	assert.Equal(t, 5, m.Live())
	for _, d := range dets {
		require.NoError(t, d.Destroy())
	}
	assert.Equal(t, 0, m.Live())
}

func TestManagerScorerFactoryFailureReleasesSlot(t *testing.T) {
	m := NewManager(1)
	boom := errors.New("no model")
	_, err := m.Create(DefaultConfig(), WithLogger(quietLogger),
		WithScorer(func(int) (Scorer, error) { return nil, boom }))
	require.ErrorIs(t, err, ErrInternal)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Live())

	_, err = m.Create(DefaultConfig(), WithLogger(quietLogger),
		WithScorer(func(int) (Scorer, error) { return nil, nil }))
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, m.Live())

	_, err = m.Create(DefaultConfig(), WithScorer(nil))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestManagerPassesSensitivityToScorer(t *testing.T) {
	var got int
	d, err := NewManager(0).Create(Config{Sensitivity: 1234, OnsetGapMs: 100}, WithLogger(quietLogger),
		WithScorer(func(s int) (Scorer, error) {
			got = s
			return &MockScorer{}, nil
		}))
	require.NoError(t, err)
	defer d.Destroy()
	assert.Equal(t, 1234, got)
}

func TestManagerConcurrentCreateRespectsLimit(t *testing.T) {
	m := NewManager(3)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		dets []*Detector
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := m.Create(DefaultConfig(), WithLogger(quietLogger))
			if err != nil {
				return
			}
			mu.Lock()
			dets = append(dets, d)
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, dets, 3)
	for _, d := range dets {
		require.NoError(t, d.Destroy())
	}
}

func TestNewIsSingleInstance(t *testing.T) {
	d, err := New(DefaultConfig(), WithLogger(quietLogger))
	require.NoError(t, err)

	_, err = New(DefaultConfig(), WithLogger(quietLogger))
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	require.NoError(t, d.Destroy())
	d, err = New(DefaultConfig(), WithLogger(quietLogger))
	require.NoError(t, err)
	require.NoError(t, d.Destroy())
}
