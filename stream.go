package sod

import (
	"errors"
	"time"
)

// ErrStreamClosed is returned by PushPCM after Close.
var ErrStreamClosed = errors.New("sod: stream is closed")

// Stream adapts a Detector to PCM of arbitrary length. It splits input into
// whole frames, keeps a look-back ring, and reports onsets through Callbacks.
//
// While stopped the stream still feeds every frame to the detector with
// trigger-check off, so the scorer stays warm and the first frame after Start
// is judged with full context.
//
// Stream is single-threaded and not goroutine-safe; the caller must serialize
// PushPCM and lifecycle methods.
type Stream struct {
	det      *Detector
	cb       Callbacks
	lookback *Lookback

	carry   [FrameSamples]int16
	carried int
	frame   uint64
	clip    []int16

	listening bool
	closed    bool
}

// NewStream wraps det. lookback is the audio kept for OnsetEvent.Lookback;
// values below MaxLateDetection are raised to it. The stream owns det from
// here on and destroys it in Close.
func NewStream(det *Detector, cb Callbacks, lookback time.Duration) (*Stream, error) {
	if err := det.check(); err != nil {
		return nil, err
	}
	if lookback < MaxLateDetection {
		lookback = MaxLateDetection
	}
	lb := NewLookback(lookback)
	return &Stream{
		det:      det,
		cb:       cb,
		lookback: lb,
		clip:     make([]int16, 0, len(lb.buf)),
	}, nil
}

// Detector returns the wrapped detector.
func (s *Stream) Detector() *Detector { return s.det }

// Listening reports whether detections are being requested.
func (s *Stream) Listening() bool { return s.listening }

// Start requests onset decisions. Invokes OnListeningStarted.
func (s *Stream) Start() {
	if s.closed {
		return
	}
	s.listening = true
	if s.cb.OnListeningStarted != nil {
		s.cb.OnListeningStarted()
	}
}

// Stop keeps feeding the detector without requesting decisions. Invokes
// OnListeningStopped.
func (s *Stream) Stop() {
	if s.closed {
		return
	}
	s.listening = false
	if s.cb.OnListeningStopped != nil {
		s.cb.OnListeningStopped()
	}
}

// PushPCM processes 16 kHz mono samples. Samples that do not fill a frame
// are carried into the next call. On a detector error OnError is invoked and
// the error returned; samples after the failing frame are dropped.
func (s *Stream) PushPCM(samples []int16) error {
	if s.closed {
		return ErrStreamClosed
	}
	for len(samples) > 0 {
		n := copy(s.carry[s.carried:], samples)
		s.carried += n
		samples = samples[n:]
		if s.carried < FrameSamples {
			return nil
		}
		s.carried = 0
		if err := s.processFrame(s.carry[:]); err != nil {
			if s.cb.OnError != nil {
				s.cb.OnError(err)
			}
			return err
		}
	}
	return nil
}

func (s *Stream) processFrame(frame []int16) error {
	st, err := s.det.Process(s.listening, frame)
	if err != nil {
		return err
	}
	s.lookback.Write(frame)
	idx := s.frame
	s.frame++

	if s.cb.OnFrame != nil {
		s.cb.OnFrame(frame, st)
	}
	if st == StatusDetected && s.cb.OnOnset != nil {
		s.clip = s.lookback.AppendTo(s.clip[:0])
		s.cb.OnOnset(OnsetEvent{
			Frame:    idx,
			Offset:   time.Duration(s.frame) * FrameDuration,
			Lookback: s.clip,
		})
	}
	return nil
}

// Reset handles a discontinuity in the feed: the partial frame, look-back
// audio and detector state are discarded. The frame counter keeps running.
func (s *Stream) Reset() error {
	if s.closed {
		return ErrStreamClosed
	}
	s.carried = 0
	s.lookback.Reset()
	return s.det.Reset()
}

// Close destroys the detector. The stream must not be used after Close.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.listening = false
	return s.det.Destroy()
}
