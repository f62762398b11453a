package sod

import "time"

// OnsetEvent describes one detection reported by a Stream.
type OnsetEvent struct {
	// Frame is the zero-based index of the frame that triggered detection.
	Frame uint64

	// Offset is the stream time at the end of that frame.
	Offset time.Duration

	// Lookback is the retained audio ending with the triggering frame. The
	// stream reuses the slice after the callback returns; copy if retaining.
	Lookback []int16
}

// Callbacks are invoked synchronously by the stream from the goroutine that
// calls PushPCM. The stream does not spawn goroutines. All fields are
// optional (nil is allowed).
type Callbacks struct {
	OnListeningStarted func()
	OnListeningStopped func()

	OnOnset func(ev OnsetEvent)

	// OnFrame sees every processed frame with its status. The frame slice is
	// reused after the callback returns.
	OnFrame func(frame []int16, status Status)

	OnError func(err error)
}
