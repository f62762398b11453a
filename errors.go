package sod

import "errors"

var (
	// ErrInvalidArgument reports out-of-range configuration or a missing or
	// malformed input frame.
	ErrInvalidArgument = errors.New("sod: invalid argument")

	// ErrInvalidHandle reports a nil, foreign or destroyed Detector.
	ErrInvalidHandle = errors.New("sod: invalid handle")

	// ErrAlreadyInitialized is returned by Create when the Manager is at its
	// live-detector limit.
	ErrAlreadyInitialized = errors.New("sod: already initialized")

	// ErrInternal reports a scorer failure.
	ErrInternal = errors.New("sod: internal failure")

	// ErrFrameSize is wrapped together with ErrInvalidArgument when a frame is
	// not exactly FrameSamples long.
	ErrFrameSize = errors.New("frame must be exactly 160 samples")
)
