// Package sod detects the onset of speech in a stream of 16 kHz mono audio.
//
// A Detector consumes one 10 ms frame (160 samples) per Process call and
// reports StatusDetected when speech has just begun. Sensitivity (0..32767)
// biases the pluggable onset Scorer; the onset gap suppresses further
// detections for a fixed amount of processed audio after each one.
//
//	det, err := sod.New(sod.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer det.Destroy()
//	for frame := range frames {
//	    st, err := det.Process(true, frame)
//	    ...
//	}
//
// Detections can arrive up to MaxLateDetection after the true onset, so
// callers that need the onset audio keep a Lookback. Stream bundles framing,
// look-back and callbacks for callers with arbitrary chunk sizes.
package sod
