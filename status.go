package sod

// Status is the outcome of one processed frame.
type Status int

const (
	// StatusProcessed acknowledges that the frame was consumed. It is the only
	// status returned when the caller did not ask for a decision.
	StatusProcessed Status = iota

	// StatusDetected reports a speech onset. Only returned when the caller
	// passed checkTrigger = true.
	StatusDetected
)

func (s Status) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusDetected:
		return "detected"
	default:
		return "unknown"
	}
}

// State is the onset state machine's arming state.
type State int

const (
	StateArmed State = iota
	StateCoolingDown
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateCoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}
