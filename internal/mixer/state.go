package mixer

// TransitionState is a layer's position in the transition lifecycle.
type TransitionState int

const (
	Idle TransitionState = iota
	// Starting is armed; the next draw enters Transitioning.
	Starting
	Transitioning
)

func (s TransitionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Transitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}
