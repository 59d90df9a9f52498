package mixer

import "errors"

var (
	ErrNegativeDuration     = errors.New("duration must be positive or zero")
	ErrTransitionInProgress = errors.New("cannot change transition mode during a transition")
	ErrDuplicateLayer       = errors.New("layer name already in use")
	ErrNoLayer              = errors.New("layer not found")
	ErrUnknownPreset        = errors.New("preset not found")
)
