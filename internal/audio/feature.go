package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingGroup   = errors.New("feature has no group")
	ErrMissingFeature = errors.New("feature has no name")
	ErrBadValue       = errors.New("feature value must be a number or bool")
)

// Feature is one audio-analysis report for a source group, e.g. group "[Channel1]",
// feature "beat". Value carries numbers; bool reports set IsBool and mirror into Value as 0/1.
type Feature struct {
	Group        string
	Feature      string
	Value        float64
	Bool         bool
	IsBool       bool
	Time         float64
	TimeReceived time.Time
}

// Truthy reports whether the feature is "on": true for bools, non-zero for numbers.
func (f Feature) Truthy() bool {
	if f.IsBool {
		return f.Bool
	}
	return f.Value != 0
}

func (f Feature) Validate() error {
	if f.Group == "" {
		return ErrMissingGroup
	}
	if f.Feature == "" {
		return ErrMissingFeature
	}
	return nil
}

// wire is the JSON shape accepted at the sensor boundary.
type wire struct {
	Group   string          `json:"group"`
	Feature string          `json:"feature"`
	Value   json.RawMessage `json:"value"`
	Time    float64         `json:"time"`
}

// ParseFeature decodes and validates a JSON feature record. Partial records are rejected.
func ParseFeature(data []byte, now time.Time) (Feature, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Feature{}, fmt.Errorf("decode feature: %w", err)
	}
	f := Feature{Group: w.Group, Feature: w.Feature, Time: w.Time, TimeReceived: now}
	if err := f.Validate(); err != nil {
		return Feature{}, err
	}
	if len(w.Value) == 0 {
		return Feature{}, ErrBadValue
	}
	var b bool
	if err := json.Unmarshal(w.Value, &b); err == nil {
		f.IsBool, f.Bool = true, b
		if b {
			f.Value = 1
		}
		return f, nil
	}
	if err := json.Unmarshal(w.Value, &f.Value); err != nil {
		return Feature{}, ErrBadValue
	}
	return f, nil
}
