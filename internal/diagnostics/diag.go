// Package diagnostics is the structured problem report pushed to operators.
package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Rejected reports a malformed inbound message that was dropped.
func Rejected(code string, err error, payload []byte) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     code,
		Summary:  "Message rejected",
		Detail:   err.Error(),
		SuggestedFixes: []string{
			"check the sender's message format",
		},
	}
	if len(payload) > 0 {
		if len(payload) > 256 {
			payload = payload[:256]
		}
		d.Evidence = map[string]any{"payload": string(payload)}
	}
	return d
}

// Fatal reports an error that stopped the render loop.
func Fatal(code string, err error) Diagnostic {
	return Diagnostic{
		Severity:     Err,
		Code:         code,
		Summary:      "Render loop stopped",
		Detail:       err.Error(),
		LikelyCauses: []string{"a preset or transition produced NaN/Inf colors"},
	}
}
