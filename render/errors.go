package render

import "fmt"

// RenderError is a failure reported by, or while talking to, a rendering
// service. StatusCode is set when the service answered with a non-2xx status.
type RenderError struct {
	Provider   string
	JobID      string
	StatusCode int
	Reason     string
	Err        error
}

func (e *RenderError) Error() string {
	msg := e.Provider + " render failed"
	if e.JobID != "" {
		msg += fmt.Sprintf(" (job %s)", e.JobID)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
