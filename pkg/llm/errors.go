package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the backend answers successfully but
// produces no usable text.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// BackendError carries the backend's status and message for a failed call,
// so per-row failures can be reported with enough context to diagnose.
type BackendError struct {
	Provider string
	Status   int
	Message  string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}
