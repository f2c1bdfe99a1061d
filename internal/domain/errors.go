package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller-supplied data that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoImage is returned when an image-generation call completed without
	// yielding any inline image payload.
	ErrNoImage = errors.New("no image produced")
	// ErrServiceUnavailable marks a feature whose upstream credential or
	// endpoint is not configured.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ExternalServiceError carries the upstream status and body of a failed call
// to one of the external collaborators.
type ExternalServiceError struct {
	Service string
	Status  int
	Body    string
}

func (e *ExternalServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

// TimeoutError is raised when mesh polling exhausts its attempt budget
// without reaching a terminal task state. The task may still complete
// upstream; TaskID lets callers resume polling out-of-band.
type TimeoutError struct {
	TaskID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s timed out after %d attempts", e.TaskID, e.Attempts)
}

// TaskFailedError distinguishes a job-level FAILED/CANCELED status from a
// transport failure, carrying the upstream-provided reason.
type TaskFailedError struct {
	TaskID  string
	Status  string
	Message string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s %s: %s", e.TaskID, e.Status, e.Message)
}
