package services

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionNotFound is the only grading error that reaches callers.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrModelUnavailable means a model backend could not be initialised.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedModelOutput means the model reply held no parseable JSON object.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrEmptyMessage is returned by the assistant for blank chat input.
	ErrEmptyMessage = errors.New("message is required")
)

// ServiceFailure wraps transport and protocol failures when talking to a
// model backend.
type ServiceFailure struct {
	Op  string
	Err error
}

func (e *ServiceFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *ServiceFailure) Unwrap() error {
	return e.Err
}
