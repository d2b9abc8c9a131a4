package feedback

import (
	"errors"
	"fmt"
)

// RequestError is a failed backend call carrying the human-readable message shown to users
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}
