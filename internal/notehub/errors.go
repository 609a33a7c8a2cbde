package notehub

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// RequestError is any failed call: transport error or non-2xx status.
// StatusCode is 0 when the request never got a response.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is lets callers match status classes with errors.Is.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message extracts the human-readable text from err, falling back to err.Error().
func Message(err error) string {
	var rerr *RequestError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
