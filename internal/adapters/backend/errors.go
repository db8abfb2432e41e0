package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for backend errors.
var (
	ErrNetwork           = errors.New("backend request failed")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrNotFound          = errors.New("backend resource not found")
	ErrConflict          = errors.New("backend resource conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingCount      = errors.New("missing status count")
)

// NetworkError is a transport failure or a non-2xx answer from the backend.
// The next refresh tick is the retry; the client never retries locally.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork, plus ErrNotFound / ErrConflict by status code.
func (e *NetworkError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// MalformedResponseError is a 2xx answer whose body could not be used.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
