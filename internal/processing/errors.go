package processing

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is surfaced when the service gives no message of its own.
const GenericFailureMessage = "Processing failed"

var (
	// ErrUnavailable indicates the processing service is unreachable.
	ErrUnavailable = errors.New("processing service unavailable")

	// ErrTimeout indicates a request exceeded the configured timeout.
	ErrTimeout = errors.New("processing request timed out")

	// ErrMalformedResponse indicates a response body could not be decoded.
	ErrMalformedResponse = errors.New("malformed service response")

	// ErrServiceFailure is matched by every *ServiceError via errors.Is.
	ErrServiceFailure = errors.New("processing service reported failure")
)

// TransportError reports a network failure or an undecodable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports a well-formed rejection: a non-2xx status or a
// payload whose success flag is false.
type ServiceError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	msg := e.UserMessage()
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// UserMessage returns the server-provided message verbatim, or the generic
// failure text when the server sent none.
func (e *ServiceError) UserMessage() string {
	if e.Message == "" {
		return GenericFailureMessage
	}
	return e.Message
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceFailure
}

// UserMessage extracts the text to show a user for err.
func UserMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.UserMessage()
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return "The processing service took too long to respond"
	case errors.Is(err, ErrUnavailable):
		return "The processing service is unreachable"
	}
	return GenericFailureMessage
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED"
	case errors.Is(err, ErrServiceFailure):
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}
