package hrana

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrTransport matches every TransportError.
	ErrTransport = errors.New("transport error")

	// ErrQuery matches every QueryError.
	ErrQuery = errors.New("query error")

	// ErrResponseInvalid indicates the endpoint answered with a body that is
	// not a usable pipeline response.
	ErrResponseInvalid = errors.New("response is invalid or unexpected")

	// ErrEncodeRequest wraps failures while encoding the pipeline request.
	ErrEncodeRequest = errors.New("failed to encode request")

	// ErrEmptyStatement indicates an empty SQL string.
	ErrEmptyStatement = errors.New("statement is empty")

	// ErrValueInvalid indicates a tagged cell whose payload does not match its tag.
	ErrValueInvalid = errors.New("invalid tagged value")

	// ErrNoRows is returned by QueryRow when the result set is empty.
	ErrNoRows = errors.New("no rows in result set")
)

// TransportError reports a failed HTTP exchange.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int    // HTTP status, 0 if the request never completed
	Body       string // Raw response body, kept for diagnosis
	Cause      error  // Underlying network or body read error, if any
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", ErrTransport, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: HTTP %d: %v", ErrTransport, e.StatusCode, e.Cause)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", ErrTransport, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d", ErrTransport, e.StatusCode)
}

func (e *TransportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}

// QueryError reports a statement rejected by the endpoint.
type QueryError struct {
	Message string // Endpoint message
	Code    string // Endpoint error code, may be empty
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrQuery, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", ErrQuery, e.Message)
}

func (e *QueryError) Unwrap() error {
	return ErrQuery
}

// newTransportError creates a TransportError for a failed or rejected request.
func newTransportError(status int, body string, cause error) error {
	return &TransportError{
		StatusCode: status,
		Body:       body,
		Cause:      cause,
	}
}

// newQueryError creates a QueryError from the endpoint's error object.
func newQueryError(se *streamError) error {
	if se == nil || se.Message == "" {
		return &QueryError{Message: "unknown error"}
	}
	return &QueryError{Message: se.Message, Code: se.Code}
}
