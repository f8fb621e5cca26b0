package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrTransport is returned when a call to an external service fails at the
// network level, times out, or answers with an unexpected HTTP status.
type ErrTransport struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *ErrTransport) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTransport) Is(target error) bool {
	_, ok := target.(*ErrTransport)
	return ok
}

// NewTransportError creates a new ErrTransport.
func NewTransportError(op string, err error) *ErrTransport {
	return &ErrTransport{Op: op, Err: err}
}

// NewStatusError creates an ErrTransport for an unexpected HTTP status.
func NewStatusError(op string, statusCode int) *ErrTransport {
	return &ErrTransport{Op: op, StatusCode: statusCode}
}

// ErrParse is returned when a payload (usually model output) cannot be decoded.
type ErrParse struct {
	Op      string
	Payload string
	Err     error
}

// Error implements the error interface.
func (e *ErrParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: cannot parse %q: %v", e.Op, e.Payload, e.Err)
	}
	return fmt.Sprintf("%s: cannot parse %q", e.Op, e.Payload)
}

// Unwrap returns the underlying error.
func (e *ErrParse) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrParse) Is(target error) bool {
	_, ok := target.(*ErrParse)
	return ok
}

// NewParseError creates a new ErrParse.
func NewParseError(op, payload string, err error) *ErrParse {
	return &ErrParse{Op: op, Payload: payload, Err: err}
}

// ErrGeneration is returned when a backend answers but reports that it could
// not produce the requested stream or subtitle.
type ErrGeneration struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *ErrGeneration) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

// Is allows for error checking with errors.Is().
func (e *ErrGeneration) Is(target error) bool {
	_, ok := target.(*ErrGeneration)
	return ok
}

// NewGenerationError creates a new ErrGeneration.
func NewGenerationError(op, reason string) *ErrGeneration {
	return &ErrGeneration{Op: op, Reason: reason}
}
