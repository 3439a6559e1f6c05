package customers

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport classifies failures where no usable response came back.
	ErrTransport = errors.New("customers: transport failure")

	// ErrApplication classifies responses where the backend reported an error.
	ErrApplication = errors.New("customers: application failure")

	// ErrMalformedResponse is wrapped by TransportError when the body is not JSON.
	ErrMalformedResponse = errors.New("customers: malformed response body")
)

// TransportError means the request never produced a usable response:
// connection failure, transport timeout, or an undecodable body.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("customers: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// ApplicationError means the backend answered but signalled failure through
// a non-success status or an error field in the body.
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("customers: backend returned status %d", e.Status)
	}
	return fmt.Sprintf("customers: backend returned status %d: %s", e.Status, e.Message)
}

func (e *ApplicationError) Is(target error) bool { return target == ErrApplication }
