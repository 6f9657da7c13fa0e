package vsphere

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lookup failure taxonomy. Callers check these with
// errors.Is; the typed errors below carry the per-call detail.
var (
	// ErrInvalidInput indicates the caller supplied a malformed MAC address
	// or other bad argument. No remote call is attempted for these.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the inventory was enumerated successfully but
	// no virtual machine matched. This is a normal "no result" outcome,
	// not a system fault.
	ErrNotFound = errors.New("virtual machine not found")

	// ErrConnectionFailed indicates a network or TLS error reaching the
	// vCenter endpoint.
	ErrConnectionFailed = errors.New("failed to connect to vCenter")

	// ErrAuthenticationFailed indicates the vCenter rejected the configured
	// credentials during login.
	ErrAuthenticationFailed = errors.New("vCenter authentication failed")
)

// InvalidInputError reports a malformed tool argument.
type InvalidInputError struct {
	Input  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError reports that no VM in the inventory matched the lookup.
type NotFoundError struct {
	// Kind describes what was looked up, e.g. "MAC address" or "name".
	Kind  string
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no virtual machine found with %s %q", e.Kind, e.Value)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConnectionError reports a failure to establish or authenticate a vCenter
// session. It unwraps to both the taxonomy sentinel and the underlying cause.
type ConnectionError struct {
	Host string
	Err  error
	// Auth is true when the failure was an authentication rejection
	// rather than a transport problem.
	Auth bool
}

func (e *ConnectionError) Error() string {
	if e.Auth {
		return fmt.Sprintf("authentication failed for vCenter %q: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("failed to connect to vCenter %q: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	sentinel := ErrConnectionFailed
	if e.Auth {
		sentinel = ErrAuthenticationFailed
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// IsNotFound reports whether err represents a "no matching VM" outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err represents a malformed argument.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConnectionError reports whether err represents a connection or
// authentication failure against the vCenter endpoint.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrAuthenticationFailed)
}
