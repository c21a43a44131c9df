package api

import (
	"errors"
	"fmt"
)

// UnknownErrorMessage is used when a failed generation carries no server text
const UnknownErrorMessage = "Unknown error."

// ValidationError is a local input rejection. No request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ServiceError is a non-2xx reply from the service
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.Status)
	}
	return fmt.Sprintf("service returned status %d: %s", e.Status, e.Message)
}

// MalformedResponseError is a 2xx reply without a usable payload
type MalformedResponseError struct {
	Status  int
	Reason  string
	Message string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (status %d): %s", e.Status, e.Reason)
}

// TransportError means no response was received
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err was caused by a missing response
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ServerMessage extracts the server-provided error text, falling back to
// UnknownErrorMessage for service and malformed failures.
func ServerMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return orUnknown(se.Message)
	}
	var me *MalformedResponseError
	if errors.As(err, &me) {
		return orUnknown(me.Message)
	}
	return UnknownErrorMessage
}

func orUnknown(msg string) string {
	if msg == "" {
		return UnknownErrorMessage
	}
	return msg
}
