package telemetry

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrContractViolation marks an upstream 200 whose body is not a valid reading.
var ErrContractViolation = errors.New("upstream contract violation")

// Kind classifies gateway failures.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnsupportedType
	KindNotFound
	KindUpstream
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnsupportedType:
		return "unsupported_type"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a terminal request failure. Status is the HTTP status the gateway
// answers with and Message is the only text that reaches the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is returned by providers when the upstream answered with a non-200 status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.Code)
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func unsupportedTypeError(t Type) *Error {
	return &Error{
		Kind:    KindUnsupportedType,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Telemetry type '%s' is not currently supported", t),
	}
}

func sensorNotFoundError(id string, cause error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Sensor with ID '%s' not found", id),
		Err:     cause,
	}
}

func upstreamError(cause *StatusError) *Error {
	return &Error{
		Kind:    KindUpstream,
		Status:  cause.Code,
		Message: "Error retrieving data from sensor service",
		Err:     cause,
	}
}

func transportError(cause error) *Error {
	return &Error{
		Kind:    KindTransport,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("Failed to connect to sensor service: %v", cause),
		Err:     cause,
	}
}
