package dashboard

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies update-service failures at the client boundary.
// Backend error bodies are mapped onto this enum rather than forwarded
// verbatim.
type ErrorKind int

const (
	// KindTransport covers network failures and responses without a usable body.
	KindTransport ErrorKind = iota
	// KindValidation covers 400 responses, typically a rejected status value.
	KindValidation
	// KindNotFound covers 404 responses for unknown complaint ids.
	KindNotFound
	// KindInternal covers every other non-2xx response.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// APIError is the stable failure shape the dashboard core consumes.
type APIError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("dashboard: %s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("dashboard: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("dashboard: %s", e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func newTransportError(cause error) *APIError {
	return &APIError{Kind: KindTransport, cause: cause}
}

func kindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindInternal
	}
}
