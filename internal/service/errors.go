package service

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GenericErrorMessage is reported when the backend gives no usable message.
const GenericErrorMessage = "An unexpected error occurred"

// NetworkError is the normalized failure of a backend call: a transport
// error, a timeout, or a non-2xx response.
type NetworkError struct {
	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	// Code is the machine-readable error field of the error envelope.
	Code string

	// Message is human readable and safe to show to the user.
	Message string

	// Details carries the optional details field verbatim.
	Details json.RawMessage

	Err error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the backend answered 404.
func (e *NetworkError) NotFound() bool {
	return e.StatusCode == 404
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *NetworkError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// NewNetworkError builds a NetworkError, falling back to the generic message.
func NewNetworkError(status int, message string, err error) *NetworkError {
	if message == "" {
		message = GenericErrorMessage
	}
	return &NetworkError{StatusCode: status, Message: message, Err: err}
}

// AsNetworkError returns the NetworkError in err's chain, if any.
func AsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsAuthError reports whether err is a backend credential failure.
func IsAuthError(err error) bool {
	ne, ok := AsNetworkError(err)
	return ok && ne.Unauthorized()
}

// ErrorMessage returns the user-facing text of err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if ne, ok := AsNetworkError(err); ok {
		return ne.Message
	}
	return fmt.Sprint(err)
}
