package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or unsupported request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypePermission indicates the request is not allowed. Capability
	// denials surface with this type at the HTTP boundary.
	ErrorTypePermission ErrorType = "permission"

	// ErrorTypeServer indicates an internal server error.
	ErrorTypeServer ErrorType = "server"
)

// ErrorCode provides additional specificity beyond the error type.
type ErrorCode string

const (
	ErrorCodeDecodeFailed         ErrorCode = "decode_failed"
	ErrorCodeUnknownProtocol      ErrorCode = "unknown_protocol"
	ErrorCodeUnknownProvider      ErrorCode = "unknown_provider"
	ErrorCodeCapabilityNotAllowed ErrorCode = "capability_not_supported"
)

// APIError is an error rendered to HTTP callers in the envelope of the
// protocol they spoke.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Code is an optional specific error code
	Code ErrorCode `json:"code,omitempty"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Param is the parameter that caused the error (if applicable)
	Param string `json:"param,omitempty"`

	// StatusCode is the suggested HTTP status code
	StatusCode int `json:"-"`

	// SourceAPI indicates which protocol the failing request used
	SourceAPI APIType `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypePermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithCode adds an error code to the error.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = code
	return e
}

// WithParam adds a parameter name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithSourceAPI sets the source API type.
func (e *APIError) WithSourceAPI(api APIType) *APIError {
	e.SourceAPI = api
	return e
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, message)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(ErrorTypeNotFound, message)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}

// DecodeError reports an inbound request shape a decoder cannot represent.
// It is a client error and is never retried.
type DecodeError struct {
	Protocol APIType

	// MessageIndex is the offending message, or -1 when the problem is
	// outside the message list.
	MessageIndex int

	// Field is the dotted path of the violated field, relative to the
	// message when MessageIndex >= 0.
	Field string

	// Expected describes the violated expectation.
	Expected string
}

func (e *DecodeError) Error() string {
	if e.MessageIndex >= 0 {
		if e.Field != "" {
			return fmt.Sprintf("%s: message %d: %s: %s", e.Protocol, e.MessageIndex, e.Field, e.Expected)
		}
		return fmt.Sprintf("%s: message %d: %s", e.Protocol, e.MessageIndex, e.Expected)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Protocol, e.Field, e.Expected)
	}
	return fmt.Sprintf("%s: %s", e.Protocol, e.Expected)
}

// ErrCapabilityDenied is the sentinel matched by CapabilityDeniedError.
var ErrCapabilityDenied = errors.New("capability not supported by provider")

// CapabilityDeniedError is a routing decision, not a fault: the provider is
// ineligible for the capability.
type CapabilityDeniedError struct {
	Provider   string
	Capability Capability
}

func (e *CapabilityDeniedError) Error() string {
	return fmt.Sprintf("provider %q does not support %s", e.Provider, e.Capability)
}

// Is reports whether target is ErrCapabilityDenied.
func (e *CapabilityDeniedError) Is(target error) bool {
	return target == ErrCapabilityDenied
}

// AsAPIError converts any error into the APIError rendered at the HTTP
// boundary.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		apiErr := ErrInvalidRequest(decodeErr.Error()).
			WithCode(ErrorCodeDecodeFailed).
			WithSourceAPI(decodeErr.Protocol)
		if decodeErr.MessageIndex >= 0 {
			apiErr.Param = fmt.Sprintf("messages[%d]", decodeErr.MessageIndex)
			if decodeErr.Field != "" {
				apiErr.Param += "." + decodeErr.Field
			}
		} else if decodeErr.Field != "" {
			apiErr.Param = decodeErr.Field
		}
		return apiErr
	}

	var capErr *CapabilityDeniedError
	if errors.As(err, &capErr) {
		return NewAPIError(ErrorTypePermission, capErr.Error()).
			WithCode(ErrorCodeCapabilityNotAllowed)
	}

	return ErrServer(err.Error())
}
