package http

import "fmt"

// ErrorType represents the category of failure that occurred.
type ErrorType int

const (
	ErrTypeValidation ErrorType = iota
	ErrTypeTransport
	ErrTypeAuthentication
	ErrTypeRateLimit
	ErrTypeInvalidRequest
	ErrTypeUpstreamServer
	ErrTypeUnexpectedStatus
	ErrTypeMalformedResponse
	ErrTypeEmptyResponse
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeValidation:
		return "validation error"
	case ErrTypeTransport:
		return "transport error"
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeUpstreamServer:
		return "upstream server error"
	case ErrTypeUnexpectedStatus:
		return "unexpected status"
	case ErrTypeMalformedResponse:
		return "malformed response"
	case ErrTypeEmptyResponse:
		return "empty response"
	default:
		return "unknown error"
	}
}

// Error represents a client failure with enough context to act on.
// Message is always safe to print to a terminal or log: it never carries
// the API key, the Authorization header, or an unbounded upstream payload.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Provider   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Type.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable returns true if a later identical attempt could succeed.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewValidationError reports bad local input before any network call.
func NewValidationError(provider, message string) *Error {
	return &Error{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
		Provider:  provider,
	}
}

// NewTransportError reports a network-level failure (DNS, connection
// refused, TLS, timeout). No response was interpreted.
func NewTransportError(provider, message string) *Error {
	return &Error{
		Type:      ErrTypeTransport,
		Message:   message,
		Retryable: true,
		Provider:  provider,
	}
}

// NewAuthenticationError creates a new authentication error.
// Callers must pass a fixed message; upstream 401 bodies can echo key
// prefixes and are never reflected here.
func NewAuthenticationError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeAuthentication,
		Message:    message,
		StatusCode: 401,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeRateLimit,
		Message:    message,
		StatusCode: 429,
		Retryable:  true,
		Provider:   provider,
	}
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError(provider, message string, statusCode int) *Error {
	return &Error{
		Type:       ErrTypeInvalidRequest,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewUpstreamServerError creates a new upstream server error.
func NewUpstreamServerError(provider, message string, statusCode int) *Error {
	return &Error{
		Type:       ErrTypeUpstreamServer,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  true,
		Provider:   provider,
	}
}

// NewUnexpectedStatusError reports a status code outside the known set.
func NewUnexpectedStatusError(provider string, statusCode int) *Error {
	return &Error{
		Type:       ErrTypeUnexpectedStatus,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		StatusCode: statusCode,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewMalformedResponseError reports a 2xx body that could not be decoded.
func NewMalformedResponseError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeMalformedResponse,
		Message:    message,
		StatusCode: 200,
		Retryable:  false,
		Provider:   provider,
	}
}

// NewEmptyResponseError reports a decoded response with no choices.
func NewEmptyResponseError(provider string) *Error {
	return &Error{
		Type:       ErrTypeEmptyResponse,
		Message:    "no response choices returned",
		StatusCode: 200,
		Retryable:  false,
		Provider:   provider,
	}
}
