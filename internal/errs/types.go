package errs

import (
	"fmt"
	"time"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// ConfigurationError means a widget configuration breaks a query invariant.
// It is raised before any request is attempted and is never retried.
type ConfigurationError struct {
	ErrorMessage
	Field string
}

// TransportError covers non-2xx statuses, network failures, timeouts and
// bodies that are not JSON. Upstream holds the message the gateway put in an
// error body, if any; Message also carries local detail such as the URL.
type TransportError struct {
	ErrorMessage
	StatusCode int
	Upstream   string
	Err        error
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewUpstreamStatusError builds the error for a non-2xx gateway reply.
func NewUpstreamStatusError(status int, message, upstream string) *TransportError {
	return &TransportError{
		ErrorMessage: ErrorMessage{Message: message},
		StatusCode:   status,
		Upstream:     upstream,
	}
}

// DataError is a business-level failure reported by the plugin (success:false).
type DataError struct {
	ErrorMessage
}

// RateLimitedError is a plugin-reported rate limit. Callers retry silently.
type RateLimitedError struct {
	ErrorMessage
	RetryAfter time.Duration
}

// ThrottledError means the local ledger refused admission for the widget key.
type ThrottledError struct {
	ErrorMessage
	Key        string
	RetryAfter time.Duration
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{
		ErrorMessage: ErrorMessage{Message: message},
		Field:        field,
	}
}

func NewTransportError(status int, message string, err error) *TransportError {
	return &TransportError{
		ErrorMessage: ErrorMessage{Message: message},
		StatusCode:   status,
		Err:          err,
	}
}

func NewDataError(message string) *DataError {
	if message == "" {
		message = "the data source reported an error"
	}
	return &DataError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewRateLimitedError(message string, retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{
		ErrorMessage: ErrorMessage{Message: message},
		RetryAfter:   retryAfter,
	}
}

func NewThrottledError(key string, retryAfter time.Duration) *ThrottledError {
	return &ThrottledError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("request for %q deferred for %s", key, retryAfter)},
		Key:          key,
		RetryAfter:   retryAfter,
	}
}
