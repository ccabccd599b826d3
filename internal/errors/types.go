package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ConfigurationError reports a missing or invalid value discovered while
// loading configuration. It is fatal at startup: retrying without operator
// intervention cannot succeed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// NotFoundError reports a lookup against the routing table with a stage key
// that is not present. Callers may recover (reject the stage, fall back to a
// default role set) but the miss is never masked by a silent default.
type NotFoundError struct {
	Stage string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("routing: unknown stage %q", e.Stage)
}

// NewNotFoundError creates a NotFoundError for the given stage key.
func NewNotFoundError(stage string) *NotFoundError {
	return &NotFoundError{Stage: stage}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ClientConstructionError reports that the LLM client factory rejected the
// supplied model identifier or credential. Fatal for that client instance;
// no internal retry.
type ClientConstructionError struct {
	Model  string
	Reason string
	Err    error
}

func (e *ClientConstructionError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm client for %s: %s", e.Model, e.Reason)
	}
	return fmt.Sprintf("llm client: %s", e.Reason)
}

func (e *ClientConstructionError) Unwrap() error {
	return e.Err
}

// NewClientConstructionError creates a ClientConstructionError.
func NewClientConstructionError(model, reason string) *ClientConstructionError {
	return &ClientConstructionError{Model: model, Reason: reason}
}

// IsClientConstruction reports whether err is (or wraps) a ClientConstructionError.
func IsClientConstruction(err error) bool {
	var cc *ClientConstructionError
	return errors.As(err, &cc)
}

// TransientError represents an error that can be retried.
type TransientError struct {
	Err        error
	RetryAfter int // seconds to wait before retry, from Retry-After header
	StatusCode int // HTTP status code if applicable
	Message    string
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError represents an error that should not be retried.
type PermanentError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewTransientError creates a transient error with a human-readable message.
func NewTransientError(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// NewPermanentError creates a permanent error with a human-readable message.
func NewPermanentError(err error, message string) *PermanentError {
	return &PermanentError{Err: err, Message: message}
}

// IsTransient reports whether err is retry-able. Explicit markers win;
// otherwise network-level failures are treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	return isNetworkError(err) || isSyscallError(err)
}

// IsPermanent reports whether err is non-retry-able.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return true
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return false
	}

	return false
}

// TransientHTTPStatus reports whether an HTTP status code indicates a
// retry-able condition.
func TransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	return errors.Is(err, context.DeadlineExceeded)
}

func isSyscallError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE,
			syscall.ETIMEDOUT, syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return true
		}
	}
	return false
}
