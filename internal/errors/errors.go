// Package errors provides custom error types for the IntelliMind client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput            = errors.New("message cannot be empty")
	ErrInvalidResponse       = errors.New("invalid response format")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrNotConfirmed          = errors.New("action not confirmed")
)

// APIError represents a non-2xx HTTP response that carried no usable body
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// BackendError is an application error reported by the backend in its
// {"status":"error","error":...} envelope. Error() returns the backend's
// message verbatim so it can be shown to the user as-is.
type BackendError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

// NewBackendError creates a new BackendError
func NewBackendError(endpoint string, statusCode int, message string) *BackendError {
	return &BackendError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

// NetworkError represents a transport failure (connection refused, reset, DNS)
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error at %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(endpoint string, err error) *NetworkError {
	return &NetworkError{Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// CapabilityError reports that an optional capability (speech recognition,
// speech synthesis) is not present in this environment.
type CapabilityError struct {
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s is not available", e.Capability)
}

// Is matches ErrCapabilityUnavailable
func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapabilityUnavailable
}

// NewCapabilityError creates a new CapabilityError
func NewCapabilityError(capability string) *CapabilityError {
	return &CapabilityError{Capability: capability}
}

// SpeechError wraps a runtime failure of the speech engine
type SpeechError struct {
	Op  string // "recognize" or "synthesize"
	Err error
}

func (e *SpeechError) Error() string {
	return fmt.Sprintf("speech %s failed: %v", e.Op, e.Err)
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// NewSpeechError creates a new SpeechError
func NewSpeechError(op string, err error) *SpeechError {
	return &SpeechError{Op: op, Err: err}
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsBackendError reports whether err was reported by the backend itself
func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}

// IsParseError reports whether err is a malformed response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// GetHTTPStatus extracts the HTTP status code carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.StatusCode
	}
	return 0
}
