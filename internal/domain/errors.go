package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes the API reports.
var (
	// ErrInvalidQuery indicates a missing or malformed request parameter.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates that an upstream provider call failed.
	ErrUpstream = errors.New("upstream provider error")

	// ErrInternal indicates a failure during local computation.
	ErrInternal = errors.New("internal error")
)

// ValidationError describes an invalid request parameter.
type ValidationError struct {
	Param   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
}

// Unwrap returns ErrInvalidQuery for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// UpstreamError describes a failed call to a provider: a transport error,
// a timeout, or a non-2xx response. StatusCode is 0 when no response was received.
type UpstreamError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Provider.DisplayName(), e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider.DisplayName(), e.Err)
}

// Unwrap exposes both ErrUpstream and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// InternalError wraps a failure in local computation.
type InternalError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrInternal and the underlying cause.
func (e *InternalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInternal}
	}
	return []error{ErrInternal, e.Err}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(param, message string) *ValidationError {
	return &ValidationError{
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(provider Provider, statusCode int, err error) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewInternalError creates a new InternalError.
func NewInternalError(op string, err error) *InternalError {
	return &InternalError{
		Op:  op,
		Err: err,
	}
}
