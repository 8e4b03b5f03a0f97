package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrVersionConflict is returned by stores when a conditional write lost a race.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUpstream means the completion service failed or returned an unusable response.
	ErrUpstream = errors.New("generation failed")

	// ErrUpstreamTimeout means the completion service did not answer within the configured timeout.
	ErrUpstreamTimeout = errors.New("generation timed out")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (project, style, user)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status for conflicts
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
