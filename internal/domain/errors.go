package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrVersionConflict    = errors.New("version conflict")
	ErrInvalidVersionType = errors.New("invalid version type")
	ErrDocumentClosed     = errors.New("document closed")
	ErrParentNotFound     = errors.New("parent post not found")
	ErrQueryTimeout       = errors.New("query analysis timed out")
	ErrStaleVersion       = errors.New("stale version stamp")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Resource string
		ID       string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (template, document, alert)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// VersionConflictError is returned when an appended version number is not current+1.
type VersionConflictError struct {
	EntityID string
	Expected int
	Got      int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected version %d, got %d", e.EntityID, e.Expected, e.Got)
}

func (e *VersionConflictError) StatusCode() int { return http.StatusConflict }

func (e *VersionConflictError) Is(target error) bool { return target == ErrVersionConflict }

// StaleVersionError is returned when an If-Match version stamp does not match the stored one.
type StaleVersionError struct {
	EntityID string
	Current  int64
	Given    int64
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("stale version stamp on %s: current %d, given %d", e.EntityID, e.Current, e.Given)
}

func (e *StaleVersionError) StatusCode() int { return http.StatusPreconditionFailed }

func (e *StaleVersionError) Is(target error) bool { return target == ErrStaleVersion }

// NewNotFound builds a NotFoundError for the given resource kind.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation builds a ValidationError with a formatted message.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CheckVersionStamp fails with StaleVersionError when ifMatch is set and differs from current.
// A nil ifMatch means the caller did not ask for a precondition.
func CheckVersionStamp(entityID string, current int64, ifMatch *int64) error {
	if ifMatch == nil || *ifMatch == current {
		return nil
	}
	return &StaleVersionError{EntityID: entityID, Current: current, Given: *ifMatch}
}
