package models

import (
	"errors"
	"fmt"
)

// ValidationError is raised for missing or invalid input before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError wraps any failed call to the report backend or the geocoder.
// Message carries the upstream message verbatim when one was returned.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// PermissionError is raised when the device refused location or camera access
type PermissionError struct {
	Resource string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s permission denied", e.Resource)
}

var (
	ErrNotFound            = errors.New("report not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNotResolved         = errors.New("report is not resolved yet")
	ErrNoResolutionPhoto   = errors.New("upload a photo first")
	ErrNoGeocodeMatch      = errors.New("could not find a location for the given area")
	ErrUnauthenticated     = errors.New("not logged in")
	ErrForbiddenRole       = errors.New("role not allowed")
	ErrNotOwner            = errors.New("report belongs to another user")
	ErrDuplicateSubmission = errors.New("this report was already submitted")
	ErrUserExists          = errors.New("User already exists")
	ErrInvalidCredentials  = errors.New("Invalid email, password, or role")
)
