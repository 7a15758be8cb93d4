package repository

import "fmt"

// NotFoundError is an error type for when a session or resource is not found.
type NotFoundError struct {
	message string
}

// NewNotFoundError creates a NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...interface{}) NotFoundError {
	return NotFoundError{message: fmt.Sprintf(format, args...)}
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	return e.message
}
