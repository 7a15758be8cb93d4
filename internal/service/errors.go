package service

import "fmt"

// InvalidInputError rejects a request before any external call is made.
type InvalidInputError struct {
	message string
}

// NewInvalidInputError creates an InvalidInputError with a formatted message.
func NewInvalidInputError(format string, args ...interface{}) InvalidInputError {
	return InvalidInputError{message: fmt.Sprintf(format, args...)}
}

// Error returns the error message.
func (e InvalidInputError) Error() string {
	return e.message
}
