package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscription is returned when the transcription service produced
// no usable text for the submitted audio.
var ErrEmptyTranscription = errors.New("transcription returned no usable text")

// UpstreamError wraps a failure reported by an external AI service, carrying
// the upstream status code and message without transformation.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error returns the error message.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// BadResponseError indicates the external model answered, but the answer
// violated the response schema its prompt documents.
type BadResponseError struct {
	Provider string
	Reason   string
}

// Error returns the error message.
func (e *BadResponseError) Error() string {
	return fmt.Sprintf("%s: bad upstream response: %s", e.Provider, e.Reason)
}
