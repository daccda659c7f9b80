package dictionary

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the dictionary has no entry for a word
var ErrNotFound = errors.New("dictionary: word not found")

// TransportError is any failure to obtain a usable response: network
// errors, unexpected status codes and undecodable bodies.
type TransportError struct {
	// StatusCode is zero when no response was received
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dictionary: transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("dictionary: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
