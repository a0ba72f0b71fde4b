package script

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a script id does not resolve to a record.
	ErrNotFound = errors.New("script not found")
	// ErrInvalidFeedback is returned for feedback values outside no_response, got_reply, converted.
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// GenerationError wraps a failed or unusable text-generation call. No script is stored when
// one is returned.
type GenerationError struct {
	ProspectID uuid.UUID
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate script for prospect %s: %v", e.ProspectID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
